package ops

import (
	"context"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	capsule.Capsule                  // embedded (copy, not pointer)
	Progress        capsule.Progress `json:"progress"`
}

// Fetch retrieves a capsule and its progress by ID.
func Fetch(ctx context.Context, lib *library.Library, id string) (*FetchOutput, error) {
	id = cleanID(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, found, err := lib.Records.GetCapsule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound(id)
	}

	progress, err := lib.Records.GetProgress(ctx, id)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Capsule:  *c,
		Progress: progress,
	}, nil
}
