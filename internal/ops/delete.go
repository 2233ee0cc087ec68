package ops

import (
	"context"

	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a capsule, its progress and its index entry.
func Delete(ctx context.Context, lib *library.Library, id string) (*DeleteOutput, error) {
	id = cleanID(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	// Verify it exists
	_, found, err := lib.Records.GetCapsule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound(id)
	}

	if err := lib.Records.RemoveCapsule(ctx, id); err != nil {
		return nil, err
	}
	if err := lib.Records.RemoveProgress(ctx, id); err != nil {
		return nil, err
	}
	if err := lib.Index.Remove(ctx, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}
