package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// ResetOutput contains the result of the Reset operation.
type ResetOutput struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

// Reset removes every capsule, every progress record and the index.
func Reset(ctx context.Context, lib *library.Library) (*ResetOutput, error) {
	capsuleIDs, err := lib.Records.CapsuleIDs(ctx)
	if err != nil {
		return nil, err
	}
	progressIDs, err := lib.Records.ProgressIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range capsuleIDs {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("reset")
		}
		if err := lib.Records.RemoveCapsule(ctx, id); err != nil {
			return nil, err
		}
	}
	for _, id := range progressIDs {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("reset")
		}
		if err := lib.Records.RemoveProgress(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := lib.Index.Clear(ctx); err != nil {
		return nil, err
	}

	return &ResetOutput{
		Removed: len(capsuleIDs),
		Message: formatResetMessage(len(capsuleIDs)),
	}, nil
}

// formatResetMessage creates a human-readable message for the reset result.
func formatResetMessage(count int) string {
	if count == 0 {
		return "Library was already empty"
	}

	capsuleWord := "capsule"
	if count > 1 {
		capsuleWord = "capsules"
	}
	return fmt.Sprintf("Removed %d %s", count, capsuleWord)
}
