package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// MaxImportBytes bounds the size of an import file.
const MaxImportBytes = 32 << 20

// invalidFormat is the message for a document that is not an export.
const invalidFormat = "Invalid file format or version."

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of an import.
type ImportOutput struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// Import reads an export file and imports it.
func Import(ctx context.Context, lib *library.Library, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.ArminaError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	return ImportDocument(ctx, lib, cfg, data)
}

// ImportDocument validates an export document and writes every capsule
// (last write wins), upserting a re-derived index entry for each.
// Nothing is written unless every capsule carries an id and a title.
func ImportDocument(ctx context.Context, lib *library.Library, cfg *config.Config, data []byte) (*ImportOutput, error) {
	capsules, err := decodeExport(data)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(capsules))
	for i := range capsules {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("import")
		default:
		}

		c := &capsules[i]
		if err := lib.Records.PutCapsule(ctx, c); err != nil {
			return nil, err
		}

		entry := *c
		if strings.TrimSpace(entry.Level) == "" {
			entry.Level = defaultLevel(cfg)
		}
		if entry.UpdatedAt == 0 {
			entry.UpdatedAt = nowMillis()
		}
		if err := lib.Index.Upsert(ctx, entry.ToIndexPatch()); err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}

	return &ImportOutput{
		Imported: len(ids),
		IDs:      ids,
	}, nil
}

// decodeExport parses and validates an export document.
func decodeExport(data []byte) ([]capsule.Capsule, error) {
	var doc struct {
		Version  string          `json:"version"`
		Capsules json.RawMessage `json:"capsules"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInvalidExport(invalidFormat)
	}
	if doc.Version != capsule.ExportVersion {
		return nil, errors.NewInvalidExport(invalidFormat)
	}

	raw := bytes.TrimSpace(doc.Capsules)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errors.NewInvalidExport("capsules must be a list")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewInvalidExport("capsules must be a list")
	}

	capsules := make([]capsule.Capsule, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &capsules[i]); err != nil {
			return nil, errors.NewInvalidExport(fmt.Sprintf("capsule %d: %v", i, err))
		}
		if err := capsules[i].Validate(); err != nil {
			return nil, errors.NewInvalidExport(fmt.Sprintf("capsule %d: %v", i, err))
		}
		fillLists(&capsules[i])
	}
	return capsules, nil
}

// fillLists replaces absent lists with empty ones so stored records are canonical.
func fillLists(c *capsule.Capsule) {
	if c.Notes == nil {
		c.Notes = []string{}
	}
	if c.Flashcards == nil {
		c.Flashcards = []capsule.Flashcard{}
	}
	if c.Quiz == nil {
		c.Quiz = []capsule.Question{}
	}
}
