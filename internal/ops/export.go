package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <base>/exports/armina-classroom-<timestamp>-export.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// BuildExport resolves every index entry to its capsule. Entries whose
// record is missing are skipped.
func BuildExport(ctx context.Context, lib *library.Library) (*capsule.ExportDocument, error) {
	entries, err := lib.Index.List(ctx)
	if err != nil {
		return nil, err
	}

	capsules := make([]capsule.Capsule, 0, len(entries))
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		c, found, err := lib.Records.GetCapsule(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		capsules = append(capsules, *c)
	}

	return capsule.NewExportDocument(capsules), nil
}

// EncodeExport renders doc as indented JSON.
func EncodeExport(doc *capsule.ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(data, '\n'), nil
}

// Export writes the whole library to a JSON file.
func Export(ctx context.Context, lib *library.Library, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	exportedAt := now()

	// Determine export path
	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir(cfg)
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, DefaultExportFileName(exportedAt.Format("2006-01-02T150405")))
	}

	// Default paths are validated too
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	doc, err := BuildExport(ctx, lib)
	if err != nil {
		return nil, err
	}
	data, err := EncodeExport(doc)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(doc.Capsules),
		ExportedAt: exportedAt.UnixMilli(),
	}, nil
}

// DefaultExportFileName returns the export file name for a timestamp.
func DefaultExportFileName(timestamp string) string {
	return fmt.Sprintf("armina-classroom-%s-export%s", timestamp, ExportExt)
}

// writeFileAtomic writes data to a temp file next to path, then renames it
// into place so an existing file survives a failed write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows the rename fails if the destination exists; the existing file is kept.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
