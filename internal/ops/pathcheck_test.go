package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/armina/internal/errors"
)

func TestValidatePath_Rejected(t *testing.T) {
	_, cfg := newTestLibrary(t)
	dir := exportsDir(t, cfg)

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../backup.json"},
		{"mid-path traversal", dir + string(filepath.Separator) + ".." + string(filepath.Separator) + "backup.json"},
		{"no extension", filepath.Join(dir, "backup")},
		{"jsonl extension", filepath.Join(dir, "backup.jsonl")},
		{"outside exports", filepath.Join(os.TempDir(), "backup.json")},
		{"nested in exports", filepath.Join(dir, "sub", "backup.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, PathCheckWrite, cfg)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestValidatePath_ExportsDirAccepted(t *testing.T) {
	_, cfg := newTestLibrary(t)

	require.NoError(t, ValidatePath(filepath.Join(exportsDir(t, cfg), "backup.json"), PathCheckWrite, cfg))
	require.NoError(t, ValidatePath(filepath.Join(exportsDir(t, cfg), "BACKUP.JSON"), PathCheckWrite, cfg))
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	_, cfg := newTestLibrary(t)
	allowed := t.TempDir()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	file := filepath.Join(allowed, "in.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0600))
	assert.NoError(t, ValidatePath(file, PathCheckRead, cfg))

	other := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0600))
	assert.Error(t, ValidatePath(other, PathCheckRead, cfg))
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	_, cfg := newTestLibrary(t)
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	assert.NoError(t, ValidatePath(filepath.Join(dir, "out.json"), PathCheckWrite, cfg))

	err := ValidatePath(filepath.Join(dir, "missing.json"), PathCheckRead, cfg)
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "got %v", err)

	// extension still enforced
	err = ValidatePath(filepath.Join(dir, "out.txt"), PathCheckWrite, cfg)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	for _, unsafe := range []bool{false, true} {
		_, cfg := newTestLibrary(t)
		cfg.AllowUnsafePaths = unsafe
		dir := exportsDir(t, cfg)

		target := filepath.Join(t.TempDir(), "secret.json")
		require.NoError(t, os.WriteFile(target, []byte("{}"), 0600))
		link := filepath.Join(dir, "link.json")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("cannot create symlink: %v", err)
		}

		for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
			err := ValidatePath(link, mode, cfg)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "unsafe=%v mode=%v: %v", unsafe, mode, err)
		}
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/file.json", false},
		{"../file.json", true},
		{"/home/../etc/passwd", true},
		{"./file.json", false},
		{"file..name.json", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.contains, containsTraversal(tc.path))
		})
	}
}

func TestDefaultExportFileName(t *testing.T) {
	assert.Equal(t, "armina-classroom-2026-01-02T030405-export.json", DefaultExportFileName("2026-01-02T030405"))
}
