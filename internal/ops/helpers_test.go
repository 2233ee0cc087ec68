package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/kv"
	"github.com/hpungsan/armina/internal/library"
)

// newTestLibrary returns an in-memory library and a config rooted at a temp
// base directory with an exports subdirectory.
func newTestLibrary(t *testing.T) (*library.Library, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	if err := os.MkdirAll(filepath.Join(cfg.BaseDir, config.ExportsDirName), 0700); err != nil {
		t.Fatalf("failed to create exports dir: %v", err)
	}
	return library.New(kv.NewMemory(), nil), cfg
}

// setNow pins the clock for the duration of the test.
func setNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func exportsDir(t *testing.T, cfg *config.Config) string {
	t.Helper()
	dir, err := cfg.ExportsDir()
	if err != nil {
		t.Fatalf("ExportsDir failed: %v", err)
	}
	return dir
}
