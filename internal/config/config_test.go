package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DefaultLevel != def.DefaultLevel {
		t.Errorf("DefaultLevel = %q, want %q", cfg.DefaultLevel, def.DefaultLevel)
	}
	if cfg.SessionTTLMinutes != def.SessionTTLMinutes {
		t.Errorf("SessionTTLMinutes = %d, want %d", cfg.SessionTTLMinutes, def.SessionTTLMinutes)
	}
	if cfg.Web.Port != def.Web.Port {
		t.Errorf("Web.Port = %d, want %d", cfg.Web.Port, def.Web.Port)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
default_level: Intermediate
session_ttl_minutes: 5
log:
  level: debug
  development: true
web:
  port: 9000
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultLevel != "Intermediate" {
		t.Errorf("DefaultLevel = %q, want %q", cfg.DefaultLevel, "Intermediate")
	}
	if cfg.SessionTTLMinutes != 5 {
		t.Errorf("SessionTTLMinutes = %d, want 5", cfg.SessionTTLMinutes)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Development {
		t.Errorf("Log = %+v, want debug/development", cfg.Log)
	}
	if cfg.Web.Port != 9000 {
		t.Errorf("Web.Port = %d, want 9000", cfg.Web.Port)
	}
	// untouched default survives
	if cfg.Web.Bind != "127.0.0.1" {
		t.Errorf("Web.Bind = %q, want default", cfg.Web.Bind)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "web: [not: a map")

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "log:\n  level: verbose\n"},
		{"port out of range", "web:\n  port: 70000\n"},
		{"negative ttl", "session_ttl_minutes: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)
			if _, err := Load(tmpDir); err == nil {
				t.Fatalf("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "disabled_tools: [capsule_delete, capsule_import]\n")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "capsule_delete" || cfg.DisabledTools[1] != "capsule_import" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_ExpandsFromEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte("ARMINA_TEST_EXPORTS=/srv/armina-exports\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	writeConfig(t, tmpDir, "allowed_paths:\n  - ${ARMINA_TEST_EXPORTS}\n")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.AllowedPaths) != 1 || cfg.AllowedPaths[0] != "/srv/armina-exports" {
		t.Errorf("AllowedPaths = %v, want [/srv/armina-exports]", cfg.AllowedPaths)
	}
	if _, ok := os.LookupEnv("ARMINA_TEST_EXPORTS"); ok {
		t.Error("loading config must not modify the process environment")
	}
}

func TestLoad_ProcessEnvWinsOverEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte("ARMINA_TEST_LEVEL=Advanced\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("ARMINA_TEST_LEVEL", "Expert")
	writeConfig(t, tmpDir, "default_level: ${ARMINA_TEST_LEVEL}\n")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultLevel != "Expert" {
		t.Errorf("DefaultLevel = %q, want %q", cfg.DefaultLevel, "Expert")
	}
}

func TestLoadWithRepo_RepoOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()
	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	writeConfig(t, globalDir, "default_level: Intermediate\ndisabled_tools: [capsule_delete]\nallow_unsafe_paths: true\n")
	writeConfig(t, filepath.Join(repoRoot, RepoDirName), "default_level: Advanced\ndisabled_tools: [capsule_import, capsule_delete]\n")

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.DefaultLevel != "Advanced" {
		t.Errorf("DefaultLevel = %q, want %q", cfg.DefaultLevel, "Advanced")
	}
	if !cfg.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be inherited from global")
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 deduplicated entries", cfg.DisabledTools)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		t.Errorf("FindRepoConfig() = %q, want empty", got)
	}
	if got := FindRepoConfig(""); got != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty", got)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		DefaultLevel:   "Beginner",
		DBMaxOpenConns: 4,
		AllowedPaths:   []string{"/a", " /b "},
		Web:            WebConfig{Bind: "127.0.0.1", Port: 8484},
	}
	overlay := &Config{
		DBMaxOpenConns: 1,
		AllowedPaths:   []string{"/b", "/c", ""},
		Web:            WebConfig{Port: 9999},
	}

	got := Merge(base, overlay)
	if got.DefaultLevel != "Beginner" {
		t.Errorf("DefaultLevel = %q, want base value", got.DefaultLevel)
	}
	if got.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", got.DBMaxOpenConns)
	}
	if got.Web.Bind != "127.0.0.1" || got.Web.Port != 9999 {
		t.Errorf("Web = %+v", got.Web)
	}
	want := []string{"/a", "/b", "/c"}
	if len(got.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got.AllowedPaths, want)
	}
	for i := range want {
		if got.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got.AllowedPaths[i], want[i])
		}
	}
	if got.DisabledTools != nil {
		t.Errorf("DisabledTools = %v, want nil", got.DisabledTools)
	}
}

func TestLoad_SetsBaseDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != tmpDir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, tmpDir)
	}
	dir, err := cfg.ExportsDir()
	if err != nil {
		t.Fatalf("ExportsDir() error = %v", err)
	}
	if dir != filepath.Join(tmpDir, ExportsDirName) {
		t.Errorf("ExportsDir() = %q", dir)
	}
}

func TestWebConfig_Address(t *testing.T) {
	w := WebConfig{Bind: "127.0.0.1", Port: 8484}
	if got := w.Address(); got != "127.0.0.1:8484" {
		t.Errorf("Address() = %q", got)
	}
}
