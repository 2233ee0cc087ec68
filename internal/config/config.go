package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the base and repo directories.
const FileName = "config.yaml"

// EnvFileName holds variables available to ${VAR} expansion in config files.
const EnvFileName = ".env"

// RepoDirName is the per-repository directory searched for a config file.
const RepoDirName = ".armina"

// ExportsDirName is the default import/export directory inside the base dir.
const ExportsDirName = "exports"

// Config holds application configuration.
type Config struct {
	// BaseDir is the data directory the config was loaded from (not read from YAML)
	BaseDir string `yaml:"-"`

	// DefaultLevel is assigned to capsules saved without a level
	DefaultLevel string `yaml:"default_level,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `yaml:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `yaml:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `yaml:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `yaml:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool groups ("capsule", "learn") to disable entirely.
	DisabledTypes []string `yaml:"disabled_types,omitempty"`

	// SessionTTLMinutes is how long an idle learn session is kept in memory.
	SessionTTLMinutes int `yaml:"session_ttl_minutes,omitempty"`

	Log LogConfig `yaml:"log"`
	Web WebConfig `yaml:"web"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level,omitempty"`

	// File, when set, receives JSON logs with size-based rotation
	File string `yaml:"file,omitempty"`

	// Development switches to the human-readable console encoder
	Development bool `yaml:"development,omitempty"`
}

// WebConfig controls the local web UI.
type WebConfig struct {
	Bind string `yaml:"bind,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DefaultLevel, validation.Required),
		validation.Field(&c.DBMaxOpenConns, validation.Min(0)),
		validation.Field(&c.DBMaxIdleConns, validation.Min(0)),
		validation.Field(&c.SessionTTLMinutes, validation.Min(0)),
	); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Web.Validate(); err != nil {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

// Validate checks the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate checks the web configuration.
func (c *WebConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// ExportsDir returns the default directory for export files.
// Falls back to ~/.armina/exports when BaseDir is unset.
func (c *Config) ExportsDir() (string, error) {
	if c != nil && c.BaseDir != "" {
		return filepath.Join(c.BaseDir, ExportsDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, RepoDirName, ExportsDirName), nil
}

// Address returns the web UI listen address.
func (c *WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:      "Beginner",
		SessionTTLMinutes: 60,
		Log: LogConfig{
			Level: "info",
		},
		Web: WebConfig{
			Bind: "127.0.0.1",
			Port: 8484,
		},
	}
}

// Load loads configuration from baseDir/config.yaml.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.armina.
func Load(baseDir string) (*Config, error) {
	env, err := loadEnv(baseDir)
	if err != nil {
		return nil, err
	}
	cfg, err := loadFileRaw(filepath.Join(baseDir, FileName), env)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	merged.BaseDir = baseDir
	return finish(merged)
}

// LoadWithRepo loads configuration from both global (~/.armina) and repo (.armina) directories.
// Repo config is found by walking upward from startDir to find the nearest .armina/config.yaml.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	env, err := loadEnv(globalDir)
	if err != nil {
		return nil, err
	}

	global, err := loadFileRaw(filepath.Join(globalDir, FileName), env)
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir), env)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	merged := Merge(Merge(DefaultConfig(), global), repo)
	merged.BaseDir = globalDir
	return finish(merged)
}

// FindRepoConfig walks upward from startDir to find the nearest .armina/config.yaml.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, RepoDirName, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadEnv reads baseDir/.env. The process environment is not modified.
func loadEnv(baseDir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(baseDir, EnvFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// loadFileRaw loads configuration from a specific file path, expanding ${VAR}
// references from the process environment first, then from env.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string, env map[string]string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return env[key]
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.BaseDir = firstString(overlay.BaseDir, base.BaseDir)
	result.DefaultLevel = firstString(overlay.DefaultLevel, base.DefaultLevel)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.SessionTTLMinutes = firstInt(overlay.SessionTTLMinutes, base.SessionTTLMinutes)
	result.Log.Level = firstString(overlay.Log.Level, base.Log.Level)
	result.Log.File = firstString(overlay.Log.File, base.Log.File)
	result.Web.Bind = firstString(overlay.Web.Bind, base.Web.Bind)
	result.Web.Port = firstInt(overlay.Web.Port, base.Web.Port)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.Log.Development = base.Log.Development || overlay.Log.Development

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
