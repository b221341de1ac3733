// Package config loads layered YAML configuration for the sememe tools.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/adalundhe/sememe/core/storage"
)

var configValidate = validator.New()

type Manager struct {
	configPtr   atomic.Pointer[Config]
	dirs        *storage.Dirs
	projectRoot string
}

type Config struct {
	Resources ResourcesConfig `yaml:"resources"`
	Cache     CacheConfig     `yaml:"cache"`
	Vector    VectorConfig    `yaml:"vector"`
	Log       LogConfig       `yaml:"log"`
}

type ResourcesConfig struct {
	Hierarchy string `yaml:"hierarchy" validate:"required"`
	Glossary  string `yaml:"glossary" validate:"required"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir overrides the per-resource directory under the user cache dir.
	Dir string `yaml:"dir"`
}

type VectorConfig struct {
	CacheSize int `yaml:"cache_size" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{
		dirs:        dirs,
		projectRoot: ".",
	}
	m.configPtr.Store(DefaultConfig())
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Resources: ResourcesConfig{
			Hierarchy: "WHOLE.DAT",
			Glossary:  "glossary.dat",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Vector: VectorConfig{
			CacheSize: 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (m *Manager) Get() *Config {
	return m.configPtr.Load()
}

// Load applies, in order, the project config, the user config, the
// project-local config and the environment over the defaults, then
// validates the result. The previous config stays active on error.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	projectDirs := storage.ResolveProjectDirs(m.projectRoot)

	if err := loadYAMLFile(projectDirs.Config, cfg); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	if err := loadYAMLFile(m.dirs.ConfigDir("config.yaml"), cfg); err != nil {
		return fmt.Errorf("user config: %w", err)
	}

	if err := loadYAMLFile(filepath.Join(projectDirs.Local, "config.yaml"), cfg); err != nil {
		return fmt.Errorf("local config: %w", err)
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	m.configPtr.Store(cfg)
	return nil
}

// LoadFile loads an explicit config file over the defaults instead of the
// standard layers. The environment still applies.
func (m *Manager) LoadFile(path string) error {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	applyEnvironment(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.configPtr.Store(cfg)
	return nil
}

// Update applies fn to a copy of the active config, validates the copy and
// makes it active. The active config is unchanged on error.
func (m *Manager) Update(fn func(cfg *Config)) error {
	next := *m.Get()
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	m.configPtr.Store(&next)
	return nil
}

// CacheDir resolves where the semantic database cache lives. It returns ""
// when caching is disabled.
func (m *Manager) CacheDir() string {
	cfg := m.Get()
	if !cfg.Cache.Enabled {
		return ""
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return m.dirs.DatabaseCacheDir(cfg.Resources.Hierarchy, cfg.Resources.Glossary)
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("SEMEME_HIERARCHY"); v != "" {
		cfg.Resources.Hierarchy = v
	}
	if v := os.Getenv("SEMEME_GLOSSARY"); v != "" {
		cfg.Resources.Glossary = v
	}
	if v := os.Getenv("SEMEME_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SEMEME_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("SEMEME_VECTOR_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Vector.CacheSize = n
		}
	}
	if v := os.Getenv("SEMEME_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SEMEME_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
