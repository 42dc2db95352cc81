package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the per-project config file
const FileName = ".epicboard.json"

// Config represents the full epicboard configuration
type Config struct {
	Store  StoreConfig  `json:"store"`
	Server ServerConfig `json:"server"`
	Board  BoardConfig  `json:"board"`
	Log    LogConfig    `json:"log"`
	Watch  WatchConfig  `json:"watch"`
	Beads  BeadsConfig  `json:"beads"`
}

// StoreConfig contains epic store settings
type StoreConfig struct {
	Path string `json:"path"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BoardConfig contains terminal board settings
type BoardConfig struct {
	ColumnWidth         int  `json:"columnWidth"`
	HideCompletedPhases bool `json:"hideCompletedPhases"`
	StartInList         bool `json:"startInList"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// WatchConfig contains snapshot file watching settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs"`
}

// BeadsConfig contains settings for importing epics from beads
type BeadsConfig struct {
	Command string `json:"command"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(".epicboard", "epics.db"),
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7420,
		},
		Board: BoardConfig{
			ColumnWidth:         32,
			HideCompletedPhases: false,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(".epicboard", "epicboard.log"),
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
		Beads: BeadsConfig{
			Command: "bd",
		},
	}
}

// Addr returns the host:port the API server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Debounce returns the watch debounce as a duration
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LoadConfig loads configuration from project path with priority:
// 1. CLI flags (applied by the caller)
// 2. .epicboard.json in project root (with version migration support)
// 3. package.json "epicboard" key
// 4. Defaults
//
// Relative store and log paths are resolved against projectPath.
func LoadConfig(projectPath string) (*Config, error) {
	cfg, err := loadRaw(projectPath)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(projectPath)
	return cfg, nil
}

func loadRaw(projectPath string) (*Config, error) {
	// Try loading from .epicboard.json with version migration
	configPath := filepath.Join(projectPath, FileName)
	if data, err := os.ReadFile(configPath); err == nil {
		return LoadFile(data, FileName)
	}

	// Try loading from package.json
	packagePath := filepath.Join(projectPath, "package.json")
	if data, err := os.ReadFile(packagePath); err == nil {
		var packageJSON struct {
			Epicboard json.RawMessage `json:"epicboard"`
		}
		if err := json.Unmarshal(data, &packageJSON); err == nil && packageJSON.Epicboard != nil {
			cfg, err := ParseVersionedConfig(packageJSON.Epicboard)
			if err != nil {
				return nil, fmt.Errorf("failed to parse package.json epicboard config: %w", err)
			}
			return MergeWithDefaults(cfg), nil
		}
	}

	// Return defaults if no config files found
	return DefaultConfig(), nil
}

// LoadFile parses config file contents; name is used in error messages
func LoadFile(data []byte, name string) (*Config, error) {
	cfg, err := ParseVersionedConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return MergeWithDefaults(cfg), nil
}

// LoadPath loads an explicit config file (the --config flag). Relative
// paths inside it are resolved against the file's directory.
func LoadPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := LoadFile(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	if c.Store.Path != "" && c.Store.Path != ":memory:" && !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(base, c.Store.Path)
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(base, c.Log.File)
	}
}

// SaveConfig saves configuration to the specified path with version information
func SaveConfig(cfg *Config, path string) error {
	data, err := MarshalVersionedConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeWithDefaults fills in missing values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	// Merge Store config
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaults.Store.Path
	}

	// Merge Server config
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}

	// Merge Board config
	if cfg.Board.ColumnWidth == 0 {
		cfg.Board.ColumnWidth = defaults.Board.ColumnWidth
	}

	// Merge Log config
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}

	// Merge Watch config
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}

	// Merge Beads config
	if cfg.Beads.Command == "" {
		cfg.Beads.Command = defaults.Beads.Command
	}

	return cfg
}

// Load is a convenience function that loads config for the project
// containing the current directory
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadConfig(FindProjectRoot(cwd))
}
