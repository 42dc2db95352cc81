package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test store defaults
	assert.Equal(t, filepath.Join(".epicboard", "epics.db"), cfg.Store.Path)

	// Test server defaults
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7420, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:7420", cfg.Server.Addr())

	// Test board defaults
	assert.Equal(t, 32, cfg.Board.ColumnWidth)
	assert.False(t, cfg.Board.HideCompletedPhases)

	// Test log defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(".epicboard", "epicboard.log"), cfg.Log.File)

	// Test watch defaults
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce())

	// Test beads defaults
	assert.Equal(t, "bd", cfg.Beads.Command)
}

func TestLoadConfigFromEpicboardJSON(t *testing.T) {
	tmpDir := t.TempDir()

	configJSON := `{
		"version": 2,
		"store": {"path": "db/board.db"},
		"server": {"port": 8080},
		"log": {"level": "debug", "file": "/var/log/epicboard.log"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(configJSON), 0644))

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	// Relative paths resolve against the project
	assert.Equal(t, filepath.Join(tmpDir, "db", "board.db"), cfg.Store.Path)
	// Absolute paths are kept
	assert.Equal(t, "/var/log/epicboard.log", cfg.Log.File)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults fill the rest
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 32, cfg.Board.ColumnWidth)
}

func TestLoadConfigFromPackageJSON(t *testing.T) {
	tmpDir := t.TempDir()

	packageJSON := `{
		"name": "web",
		"epicboard": {
			"server": {"port": 4000}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "package.json"), []byte(packageJSON), 0644))

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, filepath.Join(tmpDir, ".epicboard", "epics.db"), cfg.Store.Path)
}

func TestLoadConfigPriority(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName),
		[]byte(`{"version": 2, "server": {"port": 1111}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "package.json"),
		[]byte(`{"epicboard": {"server": {"port": 2222}}}`), 0644))

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	// .epicboard.json takes priority over package.json
	assert.Equal(t, 1111, cfg.Server.Port)
}

func TestLoadConfigNoFiles(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Server, cfg.Server)
	assert.Equal(t, defaults.Board, cfg.Board)
	assert.Equal(t, filepath.Join(tmpDir, defaults.Store.Path), cfg.Store.Path)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(`{invalid`), 0644))

	_, err := LoadConfig(tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), FileName)
}

func TestLoadConfigPackageJSONWithoutEpicboard(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "package.json"),
		[]byte(`{"name": "web", "version": "1.0.0"}`), 0644))

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 7420, cfg.Server.Port)
}

func TestLoadPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dbPath": "legacy.db"}`), 0644))

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "legacy.db"), cfg.Store.Path)

	_, err = LoadPath(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigKeepsMemoryStore(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName),
		[]byte(`{"version": 2, "store": {"path": ":memory:"}}`), 0644))

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Store.Path)
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, FileName)

	cfg := DefaultConfig()
	cfg.Server.Port = 9001
	cfg.Board.HideCompletedPhases = true

	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 2`)

	loaded, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 9001, loaded.Server.Port)
	assert.True(t, loaded.Board.HideCompletedPhases)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 5000},
		Log:    LogConfig{Level: "warn"},
	}

	merged := MergeWithDefaults(cfg)

	// Set values are kept
	assert.Equal(t, 5000, merged.Server.Port)
	assert.Equal(t, "warn", merged.Log.Level)

	// Missing values come from defaults
	assert.Equal(t, "127.0.0.1", merged.Server.Host)
	assert.Equal(t, filepath.Join(".epicboard", "epics.db"), merged.Store.Path)
	assert.Equal(t, 300, merged.Watch.DebounceMs)
	assert.Equal(t, "bd", merged.Beads.Command)
}

func TestMergeWithDefaultsEmptyConfig(t *testing.T) {
	merged := MergeWithDefaults(&Config{})

	assert.Equal(t, DefaultConfig(), merged)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	// No marker anywhere: the start dir is returned
	assert.Equal(t, nested, FindProjectRoot(nested))

	// Config file marker
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", FileName), []byte(`{}`), 0644))
	assert.Equal(t, filepath.Join(root, "a"), FindProjectRoot(nested))

	// Data directory marker closer to the start wins
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", ".epicboard"), 0755))
	assert.Equal(t, filepath.Join(root, "a", "b"), FindProjectRoot(nested))
}
