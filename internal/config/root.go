package config

import (
	"os"
	"path/filepath"
)

// FindProjectRoot walks up from dir looking for a directory that holds
// .epicboard.json or an .epicboard data directory. It returns dir itself
// when no marker is found before the filesystem root.
func FindProjectRoot(dir string) string {
	path := filepath.Clean(dir)
	for {
		if isProjectRoot(path) {
			return path
		}

		parent := filepath.Dir(path)
		if parent == path {
			// Reached root without finding a marker
			return filepath.Clean(dir)
		}
		path = parent
	}
}

// isProjectRoot checks if a path carries an epicboard marker
func isProjectRoot(path string) bool {
	if _, err := os.Stat(filepath.Join(path, FileName)); err == nil {
		return true
	}
	info, err := os.Stat(filepath.Join(path, ".epicboard"))
	return err == nil && info.IsDir()
}
