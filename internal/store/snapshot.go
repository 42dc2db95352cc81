package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// SnapshotVersion is written into every exported snapshot file
const SnapshotVersion = 1

// Snapshot is the on-disk form of a set of epics
type Snapshot struct {
	Version    int           `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exportedAt" yaml:"exportedAt"`
	Epics      []domain.Epic `json:"epics" yaml:"epics"`
}

// NewSnapshot wraps epics for export, stamped with the current time
func NewSnapshot(epics []domain.Epic) Snapshot {
	if epics == nil {
		epics = []domain.Epic{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Epics:      epics,
	}
}

// snapshotFormat picks the codec from the file extension
func snapshotFormat(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: unsupported snapshot extension %q (want .json, .yaml or .yml)", domain.ErrInvalid, ext)
	}
}

// LoadSnapshot reads epics from a .json, .yaml or .yml file. Both a bare
// list of epics and a Snapshot object are accepted.
func LoadSnapshot(path string) ([]domain.Epic, error) {
	format, err := snapshotFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	epics, err := decodeSnapshot(format, data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse snapshot %s: %v", domain.ErrInvalid, filepath.Base(path), err)
	}
	return epics, nil
}

func decodeSnapshot(format string, data []byte) ([]domain.Epic, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return []domain.Epic{}, nil
	}

	switch format {
	case "json":
		if strings.HasPrefix(trimmed, "[") {
			var epics []domain.Epic
			if err := json.Unmarshal(data, &epics); err != nil {
				return nil, err
			}
			return epics, nil
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, err
		}
		return snap.Epics, nil

	default:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
			var epics []domain.Epic
			if err := root.Decode(&epics); err != nil {
				return nil, err
			}
			return epics, nil
		}
		var snap Snapshot
		if err := root.Decode(&snap); err != nil {
			return nil, err
		}
		return snap.Epics, nil
	}
}

// WriteSnapshot writes epics to path, choosing JSON or YAML by extension.
// The file is replaced atomically.
func WriteSnapshot(path string, epics []domain.Epic) error {
	format, err := snapshotFormat(path)
	if err != nil {
		return err
	}

	snap := NewSnapshot(epics)

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(snap, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(snap)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
