package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/riordanpawley/epicboard/internal/core/phases"
	"github.com/riordanpawley/epicboard/internal/domain"
)

// FileStore serves epics straight from a snapshot file. Each read loads
// the file again, so external edits are picked up; writes rewrite it.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore returns a FileStore over path
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the snapshot file path
func (f *FileStore) Path() string {
	return f.path
}

// List returns the epics in file order
func (f *FileStore) List(ctx context.Context) ([]domain.Epic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	epics, err := LoadSnapshot(f.path)
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	return epics, nil
}

// Get returns one epic from the file
func (f *FileStore) Get(ctx context.Context, id string) (domain.Epic, error) {
	epics, err := f.List(ctx)
	if err != nil {
		return domain.Epic{}, err
	}
	for _, e := range epics {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Epic{}, &domain.StoreError{Op: "get", EpicID: id, Err: domain.ErrNotFound}
}

// Create appends a new epic to the file with the same defaults as the
// database store
func (f *FileStore) Create(ctx context.Context, e domain.Epic) (domain.Epic, error) {
	e, err := prepareNew(e)
	if err != nil {
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	epics, err := LoadSnapshot(f.path)
	if err != nil {
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}

	graph := phases.GraphOf(epics)
	if _, exists := graph[e.ID]; exists {
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID,
			Err: fmt.Errorf("%w: epic %s already exists", domain.ErrInvalid, e.ID)}
	}
	// Epics already in the file may reference the new id
	if path := phases.CyclePath(e.DependsOn, e.ID, graph); path != nil {
		err := &domain.CycleError{Path: path}
		logRejection(f.logger, "create", e.ID, err)
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if err := WriteSnapshot(f.path, append(epics, e)); err != nil {
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}
	f.logger.Debug("snapshot updated", "op", "create", "id", e.ID)
	return e, nil
}

// UpdateStatus changes an epic's status and rewrites the file
func (f *FileStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return &domain.StoreError{Op: "update-status", EpicID: id,
			Err: fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, status)}
	}
	_, err := f.modify("update-status", id, func(epics []domain.Epic, i int) error {
		epics[i].Status = status
		return nil
	})
	return err
}

// SetDependsOn replaces an epic's dependency list and rewrites the file.
// An edit that would close a cycle is refused and nothing is written.
func (f *FileStore) SetDependsOn(ctx context.Context, id string, deps []string) (domain.Epic, error) {
	deps = domain.NormalizeDeps(deps)

	return f.modify("set-deps", id, func(epics []domain.Epic, i int) error {
		if path := phases.CyclePath(deps, id, phases.GraphOf(epics)); path != nil {
			return &domain.CycleError{Path: path}
		}
		epics[i].DependsOn = deps
		return nil
	})
}

// modify loads the file, applies fn to epic id and writes the result back
func (f *FileStore) modify(op, id string, fn func(epics []domain.Epic, i int) error) (domain.Epic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	epics, err := LoadSnapshot(f.path)
	if err != nil {
		return domain.Epic{}, &domain.StoreError{Op: op, EpicID: id, Err: err}
	}

	idx := -1
	for i, e := range epics {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Epic{}, &domain.StoreError{Op: op, EpicID: id, Err: domain.ErrNotFound}
	}

	if err := fn(epics, idx); err != nil {
		logRejection(f.logger, op, id, err)
		return domain.Epic{}, &domain.StoreError{Op: op, EpicID: id, Err: err}
	}
	epics[idx].UpdatedAt = time.Now().UTC()

	if err := WriteSnapshot(f.path, epics); err != nil {
		return domain.Epic{}, &domain.StoreError{Op: op, EpicID: id, Err: err}
	}
	f.logger.Debug("snapshot updated", "op", op, "id", id)
	return epics[idx], nil
}
