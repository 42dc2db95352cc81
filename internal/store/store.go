// Package store persists epics and their dependency lists in SQLite.
//
// Every dependsOn edit goes through the cycle guard inside the same
// transaction that writes it, so the graph on disk stays acyclic.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/riordanpawley/epicboard/internal/core/phases"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/metrics"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeLayout sorts lexicographically in the same order as the instants it encodes
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the epic store backed by SQLite
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database at path, enables WAL mode
// and runs migrations. Use ":memory:" for a throwaway store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	logger.Debug("store opened", "path", path)
	return s, nil
}

// dsn puts the pragmas in the connection string so every pooled connection
// gets them, not just the first one
func dsn(path string) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if path != ":memory:" {
		pragmas = append(pragmas, "journal_mode(WAL)", "synchronous(NORMAL)")
	}
	return "file:" + path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS epics (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'planning',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS epic_dependencies (
			epic_id       TEXT    NOT NULL REFERENCES epics(id) ON DELETE CASCADE,
			depends_on_id TEXT    NOT NULL,
			position      INTEGER NOT NULL,
			PRIMARY KEY (epic_id, depends_on_id)
		);

		CREATE INDEX IF NOT EXISTS idx_epics_created ON epics(created_at);
		CREATE INDEX IF NOT EXISTS idx_epic_dependencies_target ON epic_dependencies(depends_on_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewID returns a fresh epic id
func NewID() string {
	return "ep-" + uuid.NewString()[:8]
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// List returns every epic ordered by creation time, then insertion order.
// The order is stable, so it can feed GroupByPhase directly.
func (s *Store) List(ctx context.Context) ([]domain.Epic, error) {
	s.logger.Debug("listing epics")

	epics, err := loadEpics(ctx, s.db)
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}

	s.logger.Debug("listed epics", "count", len(epics))
	return epics, nil
}

// Get returns one epic
func (s *Store) Get(ctx context.Context, id string) (domain.Epic, error) {
	e, err := loadEpic(ctx, s.db, id)
	if err != nil {
		return domain.Epic{}, &domain.StoreError{Op: "get", EpicID: id, Err: err}
	}
	return e, nil
}

// Graph returns the current dependency graph
func (s *Store) Graph(ctx context.Context) (phases.Graph, error) {
	epics, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return phases.GraphOf(epics), nil
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Create inserts a new epic. An empty id is replaced by NewID and an empty
// status by planning. The returned epic carries the stored values.
func (s *Store) Create(ctx context.Context, e domain.Epic) (domain.Epic, error) {
	e, err := prepareNew(e)
	if err != nil {
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}

	now := s.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	s.logger.Debug("creating epic", "id", e.ID, "deps", len(e.DependsOn))

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		// Other epics may already reference this id
		graph, err := loadGraph(ctx, tx)
		if err != nil {
			return err
		}
		if _, exists := graph[e.ID]; exists {
			return fmt.Errorf("%w: epic %s already exists", domain.ErrInvalid, e.ID)
		}
		if path := phases.CyclePath(e.DependsOn, e.ID, graph); path != nil {
			return &domain.CycleError{Path: path}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO epics (id, title, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Title, string(e.Status), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: epic %s already exists", domain.ErrInvalid, e.ID)
			}
			return err
		}
		return writeDeps(ctx, tx, e.ID, e.DependsOn)
	})
	if err != nil {
		s.rejected("create", e.ID, err)
		return domain.Epic{}, &domain.StoreError{Op: "create", EpicID: e.ID, Err: err}
	}

	s.logger.Debug("epic created", "id", e.ID)
	return e, nil
}

// prepareNew fills in the defaults for a new epic and validates it
func prepareNew(e domain.Epic) (domain.Epic, error) {
	if e.ID == "" {
		e.ID = NewID()
	}
	e.ID = strings.TrimSpace(e.ID)
	if e.Status == "" {
		e.Status = domain.StatusPlanning
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	e.DependsOn = domain.NormalizeDeps(e.DependsOn)
	return e, nil
}

// UpdateStatus changes an epic's status
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	s.logger.Debug("updating epic status", "id", id, "status", status)

	if !status.Valid() {
		return &domain.StoreError{Op: "update-status", EpicID: id,
			Err: fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, status)}
	}
	if err := s.touch(ctx, id, "status", string(status)); err != nil {
		return &domain.StoreError{Op: "update-status", EpicID: id, Err: err}
	}
	return nil
}

// UpdateTitle changes an epic's title
func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	s.logger.Debug("updating epic title", "id", id)

	if err := s.touch(ctx, id, "title", title); err != nil {
		return &domain.StoreError{Op: "update-title", EpicID: id, Err: err}
	}
	return nil
}

// touch sets one column and bumps updated_at
func (s *Store) touch(ctx context.Context, id, column string, value any) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE epics SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, formatTime(s.now().UTC()), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDependsOn replaces an epic's dependency list.
//
// The edit is refused with a *domain.CycleError (wrapped in a
// *domain.StoreError) when it would close a cycle. The cycle check and the
// write share one transaction, so nothing is written on rejection.
func (s *Store) SetDependsOn(ctx context.Context, id string, deps []string) (domain.Epic, error) {
	deps = domain.NormalizeDeps(deps)
	s.logger.Debug("setting dependencies", "id", id, "deps", deps)

	var updated domain.Epic
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		graph, err := loadGraph(ctx, tx)
		if err != nil {
			return err
		}
		if _, exists := graph[id]; !exists {
			return domain.ErrNotFound
		}
		if path := phases.CyclePath(deps, id, graph); path != nil {
			return &domain.CycleError{Path: path}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM epic_dependencies WHERE epic_id = ?`, id); err != nil {
			return err
		}
		if err := writeDeps(ctx, tx, id, deps); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE epics SET updated_at = ? WHERE id = ?`, formatTime(s.now().UTC()), id,
		); err != nil {
			return err
		}

		updated, err = loadEpic(ctx, tx, id)
		return err
	})
	if err != nil {
		s.rejected("set-deps", id, err)
		return domain.Epic{}, &domain.StoreError{Op: "set-deps", EpicID: id, Err: err}
	}

	metrics.DependencyEdits.Inc()
	s.logger.Debug("dependencies set", "id", id, "count", len(deps))
	return updated, nil
}

// Delete removes an epic and its own dependency list. Other epics that
// depend on it keep the reference, which then counts as a missing dependency.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.logger.Debug("deleting epic", "id", id)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// Cleared explicitly: a recreated id must not inherit old edges
		if _, err := tx.ExecContext(ctx, `DELETE FROM epic_dependencies WHERE epic_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM epics WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return &domain.StoreError{Op: "delete", EpicID: id, Err: err}
	}
	return nil
}

// ImportResult holds counts of imported epics
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Import writes a batch of epics in one transaction. With replace set the
// store is emptied first; otherwise epics are upserted by id.
//
// The whole batch is refused if the resulting graph contains any cycle.
func (s *Store) Import(ctx context.Context, epics []domain.Epic, replace bool) (ImportResult, error) {
	s.logger.Debug("importing epics", "count", len(epics), "replace", replace)

	now := s.now().UTC()
	batch := make([]domain.Epic, 0, len(epics))
	for _, e := range epics {
		e.ID = strings.TrimSpace(e.ID)
		if e.Status == "" {
			e.Status = domain.StatusPlanning
		}
		if err := e.Validate(); err != nil {
			return ImportResult{}, &domain.StoreError{Op: "import", EpicID: e.ID, Err: err}
		}
		e.DependsOn = domain.NormalizeDeps(e.DependsOn)
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
		batch = append(batch, e)
	}

	var result ImportResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		graph := make(phases.Graph)
		if replace {
			if _, err := tx.ExecContext(ctx, `DELETE FROM epic_dependencies`); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM epics`); err != nil {
				return err
			}
		} else {
			existing, err := loadGraph(ctx, tx)
			if err != nil {
				return err
			}
			graph = existing
		}

		existed := make(map[string]bool, len(graph))
		for id := range graph {
			existed[id] = true
		}
		for _, e := range batch {
			graph[e.ID] = e.DependsOn
		}

		if members := phases.CycleMembers(graph); len(members) > 0 {
			first := members[0]
			return &domain.CycleError{Path: phases.CyclePath(graph[first], first, graph)}
		}

		for _, e := range batch {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO epics (id, title, status, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET
				   title = excluded.title,
				   status = excluded.status,
				   updated_at = excluded.updated_at`,
				e.ID, e.Title, string(e.Status), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
			); err != nil {
				return fmt.Errorf("epic %s: %w", e.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM epic_dependencies WHERE epic_id = ?`, e.ID); err != nil {
				return err
			}
			if err := writeDeps(ctx, tx, e.ID, e.DependsOn); err != nil {
				return fmt.Errorf("epic %s: %w", e.ID, err)
			}

			if existed[e.ID] {
				result.Updated++
			} else {
				result.Created++
				existed[e.ID] = true
			}
		}
		return nil
	})
	if err != nil {
		s.rejected("import", "", err)
		return ImportResult{}, &domain.StoreError{Op: "import", Err: err}
	}

	s.logger.Debug("import finished", "created", result.Created, "updated", result.Updated)
	return result, nil
}

// rejected logs failed writes and counts cycle rejections
func (s *Store) rejected(op, id string, err error) {
	logRejection(s.logger, op, id, err)
}

func logRejection(logger *slog.Logger, op, id string, err error) {
	var cycle *domain.CycleError
	if errors.As(err, &cycle) {
		source := "store"
		if op == "import" {
			source = "import"
		}
		metrics.RecordCycleRejection(source)
		logger.Warn("dependency edit rejected", "op", op, "id", id, "cycle", strings.Join(cycle.Path, " → "))
		return
	}
	logger.Debug("store write failed", "op", op, "id", id, "error", err)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ─── Row helpers ─────────────────────────────────────────────────────────────

func writeDeps(ctx context.Context, db dbtx, id string, deps []string) error {
	for i, dep := range deps {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO epic_dependencies (epic_id, depends_on_id, position) VALUES (?, ?, ?)`,
			id, dep, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func loadEpics(ctx context.Context, db dbtx) ([]domain.Epic, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, status, created_at, updated_at FROM epics ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var epics []domain.Epic
	index := make(map[string]int)
	for rows.Next() {
		e, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(epics)
		epics = append(epics, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	depRows, err := db.QueryContext(ctx,
		`SELECT epic_id, depends_on_id FROM epic_dependencies ORDER BY epic_id, position`)
	if err != nil {
		return nil, err
	}
	defer depRows.Close()

	for depRows.Next() {
		var epicID, dep string
		if err := depRows.Scan(&epicID, &dep); err != nil {
			return nil, err
		}
		if i, ok := index[epicID]; ok {
			epics[i].DependsOn = append(epics[i].DependsOn, dep)
		}
	}
	return epics, depRows.Err()
}

func loadEpic(ctx context.Context, db dbtx, id string) (domain.Epic, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, title, status, created_at, updated_at FROM epics WHERE id = ?`, id)
	e, err := scanEpic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Epic{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Epic{}, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT depends_on_id FROM epic_dependencies WHERE epic_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.Epic{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return domain.Epic{}, err
		}
		e.DependsOn = append(e.DependsOn, dep)
	}
	return e, rows.Err()
}

func loadGraph(ctx context.Context, db dbtx) (phases.Graph, error) {
	epics, err := loadEpics(ctx, db)
	if err != nil {
		return nil, err
	}
	return phases.GraphOf(epics), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpic(sc scanner) (domain.Epic, error) {
	var (
		e                    domain.Epic
		status               string
		createdAt, updatedAt string
	)
	if err := sc.Scan(&e.ID, &e.Title, &status, &createdAt, &updatedAt); err != nil {
		return domain.Epic{}, err
	}
	e.Status = domain.Status(status)
	e.DependsOn = []string{}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
