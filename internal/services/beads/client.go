// Package beads reads epics and their blocking dependencies from a beads
// issue tracker through the bd CLI.
package beads

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// Client wraps the beads CLI as a read-only epic source
type Client struct {
	runner  CommandRunner
	logger  *slog.Logger
	command string
}

// NewClient creates a new Beads client with dependency injection.
// command is the bd executable; empty means "bd".
func NewClient(runner CommandRunner, logger *slog.Logger, command string) *Client {
	if command == "" {
		command = "bd"
	}
	return &Client{
		runner:  runner,
		logger:  logger,
		command: command,
	}
}

// issue is the subset of a bd JSON issue the importer reads
type issue struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Dependencies []dependency `json:"dependencies"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type dependency struct {
	IssueID     string `json:"issue_id"`
	DependsOnID string `json:"depends_on_id"`
	Type        string `json:"type"`
}

// Epics fetches epics using `bd list --type=epic --format=json`.
// With allTypes set every issue is returned regardless of type.
func (c *Client) Epics(ctx context.Context, allTypes bool) ([]domain.Epic, error) {
	c.logger.Debug("fetching beads epics", "allTypes", allTypes)

	args := []string{"list", "--format=json"}
	if !allTypes {
		args = []string{"list", "--type=epic", "--format=json"}
	}

	out, err := c.runner.Run(ctx, c.command, args...)
	if err != nil {
		return nil, &domain.BeadsError{Op: "list", Err: err}
	}

	var issues []issue
	if err := json.Unmarshal(out, &issues); err != nil {
		return nil, &domain.BeadsError{Op: "list", Message: "failed to parse JSON", Err: err}
	}

	epics := make([]domain.Epic, 0, len(issues))
	for _, is := range issues {
		epics = append(epics, toEpic(is))
	}

	c.logger.Debug("fetched beads epics", "count", len(epics))
	return epics, nil
}

// toEpic maps a bead onto an epic. Only blocking edges ("blocks", or an
// untyped edge) become dependsOn entries.
func toEpic(is issue) domain.Epic {
	deps := make([]string, 0, len(is.Dependencies))
	for _, d := range is.Dependencies {
		if d.Type != "" && d.Type != "blocks" {
			continue
		}
		if d.IssueID != "" && d.IssueID != is.ID {
			continue
		}
		deps = append(deps, d.DependsOnID)
	}
	deps = domain.NormalizeDeps(deps)

	return domain.Epic{
		ID:        is.ID,
		Title:     is.Title,
		Status:    MapStatus(is.Status),
		DependsOn: deps,
		CreatedAt: is.CreatedAt,
		UpdatedAt: is.UpdatedAt,
	}
}

// MapStatus converts a beads status to an epic status
func MapStatus(s string) domain.Status {
	switch s {
	case "in_progress", "hooked":
		return domain.StatusInProgress
	case "closed", "tombstone":
		return domain.StatusCompleted
	default:
		// open, blocked, deferred, pinned and anything newer
		return domain.StatusPlanning
	}
}
