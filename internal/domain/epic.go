// Package domain contains core business types for epicboard.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Epic is a unit of planned work that may depend on other epics
type Epic struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Status    Status    `json:"status" yaml:"status"`
	DependsOn []string  `json:"dependsOn" yaml:"dependsOn"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// Status represents epic status
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusActive     Status = "active"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every accepted status in workflow order
var Statuses = []Status{StatusPlanning, StatusActive, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsActive returns true for both spellings of "work has started"
func (s Status) IsActive() bool {
	return s == StatusActive || s == StatusInProgress
}

// IsCompleted returns true when the epic is finished
func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// Short returns single character representation
func (s Status) Short() string {
	switch s {
	case StatusPlanning:
		return "P"
	case StatusActive, StatusInProgress:
		return "A"
	case StatusCompleted:
		return "C"
	default:
		return "?"
	}
}

// String returns the display string
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts user input into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "in-progress" {
		st = StatusInProgress
	}
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalid, s)
	}
	return st, nil
}

// ParseDependsOn normalizes a dependsOn value as it arrives from an API,
// a snapshot file or a form field into an ordered list of ids.
//
// Accepted shapes: nil, a list of strings, a string holding a JSON array
// and a comma-separated string. Duplicates are dropped (first one wins).
func ParseDependsOn(raw any) ([]string, error) {
	var ids []string

	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		ids = v
	case []any:
		ids = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: dependsOn entry %v is not a string", ErrInvalid, item)
			}
			ids = append(ids, s)
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, fmt.Errorf("%w: dependsOn %q: %v", ErrInvalid, v, err)
			}
			return ParseDependsOn(decoded)
		}
		ids = strings.Split(trimmed, ",")
	default:
		return nil, fmt.Errorf("%w: dependsOn has unsupported type %T", ErrInvalid, raw)
	}

	return NormalizeDeps(ids), nil
}

// NormalizeDeps trims ids and drops blanks and duplicates, keeping the
// first occurrence. It never returns nil.
func NormalizeDeps(ids []string) []string {
	result := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// UnmarshalJSON decodes an epic, normalizing dependsOn
func (e *Epic) UnmarshalJSON(data []byte) error {
	type alias Epic
	aux := struct {
		*alias
		DependsOn any `json:"dependsOn"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	deps, err := ParseDependsOn(aux.DependsOn)
	if err != nil {
		return err
	}
	e.DependsOn = deps
	return nil
}

// UnmarshalYAML decodes an epic from a snapshot file, normalizing dependsOn
func (e *Epic) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		ID        string    `yaml:"id"`
		Title     string    `yaml:"title"`
		Status    Status    `yaml:"status"`
		DependsOn any       `yaml:"dependsOn"`
		CreatedAt time.Time `yaml:"createdAt"`
		UpdatedAt time.Time `yaml:"updatedAt"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}

	deps, err := ParseDependsOn(aux.DependsOn)
	if err != nil {
		return err
	}

	*e = Epic{
		ID:        aux.ID,
		Title:     aux.Title,
		Status:    aux.Status,
		DependsOn: deps,
		CreatedAt: aux.CreatedAt,
		UpdatedAt: aux.UpdatedAt,
	}
	return nil
}

// Validate checks the fields every stored epic must carry
func (e Epic) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: epic id is required", ErrInvalid)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: epic %s has unknown status %q", ErrInvalid, e.ID, e.Status)
	}
	return nil
}

// DisplayTitle returns the title, falling back to the id
func (e Epic) DisplayTitle() string {
	if e.Title == "" {
		return e.ID
	}
	return e.Title
}
