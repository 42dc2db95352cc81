package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrNotFound = errors.New("not found")
	ErrCycle    = errors.New("dependency cycle")
	ErrInvalid  = errors.New("invalid input")
)

// CycleError reports a dependency chain that returns to its start.
// Path begins and ends with the same id.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "dependency cycle"
	}
	return "dependency cycle: " + strings.Join(e.Path, " → ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// StoreError represents an error from the epic store
type StoreError struct {
	Op      string // Operation: "list", "create", "set-deps", etc.
	EpicID  string // Optional: specific epic ID
	Message string // Human-readable context
	Err     error  // Underlying error
}

func (e *StoreError) Error() string {
	switch {
	case e.EpicID != "" && e.Message != "":
		return fmt.Sprintf("store %s [%s]: %s", e.Op, e.EpicID, e.Message)
	case e.EpicID != "" && e.Err != nil:
		return fmt.Sprintf("store %s [%s]: %v", e.Op, e.EpicID, e.Err)
	case e.Message != "":
		return fmt.Sprintf("store %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s failed", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// BeadsError represents an error from the beads CLI epic source
type BeadsError struct {
	Op      string // Operation: "list"
	BeadID  string // Optional: specific bead ID
	Message string // Human-readable context
	Err     error  // Underlying error
}

func (e *BeadsError) Error() string {
	switch {
	case e.BeadID != "" && e.Message != "":
		return fmt.Sprintf("beads %s [%s]: %s", e.Op, e.BeadID, e.Message)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("beads %s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("beads %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("beads %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("beads %s failed", e.Op)
}

func (e *BeadsError) Unwrap() error {
	return e.Err
}
