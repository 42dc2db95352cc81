package domain

import "strings"

// Filter represents epic filtering state
type Filter struct {
	Status      map[Status]bool
	SearchQuery string
}

// NewFilter creates a new empty filter
func NewFilter() *Filter {
	return &Filter{
		Status: make(map[Status]bool),
	}
}

// IsActive returns true if any filter is active
func (f *Filter) IsActive() bool {
	return len(f.Status) > 0 || f.SearchQuery != ""
}

// Apply filters a list of epics, keeping input order
func (f *Filter) Apply(epics []Epic) []Epic {
	if !f.IsActive() {
		return epics
	}

	result := make([]Epic, 0, len(epics))
	for _, epic := range epics {
		if f.Matches(epic) {
			result = append(result, epic)
		}
	}
	return result
}

// Matches returns true if the epic passes all active filters.
// Statuses are OR'ed together and AND'ed with the search query.
func (f *Filter) Matches(e Epic) bool {
	if len(f.Status) > 0 && !f.Status[filterKey(e.Status)] {
		return false
	}

	// Search query (case-insensitive, matches title or ID)
	if f.SearchQuery != "" {
		query := strings.ToLower(f.SearchQuery)
		title := strings.ToLower(e.Title)
		id := strings.ToLower(e.ID)

		if !strings.Contains(title, query) && !strings.Contains(id, query) {
			return false
		}
	}

	return true
}

// Clear resets all filters
func (f *Filter) Clear() {
	f.Status = make(map[Status]bool)
	f.SearchQuery = ""
}

// ToggleStatus toggles a status filter. in_progress and active toggle the
// same entry.
func (f *Filter) ToggleStatus(s Status) {
	s = filterKey(s)
	if f.Status[s] {
		delete(f.Status, s)
	} else {
		f.Status[s] = true
	}
}

// HasStatus reports whether s is selected
func (f *Filter) HasStatus(s Status) bool {
	return f.Status[filterKey(s)]
}

func filterKey(s Status) Status {
	if s.IsActive() {
		return StatusActive
	}
	return s
}
