package domain

// PhaseStatus is the aggregate status of one phase group
type PhaseStatus string

const (
	PhaseReady      PhaseStatus = "ready"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseBlocked    PhaseStatus = "blocked"
	PhaseCompleted  PhaseStatus = "completed"
)

// String returns the display string
func (s PhaseStatus) String() string {
	return string(s)
}

// Icon returns a unicode icon for the phase status
func (s PhaseStatus) Icon() string {
	switch s {
	case PhaseReady:
		return "○"
	case PhaseInProgress:
		return "◐"
	case PhaseBlocked:
		return "■"
	case PhaseCompleted:
		return "●"
	default:
		return "?"
	}
}

// PhaseGroup is the set of epics sharing one phase number
type PhaseGroup struct {
	Number         int         `json:"phaseNumber"`
	Status         PhaseStatus `json:"status"`
	Epics          []Epic      `json:"entities"`
	CompletedCount int         `json:"completedCount"`
	TotalCount     int         `json:"totalCount"`
}

// Incomplete reports whether any member is not completed
func (g PhaseGroup) Incomplete() bool {
	return g.CompletedCount < g.TotalCount
}
