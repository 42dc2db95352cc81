package overlay

import tea "github.com/charmbracelet/bubbletea"

// Stack holds the open overlays. Only the top one receives input and is
// drawn; closing it uncovers the one below.
type Stack struct {
	open []Overlay
}

func NewStack() *Stack {
	return &Stack{}
}

// Push opens o on top of the stack and returns its Init command
func (s *Stack) Push(o Overlay) tea.Cmd {
	s.open = append(s.open, o)
	return o.Init()
}

// Pop closes the top overlay and returns it, or nil when nothing is open
func (s *Stack) Pop() Overlay {
	top := s.Current()
	if top != nil {
		s.open = s.open[:len(s.open)-1]
	}
	return top
}

// Current returns the top overlay, or nil when nothing is open
func (s *Stack) Current() Overlay {
	if n := len(s.open); n > 0 {
		return s.open[n-1]
	}
	return nil
}

func (s *Stack) IsEmpty() bool {
	return len(s.open) == 0
}

// Update hands msg to the top overlay. A CloseOverlayMsg closes it
// instead.
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	top := s.Current()
	if top == nil {
		return nil
	}
	if _, ok := msg.(CloseOverlayMsg); ok {
		s.Pop()
		return nil
	}

	next, cmd := top.Update(msg)
	if o, ok := next.(Overlay); ok {
		s.open[len(s.open)-1] = o
	}
	return cmd
}
