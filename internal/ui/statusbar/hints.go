package statusbar

import "github.com/riordanpawley/epicboard/internal/types"

// GetHints returns the keybinding hints for the given mode
func GetHints(mode types.Mode) string {
	switch mode {
	case types.ModeNormal:
		return "h/l: phases  j/k: epics  s: status  d: deps  a: add  f: filter  v: list  ?: help  q: quit"
	case types.ModeGoto:
		return "g: top  e: end  h: first phase  l: last phase  c: cycle  Esc: cancel"
	case types.ModeSearch:
		return "Type to find  Tab: next match  Enter: confirm  Esc: cancel"
	default:
		return ""
	}
}
