package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the editor answers to. Grouped the way the
// help overlay presents them.
type keyMap struct {
	Quit key.Binding
	Help key.Binding

	PlayPause key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	SeekHome  key.Binding
	SeekEnd   key.Binding

	NextClip key.Binding
	PrevClip key.Binding
	LaneUp   key.Binding
	LaneDown key.Binding

	NudgeLeft  key.Binding
	NudgeRight key.Binding
	TrimLeft   key.Binding
	TrimRight  key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	NewLane    key.Binding

	Split     key.Binding
	Duplicate key.Binding
	Delete    key.Binding

	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		SeekBack:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek back")),
		SeekFwd:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek forward")),
		SeekHome:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "seek to start")),
		SeekEnd:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "seek to end")),

		NextClip: key.NewBinding(key.WithKeys("tab", "l"), key.WithHelp("tab", "next clip")),
		PrevClip: key.NewBinding(key.WithKeys("shift+tab", "h"), key.WithHelp("s-tab", "previous clip")),
		LaneUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "lane above")),
		LaneDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "lane below")),

		NudgeLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("s-←", "nudge clip left")),
		NudgeRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("s-→", "nudge clip right")),
		TrimLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "trim in point")),
		TrimRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "trim out point")),
		MoveUp:     key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move to lane above")),
		MoveDown:   key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move to lane below")),
		NewLane:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "move to new lane")),

		Split:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "split at playhead")),
		Duplicate: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "duplicate")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "delete")),

		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ScrollLeft:  key.NewBinding(key.WithKeys("pgup", "<"), key.WithHelp("<", "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys("pgdown", ">"), key.WithHelp(">", "scroll right")),
	}
}
