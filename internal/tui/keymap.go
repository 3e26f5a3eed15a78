package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Prev key.Binding
	Next key.Binding

	// Layout
	Grab       key.Binding
	Cancel     key.Binding
	Hide       key.Binding
	EditLayout key.Binding
	Reset      key.Binding

	// View
	Period  key.Binding
	Privacy key.Binding
	Add     key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("k", "up", "h", "left"),
			key.WithHelp("←/k", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("j", "down", "l", "right"),
			key.WithHelp("→/j", "next"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("Space", "pick up/drop card"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Hide: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "hide card"),
		),
		EditLayout: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit layout"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset layout"),
		),
		Period: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next period"),
		),
		Privacy: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mask amounts"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "quick add"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Grab, k.Period, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.Grab, k.Cancel, k.Hide, k.EditLayout, k.Reset},
		{k.Period, k.Privacy, k.Add},
		{k.Help, k.Quit},
	}
}
