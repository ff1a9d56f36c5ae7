package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle  key.Binding
	Enable  key.Binding
	Disable key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Enable, k.Disable, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("t", " "),
		key.WithHelp("t/space", "toggle"),
	),
	Enable: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "enable"),
	),
	Disable: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "disable"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
