package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the TUI bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Dismiss    key.Binding
	Clear      key.Binding
	Info       key.Binding
	Success    key.Binding
	Warning    key.Binding
	Error      key.Binding
	Persistent key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "older"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "newer"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "dismiss"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info"),
		),
		Success: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "success"),
		),
		Warning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warning"),
		),
		Error: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "error"),
		),
		Persistent: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "sticky"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next theme"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss, k.Clear, k.Info, k.Theme, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Dismiss, k.Clear},
		{k.Info, k.Success, k.Warning, k.Error, k.Persistent},
		{k.Theme, k.Help, k.Quit},
	}
}
