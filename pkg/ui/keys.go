package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

// keyMap is the viewer's full binding set: grid navigation plus the keys
// the viewer handles itself.
type keyMap struct {
	grid treegrid.KeyMap
	Yank key.Binding
	Help key.Binding
	Quit key.Binding
}

func newKeyMap(grid treegrid.KeyMap) keyMap {
	return keyMap{
		grid: grid,
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.grid.Up, k.grid.Down, k.grid.Right, k.grid.Left, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.grid.ShortHelp(),
		{k.Yank, k.Help, k.Quit},
	}
}
