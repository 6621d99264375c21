package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up            key.Binding
	down          key.Binding
	enter         key.Binding
	back          key.Binding
	transposeUp   key.Binding
	transposeDown key.Binding
	reset         key.Binding
	save          key.Binding
	quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		transposeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "up a semitone")),
		transposeDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "down a semitone")),
		reset:         key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "original key")),
		save:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.transposeUp, k.transposeDown, k.reset, k.save},
		{k.quit},
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.enter, k.quit}
}

// chartHelp lists the chart bindings; back and save only apply to library songs.
func (k keyMap) chartHelp(library bool) []key.Binding {
	bindings := []key.Binding{k.up, k.down, k.transposeUp, k.transposeDown, k.reset}
	if library {
		bindings = append(bindings, k.save, k.back)
	}
	return append(bindings, k.quit)
}
