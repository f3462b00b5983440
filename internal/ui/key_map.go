package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	swap   key.Binding
	move   key.Binding
	detail key.Binding
	back   key.Binding
	next   key.Binding
	export key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		swap:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
		move:   key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m", "move")),
		detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.swap, k.move, k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.swap},
		{k.move, k.detail, k.back},
		{k.next, k.export, k.quit},
	}
}
