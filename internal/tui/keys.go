package tui

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Dec      key.Binding
	Inc      key.Binding
	DecFast  key.Binding
	IncFast  key.Binding
	Classify key.Binding
	Reset    key.Binding
	History  key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Select")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "Next")),
	Dec:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←→", "Adjust")),
	Inc:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "Increase")),
	DecFast:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("⇧←", "Coarse down")),
	IncFast:  key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("⇧←→", "Coarse")),
	Classify: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Predict")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reset")),
	History:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "History")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "Quit")),
}
