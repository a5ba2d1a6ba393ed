package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Edit     key.Binding
	Save     key.Binding
	Cancel   key.Binding
	Add      key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	MoveTo   key.Binding
	NewPage  key.Binding
	GoTo     key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "edit")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d d", "delete")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		MoveTo:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move to")),
		NewPage:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new page")),
		GoTo:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// pageHelp is the footer for the page view, in display order.
func (k keyMap) pageHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Edit, k.Add, k.Delete, k.MoveUp, k.MoveDown, k.MoveTo, k.NewPage, k.GoTo, k.Reload, k.Quit}
}
