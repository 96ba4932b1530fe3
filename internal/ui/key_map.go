package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	home     key.Binding
	posts    key.Binding
	newPost  key.Binding
	search   key.Binding
	category key.Binding
	refresh  key.Binding
	edit     key.Binding
	del      key.Binding
	comment  key.Binding
	delCmt   key.Binding
	next     key.Binding
	save     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		home:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "home")),
		posts:    key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "posts")),
		newPost:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new post")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		del:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete post")),
		comment:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "comment")),
		delCmt:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete comment")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.home, k.posts, k.newPost, k.search, k.category},
		{k.edit, k.del, k.comment, k.delCmt},
		{k.next, k.save, k.quit},
	}
}
