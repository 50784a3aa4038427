package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	toggleHelp   key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	editItem     key.Binding
	newItem      key.Binding
	deleteItem   key.Binding
	yank         key.Binding
	activityLog  key.Binding
	undo         key.Binding
	redo         key.Binding
	submit       key.Binding
	cancel       key.Binding
	deleteTarget key.Binding
	confirmYes   key.Binding
	confirmNo    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "item up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "item down")),
		editItem:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit item")),
		newItem:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		deleteItem:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete item")),
		yank:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy item")),
		activityLog:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "activity log")),
		undo:         key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "undo")),
		redo:         key.NewBinding(key.WithKeys("Z", "shift+z"), key.WithHelp("Z", "redo")),
		submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		deleteTarget: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		confirmYes:   key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "confirm")),
		confirmNo:    key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep")),
	}
}

// applyConfig overrides the configurable bindings, keeping defaults for blank values.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.newItem, cfg.NewItem, "n", "new item")
	configureBinding(&k.deleteItem, cfg.DeleteItem, "d", "delete item")
	configureBinding(&k.yank, cfg.Yank, "y", "copy item")
	configureBinding(&k.activityLog, cfg.ActivityLog, "g", "activity log")
	configureBinding(&k.undo, cfg.Undo, "z", "undo")
	configureBinding(&k.redo, cfg.Redo, "Z", "redo")
}

// configureBinding replaces keys and help text on one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns one configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := raw
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	if value == " " || strings.EqualFold(strings.TrimSpace(value), "space") {
		return []string{" ", "space"}, "space"
	}
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.newItem, k.editItem, k.deleteItem, k.undo, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.newItem, k.editItem, k.deleteItem, k.yank, k.activityLog},
		{k.moveUp, k.moveDown, k.undo, k.redo},
		{k.submit, k.cancel, k.deleteTarget},
		{k.toggleHelp, k.quit},
	}
}

// editorKeyMap is the help.KeyMap shown while the editor has focus.
type editorKeyMap struct {
	keys      keyMap
	canDelete bool
}

// ShortHelp handles short help.
func (e editorKeyMap) ShortHelp() []key.Binding {
	out := []key.Binding{e.keys.submit, e.keys.cancel}
	if e.canDelete {
		out = append(out, e.keys.deleteTarget)
	}
	return out
}

// FullHelp handles full help.
func (e editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp()}
}
