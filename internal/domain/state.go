package domain

import (
	"fmt"
	"slices"
)

// State is the whole application state: the ordered list and the active pane.
// The selected index is derived from the pane, so it can never disagree with it.
type State struct {
	items []TodoItem
	pane  Pane
}

// Row is one rendered list entry handed to the view layer.
type Row struct {
	Index    int
	Value    string
	Selected bool
}

// NewState returns a state showing the welcome pane over a copy of items.
func NewState(items ...TodoItem) State {
	return State{
		items: slices.Clone(items),
		pane:  WelcomePane{},
	}
}

// NewStateFromValues builds a welcome state from raw item texts.
func NewStateFromValues(values []string) State {
	return State{
		items: TodoItemsFromValues(values),
		pane:  WelcomePane{},
	}
}

// Len returns the number of list items.
func (s State) Len() int {
	return len(s.items)
}

// Items returns a copy of the list.
func (s State) Items() []TodoItem {
	return slices.Clone(s.items)
}

// Values returns the list texts in order.
func (s State) Values() []string {
	out := make([]string, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Value)
	}
	return out
}

// Item returns list[index] when index is in range.
func (s State) Item(index int) (TodoItem, bool) {
	if index < 0 || index >= len(s.items) {
		return TodoItem{}, false
	}
	return s.items[index], true
}

// Pane returns the active pane; the zero State shows the welcome pane.
func (s State) Pane() Pane {
	if s.pane == nil {
		return WelcomePane{}
	}
	return s.pane
}

// Editor returns the open editor, if any.
func (s State) Editor() (Editor, bool) {
	p, ok := s.pane.(EditingPane)
	if !ok {
		return Editor{}, false
	}
	return p.Editor, true
}

// Selected returns the selected list index. Only an edit-mode editor selects a row.
func (s State) Selected() (int, bool) {
	ed, ok := s.Editor()
	if !ok {
		return 0, false
	}
	return ed.Target()
}

// Rows returns the list as the view layer renders it.
func (s State) Rows() []Row {
	selected, hasSelected := s.Selected()
	rows := make([]Row, 0, len(s.items))
	for idx, item := range s.items {
		rows = append(rows, Row{
			Index:    idx,
			Value:    item.Value,
			Selected: hasSelected && idx == selected,
		})
	}
	return rows
}

// SameItems reports whether both states hold identical lists.
func (s State) SameItems(other State) bool {
	return slices.Equal(s.items, other.items)
}

// Validate checks the cross-entity invariants of the state.
func (s State) Validate() error {
	idx, ok := s.Selected()
	if !ok {
		return nil
	}
	if idx < 0 || idx >= len(s.items) {
		return fmt.Errorf("%w: index %d with %d items", ErrInvalidTarget, idx, len(s.items))
	}
	return nil
}
