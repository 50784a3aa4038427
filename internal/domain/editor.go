package domain

// Editor holds the working copy of an item while it is being created or edited.
type Editor struct {
	target    int
	hasTarget bool
	draft     TodoItem
}

// NewCreateEditor returns an editor for a new item with an empty draft.
func NewCreateEditor() Editor {
	return Editor{}
}

// NewEditEditor returns an editor bound to list[index] with a copy of item as its draft.
func NewEditEditor(index int, item TodoItem) Editor {
	return Editor{
		target:    index,
		hasTarget: true,
		draft:     item,
	}
}

// Target returns the list index being edited. ok is false in create mode.
func (e Editor) Target() (int, bool) {
	if !e.hasTarget {
		return 0, false
	}
	return e.target, true
}

func (e Editor) Creating() bool {
	return !e.hasTarget
}

func (e Editor) Draft() TodoItem {
	return e.draft
}

// WithDraftText returns a copy of the editor whose draft text is replaced.
func (e Editor) WithDraftText(text string) Editor {
	e.draft = NewTodoItem(text)
	return e
}
