package domain

// Apply returns the state that follows s once in is handled. It never fails:
// intents whose preconditions do not hold, including stale indexes, leave s unchanged.
// The returned state never shares writable list storage with s.
func Apply(s State, in Intent) State {
	switch in := in.(type) {
	case ChangeDraftText:
		ed, ok := s.Editor()
		if !ok {
			return s
		}
		s.pane = EditingPane{Editor: ed.WithDraftText(in.Text)}
		return s
	case StartCreate:
		s.pane = EditingPane{Editor: NewCreateEditor()}
		return s
	case StartEdit:
		item, ok := s.Item(in.Index)
		if !ok {
			return s
		}
		s.pane = EditingPane{Editor: NewEditEditor(in.Index, item)}
		return s
	case Submit:
		return submit(s)
	case Cancel:
		return closeEditor(s)
	case Delete:
		if _, ok := s.Item(in.Index); !ok {
			return s
		}
		items := make([]TodoItem, 0, len(s.items)-1)
		items = append(items, s.items[:in.Index]...)
		items = append(items, s.items[in.Index+1:]...)
		s.items = items
		return closeEditor(s)
	default:
		return s
	}
}

// ApplyAll folds a sequence of intents over s.
func ApplyAll(s State, intents ...Intent) State {
	for _, in := range intents {
		s = Apply(s, in)
	}
	return s
}

// submit stores the draft of the open editor. Empty drafts keep the editor open.
func submit(s State) State {
	ed, ok := s.Editor()
	if !ok {
		return s
	}
	draft := ed.Draft()
	if draft.IsEmpty() {
		return s
	}
	if idx, editing := ed.Target(); editing {
		if _, ok := s.Item(idx); !ok {
			return closeEditor(s)
		}
		items := make([]TodoItem, len(s.items))
		copy(items, s.items)
		items[idx] = draft
		s.items = items
		return closeEditor(s)
	}
	items := make([]TodoItem, 0, len(s.items)+1)
	items = append(items, s.items...)
	items = append(items, draft)
	s.items = items
	return closeEditor(s)
}

// closeEditor returns to the welcome pane, which also clears the selection.
func closeEditor(s State) State {
	s.pane = WelcomePane{}
	return s
}
