package domain

import "time"

// NoIndex marks a change event whose intent carries no list index.
const NoIndex = -1

// ChangeEvent is one activity-journal entry describing a dispatched intent.
type ChangeEvent struct {
	ID         string
	Seq        int64
	Operation  IntentKind
	Index      int
	Text       string
	ItemCount  int
	Pane       string
	Changed    bool
	OccurredAt time.Time
}

// NewChangeEvent describes the transition from before to after caused by in.
func NewChangeEvent(id string, in Intent, before, after State, now time.Time) ChangeEvent {
	event := ChangeEvent{
		ID:         id,
		Index:      NoIndex,
		ItemCount:  after.Len(),
		Pane:       PaneName(after.Pane()),
		Changed:    !before.SameItems(after),
		OccurredAt: now.UTC(),
	}
	if in == nil {
		return event
	}
	event.Operation = in.Kind()
	switch in := in.(type) {
	case ChangeDraftText:
		event.Text = in.Text
	case StartEdit:
		event.Index = in.Index
	case Delete:
		event.Index = in.Index
		if item, ok := before.Item(in.Index); ok {
			event.Text = item.Value
		}
	case Submit:
		if ed, ok := before.Editor(); ok {
			event.Text = ed.Draft().Value
			if idx, editing := ed.Target(); editing {
				event.Index = idx
			}
		}
	}
	return event
}

// Summary renders a one-line description for activity views.
func (e ChangeEvent) Summary() string {
	switch e.Operation {
	case IntentStartCreate:
		return "new item"
	case IntentStartEdit:
		return "edit item"
	case IntentChangeDraftText:
		return "draft changed"
	case IntentSubmit:
		if !e.Changed {
			// An edit submit that stored identical text still closes the editor.
			if e.Index != NoIndex && e.Pane == PaneName(WelcomePane{}) {
				return "item unchanged"
			}
			return "submit ignored"
		}
		if e.Index == NoIndex {
			return "item added"
		}
		return "item updated"
	case IntentCancel:
		return "editor closed"
	case IntentDelete:
		if !e.Changed {
			return "delete ignored"
		}
		return "item deleted"
	default:
		return string(e.Operation)
	}
}
