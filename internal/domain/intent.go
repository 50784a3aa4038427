package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// IntentKind names an intent for logs and the activity journal.
type IntentKind string

// IntentKind values, one per intent type.
const (
	IntentChangeDraftText IntentKind = "change_draft_text"
	IntentStartCreate     IntentKind = "start_create"
	IntentStartEdit       IntentKind = "start_edit"
	IntentSubmit          IntentKind = "submit"
	IntentCancel          IntentKind = "cancel"
	IntentDelete          IntentKind = "delete"
)

// Intent is a discrete user action emitted by the view layer.
type Intent interface {
	Kind() IntentKind
	String() string
	isIntent()
}

// ChangeDraftText replaces the open editor's draft text.
type ChangeDraftText struct {
	Text string
}

// StartCreate opens an empty editor for a new item.
type StartCreate struct{}

// StartEdit opens an editor on list[Index].
type StartEdit struct {
	Index int
}

// Submit stores the draft, appending or replacing, and closes the editor.
type Submit struct{}

// Cancel closes the editor without storing anything.
type Cancel struct{}

// Delete removes list[Index] and closes the editor.
type Delete struct {
	Index int
}

func (ChangeDraftText) Kind() IntentKind { return IntentChangeDraftText }
func (StartCreate) Kind() IntentKind     { return IntentStartCreate }
func (StartEdit) Kind() IntentKind       { return IntentStartEdit }
func (Submit) Kind() IntentKind          { return IntentSubmit }
func (Cancel) Kind() IntentKind          { return IntentCancel }
func (Delete) Kind() IntentKind          { return IntentDelete }

func (i ChangeDraftText) String() string { return "text:" + i.Text }
func (StartCreate) String() string       { return "create" }
func (i StartEdit) String() string       { return "edit:" + strconv.Itoa(i.Index) }
func (Submit) String() string            { return "submit" }
func (Cancel) String() string            { return "cancel" }
func (i Delete) String() string          { return "delete:" + strconv.Itoa(i.Index) }

func (ChangeDraftText) isIntent() {}
func (StartCreate) isIntent()     {}
func (StartEdit) isIntent()       {}
func (Submit) isIntent()          {}
func (Cancel) isIntent()          {}
func (Delete) isIntent()          {}

// ParseIntent parses the textual form produced by Intent.String.
//
//	create | edit:<index> | text:<value> | submit | cancel | delete:<index>
func ParseIntent(raw string) (Intent, error) {
	name, arg, hasArg := strings.Cut(raw, ":")
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "create":
		return StartCreate{}, nil
	case "submit":
		return Submit{}, nil
	case "cancel":
		return Cancel{}, nil
	case "text":
		if !hasArg {
			return nil, fmt.Errorf("%w: %q needs a value", ErrInvalidIntent, raw)
		}
		return ChangeDraftText{Text: arg}, nil
	case "edit":
		idx, err := parseIntentIndex(raw, arg, hasArg)
		if err != nil {
			return nil, err
		}
		return StartEdit{Index: idx}, nil
	case "delete":
		idx, err := parseIntentIndex(raw, arg, hasArg)
		if err != nil {
			return nil, err
		}
		return Delete{Index: idx}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, raw)
	}
}

// ParseIntents parses a script of intents, one per entry.
func ParseIntents(raw []string) ([]Intent, error) {
	out := make([]Intent, 0, len(raw))
	for _, entry := range raw {
		in, err := ParseIntent(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// parseIntentIndex parses the list index argument of edit/delete intents.
func parseIntentIndex(raw, arg string, hasArg bool) (int, error) {
	if !hasArg {
		return 0, fmt.Errorf("%w: %q needs an index", ErrInvalidIntent, raw)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidIntent, raw, err)
	}
	return idx, nil
}
