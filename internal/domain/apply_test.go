package domain

import (
	"slices"
	"testing"
)

func mustEditing(t *testing.T, s State) Editor {
	t.Helper()
	p, ok := s.Pane().(EditingPane)
	if !ok {
		t.Fatalf("expected editing pane, got %T", s.Pane())
	}
	return p.Editor
}

func mustWelcome(t *testing.T, s State) {
	t.Helper()
	if _, ok := s.Pane().(WelcomePane); !ok {
		t.Fatalf("expected welcome pane, got %T", s.Pane())
	}
	if idx, ok := s.Selected(); ok {
		t.Fatalf("expected no selection on welcome, got %d", idx)
	}
}

func assertValues(t *testing.T, s State, want ...string) {
	t.Helper()
	if got := s.Values(); !slices.Equal(got, want) {
		t.Fatalf("unexpected list %#v, want %#v", got, want)
	}
}

func TestApplyEditScenario(t *testing.T) {
	s := NewStateFromValues([]string{"hello world", "hello iced2"})

	s = Apply(s, StartEdit{Index: 1})
	ed := mustEditing(t, s)
	if ed.Draft().Value != "hello iced2" {
		t.Fatalf("unexpected draft %q", ed.Draft().Value)
	}
	if idx, ok := s.Selected(); !ok || idx != 1 {
		t.Fatalf("expected selection 1, got %d (%t)", idx, ok)
	}

	s = Apply(s, ChangeDraftText{Text: "buy milk"})
	if got := mustEditing(t, s).Draft().Value; got != "buy milk" {
		t.Fatalf("unexpected draft after change %q", got)
	}
	assertValues(t, s, "hello world", "hello iced2")

	s = Apply(s, Submit{})
	assertValues(t, s, "hello world", "buy milk")
	mustWelcome(t, s)
}

func TestApplyEmptySubmitKeepsEditorOpen(t *testing.T) {
	s := NewStateFromValues([]string{"a", "b"})
	s = ApplyAll(s, StartCreate{}, ChangeDraftText{Text: ""}, Submit{})
	assertValues(t, s, "a", "b")
	ed := mustEditing(t, s)
	if !ed.Creating() {
		t.Fatal("expected create editor to stay open")
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("create mode must not select a row")
	}
}

func TestApplyEmptyEditSubmitKeepsEditorOpen(t *testing.T) {
	s := NewStateFromValues([]string{"a", "b", "c"})
	s = ApplyAll(s, StartEdit{Index: 2}, ChangeDraftText{Text: ""}, Submit{})
	assertValues(t, s, "a", "b", "c")
	ed := mustEditing(t, s)
	if idx, ok := ed.Target(); !ok || idx != 2 {
		t.Fatalf("expected editor on item 2, got %d (%t)", idx, ok)
	}
	if idx, ok := s.Selected(); !ok || idx != 2 {
		t.Fatalf("expected selection 2, got %d (%t)", idx, ok)
	}
	if ed.Draft().Value != "" {
		t.Fatalf("expected empty draft kept, got %q", ed.Draft().Value)
	}
}

func TestApplyDeleteClosesUnrelatedEditor(t *testing.T) {
	s := NewStateFromValues([]string{"a", "b", "c"})
	s = Apply(s, StartEdit{Index: 2})
	s = Apply(s, Delete{Index: 0})
	assertValues(t, s, "b", "c")
	mustWelcome(t, s)
}

func TestApplyCreateAppends(t *testing.T) {
	for _, text := range []string{"x", " ", "buy milk", "ünïcode"} {
		t.Run(text, func(t *testing.T) {
			s := NewStateFromValues([]string{"a", "b"})
			s = ApplyAll(s, StartCreate{}, ChangeDraftText{Text: text}, Submit{})
			if s.Len() != 3 {
				t.Fatalf("expected 3 items, got %d", s.Len())
			}
			last, _ := s.Item(s.Len() - 1)
			if last.Value != text {
				t.Fatalf("unexpected last item %q", last.Value)
			}
			mustWelcome(t, s)
		})
	}
}

func TestApplyEditReplacesOnlyTarget(t *testing.T) {
	base := []string{"a", "b", "c", "d"}
	for idx := range base {
		s := NewStateFromValues(base)
		s = ApplyAll(s, StartEdit{Index: idx}, ChangeDraftText{Text: "new"}, Submit{})
		want := slices.Clone(base)
		want[idx] = "new"
		assertValues(t, s, want...)
		mustWelcome(t, s)
	}
}

func TestApplyCancelFromAnyState(t *testing.T) {
	starts := map[string]State{
		"welcome": NewStateFromValues([]string{"a"}),
		"create":  ApplyAll(NewStateFromValues([]string{"a"}), StartCreate{}, ChangeDraftText{Text: "draft"}),
		"edit":    ApplyAll(NewStateFromValues([]string{"a"}), StartEdit{Index: 0}, ChangeDraftText{Text: "draft"}),
		"zero":    {},
	}
	for name, s := range starts {
		t.Run(name, func(t *testing.T) {
			before := s.Values()
			s = Apply(s, Cancel{})
			mustWelcome(t, s)
			assertValues(t, s, before...)
		})
	}
}

func TestApplyDeleteKeepsOrder(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e"}
	for idx := range base {
		s := ApplyAll(NewStateFromValues(base), StartCreate{})
		s = Apply(s, Delete{Index: idx})
		want := slices.Delete(slices.Clone(base), idx, idx+1)
		assertValues(t, s, want...)
		mustWelcome(t, s)
	}
}

func TestApplyIgnoresStaleIndexes(t *testing.T) {
	s := ApplyAll(NewStateFromValues([]string{"a", "b"}), StartEdit{Index: 0}, ChangeDraftText{Text: "keep"})
	for _, in := range []Intent{StartEdit{Index: 2}, StartEdit{Index: -1}, Delete{Index: 5}, Delete{Index: -1}, nil} {
		next := Apply(s, in)
		assertValues(t, next, "a", "b")
		if got := mustEditing(t, next).Draft().Value; got != "keep" {
			t.Fatalf("intent %v changed draft to %q", in, got)
		}
	}
}

func TestApplyChangeDraftTextOnWelcomeIsNoop(t *testing.T) {
	s := NewStateFromValues([]string{"a"})
	s = Apply(s, ChangeDraftText{Text: "ignored"})
	mustWelcome(t, s)
	assertValues(t, s, "a")
}

func TestApplySubmitOnWelcomeIsNoop(t *testing.T) {
	s := NewStateFromValues([]string{"a"})
	s = Apply(s, Submit{})
	mustWelcome(t, s)
	assertValues(t, s, "a")
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := make([]TodoItem, 0, 8)
	items = append(items, NewTodoItem("a"), NewTodoItem("b"))
	before := State{items: items, pane: WelcomePane{}}

	created := ApplyAll(before, StartCreate{}, ChangeDraftText{Text: "c"}, Submit{})
	edited := ApplyAll(before, StartEdit{Index: 0}, ChangeDraftText{Text: "z"}, Submit{})
	deleted := Apply(before, Delete{Index: 0})

	assertValues(t, before, "a", "b")
	assertValues(t, created, "a", "b", "c")
	assertValues(t, edited, "z", "b")
	assertValues(t, deleted, "b")
	if got := items[:3][2].Value; got != "" {
		t.Fatalf("append leaked into shared backing array: %q", got)
	}
}

func TestApplyStartCreateClearsSelection(t *testing.T) {
	s := ApplyAll(NewStateFromValues([]string{"a", "b"}), StartEdit{Index: 1}, StartCreate{})
	if _, ok := s.Selected(); ok {
		t.Fatal("expected selection cleared by create")
	}
	if ed := mustEditing(t, s); ed.Draft().Value != "" || !ed.Creating() {
		t.Fatalf("unexpected create editor %#v", ed)
	}
}

func TestApplyScriptKeepsInvariants(t *testing.T) {
	script := []Intent{
		StartCreate{}, ChangeDraftText{Text: "one"}, Submit{},
		StartEdit{Index: 0}, Delete{Index: 1},
		StartEdit{Index: 3}, ChangeDraftText{Text: "edited"}, Submit{},
		StartCreate{}, Cancel{}, Delete{Index: 0},
		StartEdit{Index: 2}, ChangeDraftText{Text: ""}, Submit{},
		Delete{Index: 2}, StartEdit{Index: 1}, Submit{},
	}
	s := NewStateFromValues([]string{"a", "b", "c", "d"})
	for step, in := range script {
		s = Apply(s, in)
		if err := s.Validate(); err != nil {
			t.Fatalf("step %d (%v): %v", step, in, err)
		}
	}
}
