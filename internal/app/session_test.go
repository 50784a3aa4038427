package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/hylla/tudu/internal/domain"
)

type fakeJournal struct {
	events []domain.ChangeEvent
	err    error
}

func (f *fakeJournal) AppendChangeEvent(_ context.Context, event domain.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeJournal) ListChangeEvents(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ChangeEvent, 0, len(f.events))
	for i := len(f.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, f.events[i])
	}
	return out, nil
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.messages = append(l.messages, "debug:"+msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.messages = append(l.messages, "info:"+msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.messages = append(l.messages, "warn:"+msg) }

func newTestSession(t *testing.T, journal Journal, values ...string) *Session {
	t.Helper()
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc, err := NewSession(domain.NewStateFromValues(values), journal, idGen, func() time.Time { return now }, SessionConfig{})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return svc
}

func dispatchAll(t *testing.T, s *Session, intents ...domain.Intent) domain.State {
	t.Helper()
	var state domain.State
	for _, in := range intents {
		var err error
		state, err = s.Dispatch(context.Background(), in)
		if err != nil {
			t.Fatalf("Dispatch(%v) error = %v", in, err)
		}
	}
	return state
}

func TestSessionDispatchRecordsJournal(t *testing.T) {
	journal := &fakeJournal{}
	s := newTestSession(t, journal, "hello world", "hello iced2")

	state := dispatchAll(t, s, domain.StartEdit{Index: 1}, domain.ChangeDraftText{Text: "buy milk"}, domain.Submit{})
	if got := state.Values(); !slices.Equal(got, []string{"hello world", "buy milk"}) {
		t.Fatalf("unexpected list %#v", got)
	}
	if len(journal.events) != 3 {
		t.Fatalf("expected 3 journal events, got %d", len(journal.events))
	}
	last := journal.events[2]
	if last.ID != "ev-3" || last.Seq != 3 || last.Operation != domain.IntentSubmit || !last.Changed {
		t.Fatalf("unexpected last event %#v", last)
	}

	events, err := s.Activity(context.Background(), 2)
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 {
		t.Fatalf("unexpected activity %#v", events)
	}
}

func TestSessionJournalFailureStillAdvancesState(t *testing.T) {
	boom := errors.New("boom")
	logger := &recordingLogger{}
	s, err := NewSession(domain.NewStateFromValues([]string{"a"}), &fakeJournal{err: boom}, nil, nil, SessionConfig{Logger: logger})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	state, err := s.Dispatch(context.Background(), domain.Delete{Index: 0})
	if !errors.Is(err, boom) {
		t.Fatalf("expected journal error, got %v", err)
	}
	if state.Len() != 0 || s.State().Len() != 0 {
		t.Fatal("expected delete applied despite journal failure")
	}
	if !slices.Contains(logger.messages, "warn:journal append failed") {
		t.Fatalf("expected warn log, got %#v", logger.messages)
	}
	if _, err := s.Activity(context.Background(), 5); !errors.Is(err, boom) {
		t.Fatalf("expected activity error, got %v", err)
	}
}

func TestSessionUndoRedo(t *testing.T) {
	s := newTestSession(t, nil, "a", "b", "c")
	if _, err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}

	dispatchAll(t, s, domain.StartEdit{Index: 2}, domain.ChangeDraftText{Text: "see"})
	if s.CanUndo() {
		t.Fatal("draft edits must not create undo history")
	}
	dispatchAll(t, s, domain.Submit{}, domain.Delete{Index: 0})
	if got := s.State().Values(); !slices.Equal(got, []string{"b", "see"}) {
		t.Fatalf("unexpected list %#v", got)
	}

	state, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := state.Values(); !slices.Equal(got, []string{"a", "b", "see"}) {
		t.Fatalf("unexpected list after undo %#v", got)
	}
	state, _ = s.Undo()
	if got := state.Values(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected list after second undo %#v", got)
	}
	if _, ok := state.Pane().(domain.WelcomePane); !ok {
		t.Fatalf("expected undo to land on welcome, got %T", state.Pane())
	}

	state, err = s.Redo()
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if got := state.Values(); !slices.Equal(got, []string{"a", "b", "see"}) {
		t.Fatalf("unexpected list after redo %#v", got)
	}

	dispatchAll(t, s, domain.StartCreate{}, domain.ChangeDraftText{Text: "d"}, domain.Submit{})
	if s.CanRedo() {
		t.Fatal("expected new change to clear redo history")
	}
	if _, err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestSessionUndoClosesOpenEditor(t *testing.T) {
	s := newTestSession(t, nil, "a", "b")
	dispatchAll(t, s, domain.Delete{Index: 0}, domain.StartEdit{Index: 0})
	state, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, ok := state.Selected(); ok {
		t.Fatal("expected selection cleared after undo")
	}
	state, _ = s.Redo()
	if got := state.Values(); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("unexpected list after redo %#v", got)
	}
}

func TestSessionHistoryLimit(t *testing.T) {
	s, err := NewSession(domain.NewState(), nil, nil, nil, SessionConfig{HistoryLimit: 2})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	for _, text := range []string{"a", "b", "c"} {
		dispatchAll(t, s, domain.StartCreate{}, domain.ChangeDraftText{Text: text}, domain.Submit{})
	}
	undone := 0
	for s.CanUndo() {
		if _, err := s.Undo(); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		undone++
	}
	if undone != 2 {
		t.Fatalf("expected 2 undo steps, got %d", undone)
	}
	if got := s.State().Values(); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("unexpected list at oldest history %#v", got)
	}
}

func TestNewSessionAcceptsEmptyState(t *testing.T) {
	if _, err := NewSession(domain.NewState(), nil, nil, nil, SessionConfig{}); err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
}
