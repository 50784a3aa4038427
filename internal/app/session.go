package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hylla/tudu/internal/domain"
)

// defaultHistoryLimit caps undo/redo depth when the config leaves it unset.
const defaultHistoryLimit = 100

// SessionConfig holds configuration for a session.
type SessionConfig struct {
	HistoryLimit int
	Logger       Logger
}

// IDGenerator returns unique identifiers for journal entries.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Session owns the application state and is its only writer. It is not safe for
// concurrent use; the program loop dispatches one intent at a time.
type Session struct {
	state        domain.State
	journal      Journal
	logger       Logger
	idGen        IDGenerator
	clock        Clock
	seq          int64
	historyLimit int
	undoStack    []domain.State
	redoStack    []domain.State
}

// NewSession constructs a session over a validated initial state. journal may be nil.
func NewSession(initial domain.State, journal Journal, idGen IDGenerator, clock Clock, cfg SessionConfig) (*Session, error) {
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Session{
		state:        initial,
		journal:      journal,
		logger:       cfg.Logger,
		idGen:        idGen,
		clock:        clock,
		historyLimit: cfg.HistoryLimit,
	}, nil
}

// State returns the current state.
func (s *Session) State() domain.State {
	return s.state
}

// Dispatch applies one intent. The state always advances; a returned error only
// reports that the journal could not record the transition.
func (s *Session) Dispatch(ctx context.Context, in domain.Intent) (domain.State, error) {
	before := s.state
	after := domain.Apply(before, in)
	s.state = after

	changed := !before.SameItems(after)
	if changed {
		s.pushUndo(before)
		s.redoStack = nil
	}
	s.debug("intent dispatched", "intent", intentLabel(in), "pane", domain.PaneName(after.Pane()), "items", after.Len(), "changed", changed)

	if s.journal == nil {
		return after, nil
	}
	s.seq++
	event := domain.NewChangeEvent(s.idGen(), in, before, after, s.clock())
	event.Seq = s.seq
	if err := s.journal.AppendChangeEvent(ctx, event); err != nil {
		s.warn("journal append failed", "intent", intentLabel(in), "seq", event.Seq, "err", err)
		return after, fmt.Errorf("record %s: %w", event.Operation, err)
	}
	return after, nil
}

// Undo restores the list as it was before the last list-changing intent.
func (s *Session) Undo() (domain.State, error) {
	if len(s.undoStack) == 0 {
		return s.state, ErrNothingToUndo
	}
	prev := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, welcomeSnapshot(s.state))
	s.state = prev
	s.info("history undo", "items", prev.Len(), "undo_depth", len(s.undoStack))
	return s.state, nil
}

// Redo re-applies the last undone change.
func (s *Session) Redo() (domain.State, error) {
	if len(s.redoStack) == 0 {
		return s.state, ErrNothingToRedo
	}
	next := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, welcomeSnapshot(s.state))
	s.state = next
	s.info("history redo", "items", next.Len(), "redo_depth", len(s.redoStack))
	return s.state, nil
}

// CanUndo reports whether Undo has a state to restore.
func (s *Session) CanUndo() bool {
	return len(s.undoStack) > 0
}

// CanRedo reports whether Redo has a state to restore.
func (s *Session) CanRedo() bool {
	return len(s.redoStack) > 0
}

// Activity returns up to limit journal entries, newest first.
func (s *Session) Activity(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if s.journal == nil {
		return nil, nil
	}
	events, err := s.journal.ListChangeEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return events, nil
}

// pushUndo records a restorable snapshot, dropping the oldest past the limit.
func (s *Session) pushUndo(state domain.State) {
	s.undoStack = append(s.undoStack, welcomeSnapshot(state))
	if over := len(s.undoStack) - s.historyLimit; over > 0 {
		s.undoStack = append([]domain.State(nil), s.undoStack[over:]...)
	}
}

// welcomeSnapshot keeps the list of state and closes any editor, so a restored
// state never carries a target that refers to another list.
func welcomeSnapshot(state domain.State) domain.State {
	return domain.NewState(state.Items()...)
}

// intentLabel renders an intent for logs, tolerating nil.
func intentLabel(in domain.Intent) string {
	if in == nil {
		return "<nil>"
	}
	return in.String()
}

// debug forwards to the optional logger.
func (s *Session) debug(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

// info forwards to the optional logger.
func (s *Session) info(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Info(msg, keyvals...)
	}
}

// warn forwards to the optional logger.
func (s *Session) warn(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}
