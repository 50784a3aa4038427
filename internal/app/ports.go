package app

import (
	"context"

	"github.com/hylla/tudu/internal/domain"
)

// Journal records dispatched intents for the activity log.
type Journal interface {
	AppendChangeEvent(context.Context, domain.ChangeEvent) error
	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
}

// Logger receives structured session events as key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}
