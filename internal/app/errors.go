package app

import "errors"

// ErrNothingToUndo and related errors describe history and session failures.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrInvalidState  = errors.New("invalid initial state")
)
