package domain

import "errors"

var (
	ErrInvalidTarget = errors.New("invalid editor target")
	ErrInvalidIntent = errors.New("invalid intent")
	ErrUnknownIntent = errors.New("unknown intent")
)
