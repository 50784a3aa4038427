package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
)

// KeyConfig holds configurable list-focus key overrides.
type KeyConfig struct {
	NewItem     string
	DeleteItem  string
	ActivityLog string
	Undo        string
	Redo        string
	Yank        string
}

// RuntimeConfig holds display and behaviour settings resolved from config.
type RuntimeConfig struct {
	Title           string
	Header          string
	WelcomeMarkdown string
	ShowActivity    bool
	ActivityLimit   int
	ConfirmDelete   bool
	Keys            KeyConfig
}

type Option func(*Model)

// ClipboardWriter writes text to a clipboard.
type ClipboardWriter func(string) error

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Title:           "hello iced",
		Header:          "hello world",
		WelcomeMarkdown: defaultWelcomeMarkdown,
		ShowActivity:    true,
		ActivityLimit:   activityLogMaxItems,
	}
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		if title := strings.TrimSpace(cfg.Title); title != "" {
			m.title = title
		}
		m.header = strings.TrimSpace(cfg.Header)
		if strings.TrimSpace(cfg.WelcomeMarkdown) != "" {
			m.welcomeMarkdown = cfg.WelcomeMarkdown
		}
		m.showActivity = cfg.ShowActivity
		if cfg.ActivityLimit > 0 {
			m.activityLimit = cfg.ActivityLimit
		}
		m.confirmDelete = cfg.ConfirmDelete
		m.keys.applyConfig(cfg.Keys)
	}
}

func WithClipboardWriter(write ClipboardWriter) Option {
	return func(m *Model) {
		if write != nil {
			m.clipboardWrite = write
		}
	}
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// defaultClipboardWriter writes to the system clipboard.
func defaultClipboardWriter(text string) error {
	return clipboard.WriteAll(text)
}
