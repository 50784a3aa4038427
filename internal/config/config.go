package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// reservedKeys are the fixed list keys (quit, help, cursor movement, edit).
// Configurable actions bound to them would never fire.
var reservedKeys = []string{"q", "ctrl+c", "?", "k", "up", "j", "down", "e", "enter"}

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Seed    SeedConfig    `toml:"seed"`
	UI      UIConfig      `toml:"ui"`
	Confirm ConfirmConfig `toml:"confirm"`
	History HistoryConfig `toml:"history"`
	Keys    KeyConfig     `toml:"keys"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// SeedConfig lists the items the in-memory list starts with.
type SeedConfig struct {
	Items []string `toml:"items"`
}

type UIConfig struct {
	Title           string `toml:"title"`
	Header          string `toml:"header"`
	WelcomeMarkdown string `toml:"welcome_markdown"`
	ShowActivity    bool   `toml:"show_activity"`
	ActivityLimit   int    `toml:"activity_limit"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

type HistoryConfig struct {
	Limit int `toml:"limit"`
}

type KeyConfig struct {
	NewItem     string `toml:"new_item"`
	DeleteItem  string `toml:"delete_item"`
	ActivityLog string `toml:"activity_log"`
	Undo        string `toml:"undo"`
	Redo        string `toml:"redo"`
	Yank        string `toml:"yank"`
}

const defaultWelcomeMarkdown = `# Welcome

Pick an item on the left to edit it, or press **n** to add a new one.`

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tudu/log",
			},
		},
		Seed: SeedConfig{
			Items: []string{"hello world", "hello iced2"},
		},
		UI: UIConfig{
			Title:           "hello iced",
			Header:          "hello world",
			WelcomeMarkdown: defaultWelcomeMarkdown,
			ShowActivity:    true,
			ActivityLimit:   20,
		},
		Confirm: ConfirmConfig{
			Delete: false,
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Keys: KeyConfig{
			NewItem:     "n",
			DeleteItem:  "d",
			ActivityLog: "g",
			Undo:        "z",
			Redo:        "Z",
			Yank:        "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.UI.ActivityLimit < 0 {
		return errors.New("ui.activity_limit must be >= 0")
	}
	if c.History.Limit < 0 {
		return errors.New("history.limit must be >= 0")
	}

	keys := []struct {
		name  string
		value string
	}{
		{"keys.new_item", c.Keys.NewItem},
		{"keys.delete_item", c.Keys.DeleteItem},
		{"keys.activity_log", c.Keys.ActivityLog},
		{"keys.undo", c.Keys.Undo},
		{"keys.redo", c.Keys.Redo},
		{"keys.yank", c.Keys.Yank},
	}
	seen := map[string]string{}
	for _, k := range keys {
		value := normalizeKey(k.value)
		if value == "" {
			return fmt.Errorf("%s is required", k.name)
		}
		if slices.Contains(reservedKeys, value) {
			return fmt.Errorf("%s uses reserved key %q", k.name, value)
		}
		if other, ok := seen[value]; ok {
			return fmt.Errorf("%s duplicates %s: %q", k.name, other, value)
		}
		seen[value] = k.name
	}

	return nil
}

// normalizeKey folds a binding the way key matching sees it: single characters
// keep their case, named keys are lower-cased.
func normalizeKey(raw string) string {
	if raw == " " {
		return "space"
	}
	value := strings.TrimSpace(raw)
	if utf8.RuneCountInString(value) == 1 {
		return value
	}
	return strings.ToLower(value)
}

// WriteDefault writes cfg as TOML to path unless a file already exists there.
func WriteDefault(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
