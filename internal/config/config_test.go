package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if !slices.Equal(cfg.Seed.Items, []string{"hello world", "hello iced2"}) {
		t.Fatalf("unexpected seed items %#v", cfg.Seed.Items)
	}
	if cfg.UI.Title != "hello iced" || cfg.UI.Header != "hello world" {
		t.Fatalf("unexpected ui defaults %#v", cfg.UI)
	}
	if cfg.Confirm.Delete {
		t.Fatal("expected delete confirmation disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(cfg.Seed.Items, defaults.Seed.Items) {
		t.Fatalf("expected default seed, got %#v", cfg.Seed.Items)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
level = "debug"

[seed]
items = ["buy milk"]

[ui]
title = "groceries"

[confirm]
delete = true

[keys]
yank = "c"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if !slices.Equal(cfg.Seed.Items, []string{"buy milk"}) {
		t.Fatalf("unexpected seed %#v", cfg.Seed.Items)
	}
	if cfg.UI.Title != "groceries" || cfg.UI.Header != "hello world" {
		t.Fatalf("unexpected ui config %#v", cfg.UI)
	}
	if !cfg.Confirm.Delete {
		t.Fatal("expected delete confirmation from config override")
	}
	if cfg.Keys.Yank != "c" || cfg.Keys.NewItem != "n" {
		t.Fatalf("unexpected keys %#v", cfg.Keys)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"log level":      "[logging]\nlevel = \"loud\"\n",
		"blank key":      "[keys]\nundo = \"\"\n",
		"duplicate key":  "[keys]\nundo = \"n\"\n",
		"reserved edit":  "[keys]\ndelete_item = \"e\"\n",
		"reserved move":  "[keys]\ndelete_item = \"j\"\n",
		"reserved quit":  "[keys]\nyank = \"q\"\n",
		"reserved enter": "[keys]\nundo = \"Enter\"\n",
		"reserved arrow": "[keys]\nredo = \"down\"\n",
		"activity limit": "[ui]\nactivity_limit = -1\n",
		"bad toml":       "[ui\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default()); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteDefault(path, Default()); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "hello iced2") {
		t.Fatalf("expected seed items in written config, got %s", content)
	}
	cfg, err := Load(path, Config{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Keys.Redo != "Z" || cfg.History.Limit != 100 {
		t.Fatalf("unexpected reloaded config %#v", cfg)
	}
	if err := WriteDefault(path, Default()); err == nil {
		t.Fatal("expected second write to refuse overwriting")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}

func TestValidateAllowsUnreservedOverrides(t *testing.T) {
	cfg := Default()
	cfg.Keys.DeleteItem = "x"
	cfg.Keys.Undo = "u"
	cfg.Keys.Redo = "U"
	cfg.Keys.Yank = "space"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.Keys.NewItem = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected space and \"space\" to collide")
	}
}
