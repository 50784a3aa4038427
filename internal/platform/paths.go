package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultAppName = "tudu"

var ErrEmptyBaseDir = errors.New("empty base dir")

// Paths holds the per-user locations tudu reads and writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	// LogDir receives dev log files when no workspace-local log dir applies.
	LogDir string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// DirName returns the per-app directory name, suffixed with -dev in dev mode.
func (o Options) DirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = defaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// BaseDirs are the OS user directories before env overrides.
type BaseDirs struct {
	Config string
	Data   string
}

// envOverrides names, per GOOS, the variables that replace the config and data bases.
var envOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return Resolve(Options{})
}

// Resolve resolves paths for the running OS and user.
func Resolve(opts Options) (Paths, error) {
	base, err := userBaseDirs(runtime.GOOS)
	if err != nil {
		return Paths{}, err
	}
	return ResolveFor(runtime.GOOS, os.Getenv, base, opts)
}

// ResolveFor resolves paths for goos from explicit base dirs; getenv supplies overrides.
func ResolveFor(goos string, getenv func(string) string, base BaseDirs, opts Options) (Paths, error) {
	if base.Config == "" || base.Data == "" {
		return Paths{}, ErrEmptyBaseDir
	}
	if vars, ok := envOverrides[goos]; ok && getenv != nil {
		if v := strings.TrimSpace(getenv(vars.config)); v != "" {
			base.Config = v
		}
		if v := strings.TrimSpace(getenv(vars.data)); v != "" {
			base.Data = v
		}
	}

	name := opts.DirName()
	dataDir := filepath.Join(base.Data, name)
	return Paths{
		ConfigPath: filepath.Join(base.Config, name, "config.toml"),
		DataDir:    dataDir,
		LogDir:     filepath.Join(dataDir, "log"),
	}, nil
}

// userBaseDirs reads the OS user dirs. Linux data lives under ~/.local/share.
func userBaseDirs(goos string) (BaseDirs, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return BaseDirs{}, fmt.Errorf("user config dir: %w", err)
	}
	base := BaseDirs{Config: configDir, Data: configDir}
	if goos == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return BaseDirs{}, fmt.Errorf("user home dir: %w", err)
		}
		base.Data = filepath.Join(home, ".local", "share")
	}
	return base, nil
}

// DevLogDir picks the dev log directory. An absolute configured dir wins; a
// relative one is anchored at the workspace root above cwd. Without a configured
// dir or a workspace, logs go to p.LogDir.
func (p Paths) DevLogDir(configured, cwd string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return p.LogDir
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	root, ok := WorkspaceRoot(cwd)
	if !ok {
		return p.LogDir
	}
	return filepath.Join(root, configured)
}

// WorkspaceRoot returns the nearest ancestor of start holding go.mod or .git.
func WorkspaceRoot(start string) (string, bool) {
	start = strings.TrimSpace(start)
	if start == "" {
		return "", false
	}
	for dir := filepath.Clean(start); ; {
		if hasWorkspaceMarker(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
