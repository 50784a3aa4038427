package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hylla/tudu/internal/adapters/storage/sqlite"
	"github.com/hylla/tudu/internal/app"
	"github.com/hylla/tudu/internal/config"
	"github.com/hylla/tudu/internal/domain"
	"github.com/hylla/tudu/internal/platform"
	"github.com/hylla/tudu/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// fang has already rendered the error.
		os.Exit(1)
	}
}

// rootOptions holds persistent flags shared by every command.
type rootOptions struct {
	configPath string
	appName    string
	devMode    bool
}

// runtimeEnv is the resolved startup state for one command flow.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: "tudu"}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TUDU_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TUDU_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:   "tudu",
		Short: "A single-window todo list editor",
		Long:  "tudu keeps a todo list in memory and edits it in a two-pane terminal window.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newSeedCommand(opts, stdout),
		newReplayCommand(opts, stdout, stderr),
		newConfigCommand(opts, stdout),
	)
	return root
}

// newPathsCommand prints resolved runtime paths.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", opts.resolveConfigPath(paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// newSeedCommand prints the list the editor starts with.
func newSeedCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the configured starting list",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, _, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			writeItems(stdout, domain.NewStateFromValues(cfg.Seed.Items))
			return nil
		},
	}
}

// newReplayCommand applies an intent script to the seed list without a terminal UI.
func newReplayCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var showActivity bool
	cmd := &cobra.Command{
		Use:   "replay [intent...]",
		Short: "Apply intents to the seed list and print the result",
		Long: `Apply intents to the seed list and print the resulting list and pane.

Intents: create, edit:<index>, text:<value>, submit, cancel, delete:<index>.`,
		Example: `tudu replay edit:1 "text:buy milk" submit
tudu replay create text:eggs submit --activity`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intents, err := domain.ParseIntents(args)
			if err != nil {
				return fmt.Errorf("parse intents: %w", err)
			}
			env, err := opts.startRuntime(stderr)
			if err != nil {
				return err
			}
			defer env.close(stderr)
			return runReplay(cmd.Context(), env, intents, showActivity, stdout)
		},
	}
	cmd.Flags().BoolVar(&showActivity, "activity", false, "print the activity journal after the result")
	return cmd
}

// newConfigCommand groups config file helpers.
func newConfigCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			configPath := opts.resolveConfigPath(paths)
			if err := config.WriteDefault(configPath, config.Default()); err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
			_, _ = fmt.Fprintf(stdout, "wrote %s\n", configPath)
			return nil
		},
	})
	return cmd
}

// resolvePaths resolves platform paths for the selected app name and mode.
func (o *rootOptions) resolvePaths() (platform.Paths, error) {
	paths, err := platform.Resolve(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return platform.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// resolveConfigPath applies flag, then env, then platform default.
func (o *rootOptions) resolveConfigPath(paths platform.Paths) string {
	if strings.TrimSpace(o.configPath) != "" {
		return o.configPath
	}
	if envPath := strings.TrimSpace(os.Getenv("TUDU_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// loadConfig resolves paths and loads config over defaults.
func (o *rootOptions) loadConfig() (platform.Paths, string, config.Config, error) {
	paths, err := o.resolvePaths()
	if err != nil {
		return platform.Paths{}, "", config.Config{}, err
	}
	configPath := o.resolveConfigPath(paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return platform.Paths{}, "", config.Config{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return paths, configPath, cfg, nil
}

// startRuntime loads config and builds the runtime logger.
func (o *rootOptions) startRuntime(stderr io.Writer) (*runtimeEnv, error) {
	paths, configPath, cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(stderr, o.appName, o.devMode, cfg.Logging, paths, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "log_dir", paths.LogDir)
	logger.Info("configuration loaded", "config_path", configPath, "seed_items", len(cfg.Seed.Items), "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// close releases runtime log sinks.
func (e *runtimeEnv) close(stderr io.Writer) {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// openSession opens the in-memory activity journal and a session over the seed list.
func (e *runtimeEnv) openSession() (*app.Session, func(), error) {
	journal, err := sqlite.OpenInMemory()
	if err != nil {
		e.logger.Error("activity journal open failed", "err", err)
		return nil, nil, fmt.Errorf("open activity journal: %w", err)
	}
	closeJournal := func() {
		if closeErr := journal.Close(); closeErr != nil {
			e.logger.Warn("activity journal close failed", "journal", journal.Name(), "err", closeErr)
		}
	}
	e.logger.Debug("activity journal ready", "journal", journal.Name())

	session, err := app.NewSession(
		domain.NewStateFromValues(e.cfg.Seed.Items),
		journal,
		uuid.NewString,
		time.Now,
		app.SessionConfig{HistoryLimit: e.cfg.History.Limit, Logger: e.logger},
	)
	if err != nil {
		closeJournal()
		return nil, nil, fmt.Errorf("start session: %w", err)
	}
	return session, closeJournal, nil
}

// runTUI runs the interactive editor.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	env, err := opts.startRuntime(stderr)
	if err != nil {
		return err
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the editor is active.
	env.logger.SetConsoleEnabled(false)
	defer env.close(stderr)

	session, closeJournal, err := env.openSession()
	if err != nil {
		return err
	}
	defer closeJournal()

	m := tui.NewModel(
		session,
		tui.WithContext(ctx),
		tui.WithRuntimeConfig(toTUIRuntimeConfig(env.cfg)),
	)
	env.logger.Info("starting tui program loop", "items", session.State().Len())
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui", "items", session.State().Len())
	return nil
}

// runReplay applies intents headlessly and prints the result.
func runReplay(ctx context.Context, env *runtimeEnv, intents []domain.Intent, showActivity bool, stdout io.Writer) error {
	session, closeJournal, err := env.openSession()
	if err != nil {
		return err
	}
	defer closeJournal()

	env.logger.Info("command flow start", "command", "replay", "intents", len(intents))
	for _, in := range intents {
		if _, err := session.Dispatch(ctx, in); err != nil {
			env.logger.Error("command flow failed", "command", "replay", "err", err)
			return fmt.Errorf("replay %s: %w", in, err)
		}
	}

	state := session.State()
	writeItems(stdout, state)
	_, _ = fmt.Fprintf(stdout, "pane: %s\n", domain.PaneName(state.Pane()))
	if editor, ok := state.Editor(); ok {
		_, _ = fmt.Fprintf(stdout, "draft: %q\n", editor.Draft().Value)
	}
	if showActivity {
		events, err := session.Activity(ctx, len(intents))
		if err != nil {
			return fmt.Errorf("read activity: %w", err)
		}
		_, _ = fmt.Fprintln(stdout, "activity:")
		for idx := len(events) - 1; idx >= 0; idx-- {
			event := events[idx]
			_, _ = fmt.Fprintf(stdout, "  %d %s %s\n", event.Seq, event.Operation, event.Summary())
		}
	}
	env.logger.Info("command flow complete", "command", "replay", "items", state.Len())
	return nil
}

// writeItems prints a numbered list.
func writeItems(w io.Writer, state domain.State) {
	_, _ = fmt.Fprintln(w, "items:")
	for _, row := range state.Rows() {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", row.Index+1, row.Value)
	}
}

// parseBoolEnv parses one boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// toTUIRuntimeConfig maps config values into TUI runtime settings.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		Title:           cfg.UI.Title,
		Header:          cfg.UI.Header,
		WelcomeMarkdown: cfg.UI.WelcomeMarkdown,
		ShowActivity:    cfg.UI.ShowActivity,
		ActivityLimit:   cfg.UI.ActivityLimit,
		ConfirmDelete:   cfg.Confirm.Delete,
		Keys: tui.KeyConfig{
			NewItem:     cfg.Keys.NewItem,
			DeleteItem:  cfg.Keys.DeleteItem,
			ActivityLog: cfg.Keys.ActivityLog,
			Undo:        cfg.Keys.Undo,
			Redo:        cfg.Keys.Redo,
			Yank:        cfg.Keys.Yank,
		},
	}
}

// runtimeLogger fans runtime events out to the console and the optional dev file.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, paths platform.Paths, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(paths, cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	err := l.closeFile()
	l.closeFile = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// each calls fn for every sink that should receive output.
func (l *runtimeLogger) each(fn func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if l.shouldLogToSink(sink) {
			fn(sink)
		}
	}
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}

// devLogFilePath resolves the dev log file for the current run day. Relative dirs
// anchor at the workspace root; outside a workspace the platform log dir is used.
func devLogFilePath(paths platform.Paths, configDir, appName string, now time.Time) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working dir: %w", err)
	}
	baseDir := paths.DevLogDir(configDir, cwd)
	if strings.TrimSpace(baseDir) == "" {
		return "", errors.New("no dev log dir: config dir is blank and platform log dir is unset")
	}
	fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return "tudu"
	}
	return stem
}
