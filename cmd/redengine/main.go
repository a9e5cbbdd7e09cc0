// redengine is a terminal editor shell for scripts that render frames.
//
// Usage:
//
//	redengine edit [dir]              - Open the editor shell on a project
//	redengine run <script>            - Run a script headless
//	redengine tree [dir]              - Print the project tree
//	redengine new <template> [dir]    - Scaffold a project from a template
//	redengine templates               - List script templates
//	redengine runs                    - Show run history
//	redengine serve [dir]             - Share the editor shell over SSH
//
// Global flags:
//
//	--config <path>     - App config YAML (default: search order)
//	--db <path>         - Run history database (default: from config)
//	--log-level <level> - debug, info, warn or error (default: from config)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/config"
	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	// Ctrl+C and SIGTERM cancel the command context so a running script
	// is asked to quit and its session is recorded.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "redengine",
	Short: "redengine - edit and run frame scripts in your terminal",
	Long: `redengine is a terminal editor shell with a project explorer, a script
editor, a live viewport and a log pane. Scripts expose a "game" object with a
test_run generator; every yield publishes the frame held in _frame_buffer.

Available commands:
  edit       - Open the editor shell on a project
  run        - Run a script headless
  tree       - Print the project tree
  new        - Scaffold a project from a template
  templates  - List script templates
  runs       - Show run history
  serve      - Share the editor shell over SSH

Examples:
  redengine new bounce ./demo
  redengine edit ./demo
  redengine run ./demo/bounce.js --max-frames 120 --snapshot out.png
  redengine serve --ssh :2222 ./demo`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to app config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run history database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	// Add subcommands
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// fatalf reports an error the way every command does and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads the app config and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger writing to w.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "redengine",
		Level:           lvl,
	})
	return logger, nil
}

// engineOptions derives session options from the config and an optional
// project manifest, whose frame size takes precedence.
func engineOptions(cfg config.Config, m *project.Manifest) engine.Options {
	opts := engine.Options{
		FrameSize:     cfg.Frame.Size(),
		FrameAttr:     cfg.Frame.Attribute,
		FrameInterval: cfg.Session.FrameInterval,
	}
	if m != nil && m.Frame != nil {
		opts.FrameSize = *m.Frame
	}
	return opts
}

// recordHistory saves every finished session of app to store.
func recordHistory(app *engine.App, store *storage.Store, logger *log.Logger) {
	app.Controller.OnFinish(func(o engine.Outcome) {
		if err := store.SaveSession(storage.RecordFromOutcome(o)); err != nil {
			logger.Warn("cannot record session", "session", o.SessionID, "err", err)
		}
	})
}

// openStore opens the run history. Commands keep working without it.
func openStore(path string, logger *log.Logger) *storage.Store {
	store, err := storage.Open(path)
	if err != nil {
		logger.Warn("could not open run history database", "path", path, "err", err)
		return nil
	}
	return store
}

// drainTimeout bounds how long a command waits for a stopping script.
const drainTimeout = 2 * time.Second

// drain stops a running script and waits for its outcome to be recorded.
func drain(app *engine.App, logger *log.Logger) {
	if !app.Controller.State().Running {
		return
	}
	app.Controller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if _, err := app.Controller.Wait(ctx); err != nil && !errors.Is(err, engine.ErrNotStarted) {
		logger.Warn("script did not stop in time", "err", err)
	}
}
