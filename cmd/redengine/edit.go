package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/platform/tui"
	"github.com/vovakirdan/redengine/internal/project"
)

var flagMonochrome bool

var editCmd = &cobra.Command{
	Use:   "edit [dir]",
	Short: "Open the editor shell on a project",
	Long: `Open the editor shell on a project directory (default: current directory).

The project's redengine.toml names the entry script and may override the
frame size. Without a manifest, main.js is opened if it exists.

Controls:
  Ctrl+R     - Run the open script
  Ctrl+X     - Stop the running script
  Ctrl+S     - Save the open file
  Ctrl+P     - Save a PNG snapshot of the viewport
  Tab        - Cycle focus between panes
  Enter      - Open the file under the explorer cursor
  Ctrl+G     - Toggle full help
  Ctrl+C     - Quit

Examples:
  redengine edit
  redengine edit ./demo
  redengine edit ./demo --monochrome`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&flagMonochrome, "monochrome", false, "Use the monochrome theme")
}

func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func runEdit(_ *cobra.Command, args []string) {
	dir := projectDir(args)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatalf("edit needs an interactive terminal; use 'redengine run' for headless runs")
	}

	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	manifest, err := project.LoadManifest(dir)
	if err != nil {
		fatalf("%v", err)
	}

	// The shell owns the terminal, so log records go to the log pane.
	logs := tui.NewLogSink(tui.DefaultLogLines)
	logger, err := newLogger(logs, cfg.LogLevel)
	if err != nil {
		fatalf("%v", err)
	}

	app := engine.NewApp(engineOptions(cfg, manifest), logger)
	defer app.Close()

	store := openStore(cfg.DBPath, logger)
	if store != nil {
		defer store.Close()
		recordHistory(app, store, logger)
	}

	theme := tui.DefaultTheme()
	if flagMonochrome {
		theme = tui.MonochromeTheme()
	}

	runErr := tui.Run(app, logs, logger, tui.Options{
		Root:       dir,
		Config:     cfg,
		Theme:      theme,
		StopOnQuit: true,
	})
	drain(app, logger)
	if runErr != nil {
		fatalf("running editor: %v", runErr)
	}
}
