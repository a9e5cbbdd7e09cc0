package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/platform/tui"
	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/viewport"
)

var (
	flagMaxFrames int
	flagTimeout   time.Duration
	flagSnapshot  string
)

// pollInterval is how often a headless run checks its frame budget.
const pollInterval = 10 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script headless",
	Long: `Run a script without the editor shell and report how it ended.

The script runs until its generator is exhausted, the frame budget is used
up, the timeout expires or Ctrl+C is pressed. A frame budget or timeout
stops the script through its quit method. The frame size comes from the
redengine.toml next to the script, if any, then from the app config.

Examples:
  redengine run ./demo/bounce.js --max-frames 300
  redengine run ./demo/main.js --timeout 5s --snapshot last.png`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagMaxFrames, "max-frames", 0, "Stop after this many frames (0 = no limit)")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Stop after this long (0 = no limit)")
	runCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Write the last frame as PNG to this path")
}

func runRun(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := runScript(ctx, args[0], flagMaxFrames, flagTimeout, flagSnapshot); err != nil {
		fatalf("%v", err)
	}
}

// runScript runs the script at path headless, records it in the run history
// and prints how it ended. A failed session is returned as an error once the
// engine and store are closed.
func runScript(ctx context.Context, path string, maxFrames int, timeout time.Duration, snapshot string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	manifest, err := project.LoadManifest(filepath.Dir(path))
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	app := engine.NewApp(engineOptions(cfg, manifest), logger)
	defer app.Close()

	store := openStore(cfg.DBPath, logger)
	if store != nil {
		defer store.Close()
		recordHistory(app, store, logger)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := runHeadless(ctx, app, filepath.Base(path), string(source), maxFrames)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s after %s frames at %s in %s\n",
		out.Script, out.Reason, humanize.Comma(int64(out.Frames)), out.Size,
		out.EndedAt.Sub(out.StartedAt).Round(time.Millisecond))

	if snapshot != "" {
		if err := tui.SaveSnapshot(viewport.NewPresenter(app.Slot), snapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Printf("Snapshot saved to %s\n", snapshot)
	}

	return out.Err
}

// runHeadless runs one session to completion. When ctx is done or
// maxFrames (if positive) have been published, the script is asked to quit
// and the outcome of that orderly stop is returned.
func runHeadless(ctx context.Context, app *engine.App, name, source string, maxFrames int) (engine.Outcome, error) {
	if err := app.Controller.Start(name, source); err != nil {
		return engine.Outcome{}, err
	}
	done := app.Controller.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	stopping := false
	stop := func() {
		if !stopping {
			stopping = true
			app.Controller.Stop()
		}
	}

	for {
		select {
		case <-done:
			return app.Controller.Last(), nil
		case <-ctx.Done():
			stop()
			waitCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			out, err := app.Controller.Wait(waitCtx)
			cancel()
			return out, err
		case <-ticker.C:
			if maxFrames > 0 && app.Controller.State().Frames >= maxFrames {
				stop()
			}
		}
	}
}
