package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/redengine/internal/platform/tui"
	"github.com/vovakirdan/redengine/internal/storage"
)

var (
	flagRunsLimit       int
	flagRunsScript      string
	flagRunsInteractive bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show run history",
	Long: `Display recent script sessions recorded by 'edit', 'run' and 'serve'.

Examples:
  redengine runs
  redengine runs --limit 50
  redengine runs --script bounce.js
  redengine runs -i`,
	Args: cobra.NoArgs,
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Number of sessions to show")
	runsCmd.Flags().StringVar(&flagRunsScript, "script", "", "Only show sessions of this script")
	runsCmd.Flags().BoolVarP(&flagRunsInteractive, "interactive", "i", false, "Browse the history in a table")
}

func runRuns(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	// Open run history
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fatalf("opening run history database: %v", err)
	}
	defer store.Close()

	if flagRunsInteractive {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunHistory(store, width, height); err != nil {
			store.Close()
			fatalf("running history browser: %v", err)
		}
		return
	}

	var records []storage.SessionRecord
	if flagRunsScript != "" {
		records, err = store.ScriptSessions(flagRunsScript, flagRunsLimit)
	} else {
		records, err = store.RecentSessions(flagRunsLimit)
	}
	if err != nil {
		store.Close()
		fatalf("retrieving sessions: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'redengine run <script>' to record the first one.")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-20s  %-9s  %8s  %9s  %s\n", "Started", "Script", "Reason", "Frames", "Took", "Error")
	fmt.Printf("  %-16s  %-20s  %-9s  %8s  %9s  %s\n", "-------", "------", "------", "------", "----", "-----")

	for _, r := range records {
		row := tui.HistoryRow(r)
		fmt.Printf("  %-16s  %-20s  %-9s  %8s  %9s  %s\n", row[0], row[1], row[2], row[3], row[4], row[5])
	}

	if flagRunsScript != "" {
		stats, err := store.GetScriptStats(flagRunsScript)
		if err == nil && stats != nil {
			fmt.Println()
			fmt.Printf("%s runs, %s failed, %s frames total\n",
				humanize.Comma(int64(stats.Runs)), humanize.Comma(int64(stats.Failures)), humanize.Comma(stats.TotalFrames))
		}
	}
}
