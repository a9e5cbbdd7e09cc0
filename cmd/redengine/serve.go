package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/platform/tui"
	"github.com/vovakirdan/redengine/internal/project"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Share the editor shell over SSH",
	Long: `Start an SSH server that opens the editor shell on a project.

Every connection gets its own shell, but all of them drive one engine:
a script started by one user plays in every connected viewport, and any
user can stop it. Quitting a shell leaves the script running. Server logs
go to stderr and to every shell's log pane.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.redengine/host_key

Examples:
  redengine serve                           # Listen on :23234, current directory
  redengine serve --ssh :2222 ./demo        # Listen on port 2222
  redengine serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.MaximumNArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, args []string) {
	dir := projectDir(args)

	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	manifest, err := project.LoadManifest(dir)
	if err != nil {
		fatalf("%v", err)
	}

	logs := tui.NewLogSink(tui.DefaultLogLines)
	logger, err := newLogger(io.MultiWriter(os.Stderr, logs), cfg.LogLevel)
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

	serverCfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}
	server, err := tui.NewSSHServer(serverCfg, app, logs, logger, tui.Options{
		Root:   dir,
		Config: cfg,
		Theme:  tui.DefaultTheme(),
	})
	if err != nil {
		fatalf("creating server: %v", err)
	}

	fmt.Printf("Starting redengine SSH server on %s for %s\n", serverCfg.Address, manifest.Dir)
	if _, port, splitErr := net.SplitHostPort(serverCfg.Address); splitErr == nil {
		fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fatalf("server: %v", err)
	}
}
