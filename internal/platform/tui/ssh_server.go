package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/viewers"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.redengine/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves the editor shell over SSH. Every connection gets its own
// shell, but all of them drive the same engine, so viewers share one
// running script and one viewport.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	app    *engine.App
	logs   *LogSink
	logger *log.Logger
	opts   Options

	viewers *viewers.Registry
	detach  func()
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, app *engine.App, logs *LogSink, logger *log.Logger, opts Options) (*SSHServer, error) {
	opts.StopOnQuit = false
	srv := &SSHServer{
		config: cfg,
		app:    app,
		logs:   logs,
		logger: logger,
		opts:   opts,

		viewers: viewers.NewRegistry(),
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".redengine", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	sshOpts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(sshOpts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	srv.detach = srv.viewers.Attach(app)
	return srv, nil
}

// teaHandler creates an editor shell for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sshSession.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	id := viewers.ID(sshSession.User() + "@" + sshSession.RemoteAddr().String())
	viewer := viewers.NewChannel(id, viewers.DefaultBuffer)

	opts := s.opts
	opts.Events = viewer.Events()
	opts.Detached = viewer.Done()
	model, err := NewModel(s.app, s.logs, s.logger.With("user", sshSession.User()), opts)
	if err != nil {
		s.logger.Error("cannot create editor", "user", sshSession.User(), "err", err)
		return nil, nil
	}

	s.viewers.Register(viewer)
	go func() {
		<-sshSession.Context().Done()
		s.viewers.Unregister(id)
		viewer.Close()
		model.Close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("ssh session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("ssh session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown stops the running script and gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer s.detach()

	if s.app.Controller.State().Running {
		s.app.Controller.Stop()
		//nolint:errcheck // Shutdown proceeds even if the script does not stop in time
		s.app.Controller.Wait(ctx)
	}

	return s.server.Shutdown(ctx)
}

// Viewers returns the registry of connected shells.
func (s *SSHServer) Viewers() *viewers.Registry {
	return s.viewers
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
