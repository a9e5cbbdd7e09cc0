package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/redengine/internal/config"
	"github.com/vovakirdan/redengine/internal/core"
	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/storage"
)

const endlessScript = `
const game = {
  width: 2,
  height: 1,
  running: true,
  _frame_buffer: new Uint8Array(8),
  test_run: function* () {
    while (this.running) { yield; }
  },
  quit: function () { this.running = false; },
};
`

func TestEngineOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Session.FrameInterval = 5 * time.Millisecond

	got := engineOptions(cfg, nil)
	want := engine.Options{
		FrameSize:     core.Size{W: 1280, H: 720},
		FrameAttr:     "_frame_buffer",
		FrameInterval: 5 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("engineOptions() mismatch (-want +got):\n%s", diff)
	}

	m := &project.Manifest{Frame: &core.Size{W: 320, H: 180}}
	if got := engineOptions(cfg, m).FrameSize; got != *m.Frame {
		t.Errorf("engineOptions() with manifest frame = %v, expected %v", got, *m.Frame)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(io.Discard, "debug"); err != nil {
		t.Errorf("newLogger(debug) failed: %v", err)
	}
	if _, err := newLogger(io.Discard, "loud"); err == nil {
		t.Error("newLogger(loud) should fail")
	}
}

func TestScaffold(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	path, err := scaffold("bounce", dir, false)
	if err != nil {
		t.Fatalf("scaffold() failed: %v", err)
	}
	if filepath.Base(path) != "bounce.js" {
		t.Errorf("scaffold() path = %s, expected bounce.js", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "test_run") {
		t.Errorf("scaffolded script unreadable or empty: %v", err)
	}

	m, err := project.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}
	if m.Entry != "bounce.js" || m.Name != "demo" {
		t.Errorf("manifest = %+v, expected entry bounce.js named demo", m)
	}

	if _, err := scaffold("bounce", dir, false); err == nil {
		t.Error("scaffold() over an existing script should fail without force")
	}
	if _, err := scaffold("bounce", dir, true); err != nil {
		t.Errorf("scaffold() with force failed: %v", err)
	}
	if _, err := scaffold("nope", dir, true); err == nil {
		t.Error("scaffold() with an unknown template should fail")
	}
}

func TestRunHeadless(t *testing.T) {
	tests := []struct {
		name      string
		maxFrames int
		timeout   time.Duration
	}{
		{"frame budget", 5, 0},
		{"timeout", 0, 50 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := engine.NewApp(engine.DefaultOptions(), log.New(io.Discard))
			defer app.Close()

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			out, err := runHeadless(ctx, app, "endless.js", endlessScript, tt.maxFrames)
			if err != nil {
				t.Fatalf("runHeadless() failed: %v", err)
			}
			if out.Reason != engine.ReasonQuit {
				t.Errorf("Reason = %q, expected quit", out.Reason)
			}
			if out.Frames < tt.maxFrames {
				t.Errorf("Frames = %d, expected at least %d", out.Frames, tt.maxFrames)
			}
			if out.Size != (core.Size{W: 2, H: 1}) {
				t.Errorf("Size = %v, expected 2x1", out.Size)
			}
		})
	}
}

func TestRunHeadlessExhausted(t *testing.T) {
	app := engine.NewApp(engine.DefaultOptions(), log.New(io.Discard))
	defer app.Close()

	src := strings.Replace(endlessScript, "while (this.running) { yield; }", "yield; yield; yield;", 1)
	out, err := runHeadless(context.Background(), app, "three.js", src, 0)
	if err != nil {
		t.Fatalf("runHeadless() failed: %v", err)
	}
	if out.Reason != engine.ReasonExhausted || out.Frames != 3 {
		t.Errorf("outcome = %s after %d frames, expected exhausted after 3", out.Reason, out.Frames)
	}
}

func TestRunHeadlessCanceled(t *testing.T) {
	app := engine.NewApp(engine.DefaultOptions(), log.New(io.Discard))
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for app.Slot.Seq() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	out, err := runHeadless(ctx, app, "endless.js", endlessScript, 0)
	if err != nil {
		t.Fatalf("runHeadless() failed: %v", err)
	}
	if out.Reason != engine.ReasonQuit || out.Frames < 1 {
		t.Errorf("outcome = %s after %d frames, expected quit after at least 1", out.Reason, out.Frames)
	}
}

// useHistoryDB points the run history at a fresh database for one test.
func useHistoryDB(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	prev := flagDBPath
	flagDBPath = filepath.Join(home, "history.db")
	t.Cleanup(func() { flagDBPath = prev })
	return flagDBPath
}

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestRunScriptRecordsHistory(t *testing.T) {
	failing := strings.Replace(endlessScript, "while (this.running) { yield; }",
		`yield; throw new Error("boom");`, 1)

	tests := []struct {
		name       string
		src        string
		canceled   bool
		wantErr    bool
		wantReason engine.Reason
	}{
		{"failed session", failing, false, true, engine.ReasonError},
		{"interrupted session", endlessScript, true, false, engine.ReasonQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := useHistoryDB(t)
			path := writeScript(t, "script.js", tt.src)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.canceled {
				cancel()
			}

			err := runScript(ctx, path, 0, 0, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("runScript() error = %v, wantErr %v", err, tt.wantErr)
			}

			store, err := storage.Open(dbPath)
			if err != nil {
				t.Fatalf("storage.Open() failed: %v", err)
			}
			defer store.Close()

			records, err := store.RecentSessions(10)
			if err != nil {
				t.Fatalf("RecentSessions() failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("RecentSessions() = %d records, expected 1", len(records))
			}
			if records[0].Script != "script.js" || records[0].Reason != string(tt.wantReason) {
				t.Errorf("recorded %s %s, expected script.js %s", records[0].Script, records[0].Reason, tt.wantReason)
			}
		})
	}
}
