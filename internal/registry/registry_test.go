package registry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/redengine/internal/core"
	"github.com/vovakirdan/redengine/internal/engine"
)

func TestListBuiltins(t *testing.T) {
	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
		if info.Title == "" || info.Description == "" {
			t.Errorf("template %q has empty metadata: %+v", info.ID, info)
		}
	}
	if diff := cmp.Diff([]string{"bounce", "gradient", "static"}, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	tpl, err := Get("bounce")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if tpl.FileName() != "bounce.js" {
		t.Errorf("FileName() = %q, expected bounce.js", tpl.FileName())
	}

	// Get hands out a copy.
	tpl.Source[0] = '#'
	again, _ := Get("bounce")
	if again.Source[0] == '#' {
		t.Error("mutating a returned template changed the registry")
	}

	if _, err := Get("missing"); err == nil {
		t.Error("Get() of an unknown template should fail")
	}
	if Exists("missing") || !Exists("static") {
		t.Error("Exists() disagrees with the registered set")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering a duplicate id should panic")
		}
	}()
	Register(Template{ID: "bounce"})
}

// Every template must satisfy the entry contract and publish frames.
func TestTemplatesRun(t *testing.T) {
	for _, info := range List() {
		t.Run(info.ID, func(t *testing.T) {
			tpl, err := Get(info.ID)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}

			app := engine.NewApp(engine.DefaultOptions(), log.New(io.Discard))
			defer app.Close()

			if err := app.Controller.Start(tpl.FileName(), string(tpl.Source)); err != nil {
				t.Fatalf("Start() failed: %v", err)
			}

			deadline := time.Now().Add(10 * time.Second)
			for app.Slot.Seq() < 2 && app.Controller.State().Running {
				if time.Now().After(deadline) {
					t.Fatal("timed out waiting for frames")
				}
				time.Sleep(5 * time.Millisecond)
			}
			app.Controller.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			out, err := app.Controller.Wait(ctx)
			if err != nil {
				t.Fatalf("Wait() failed: %v", err)
			}
			if out.Err != nil {
				t.Fatalf("template failed: %v", out.Err)
			}
			if out.Frames < 2 {
				t.Errorf("Frames = %d, expected at least 2", out.Frames)
			}

			f, ok := app.Slot.Read()
			if !ok {
				t.Fatal("no frame published")
			}
			if f.Size() == (core.Size{}) || f.At(0, 0).A != 255 {
				t.Errorf("frame %v pixel (0,0) = %+v, expected opaque", f.Size(), f.At(0, 0))
			}
		})
	}
}
