package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/redengine/internal/core"
	"github.com/vovakirdan/redengine/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id, script string, offset time.Duration, frames int, reason engine.Reason) SessionRecord {
	return SessionRecord{
		ID:        id,
		Script:    script,
		StartedAt: epoch.Add(offset),
		EndedAt:   epoch.Add(offset + time.Second),
		Frames:    frames,
		Width:     1280,
		Height:    720,
		Reason:    string(reason),
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	want := record("a1", "main.js", 0, 42, engine.ReasonError)
	want.Error = "engine: step failed: boom"
	if err := store.SaveSession(want); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	got, err := store.SessionByID("a1")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("SessionByID() returned nil for a saved session")
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("SessionByID() mismatch (-want +got):\n%s", diff)
	}
	if got.Duration() != time.Second {
		t.Errorf("Duration() = %v, expected 1s", got.Duration())
	}

	missing, err := store.SessionByID("nope")
	if err != nil || missing != nil {
		t.Errorf("SessionByID(unknown) = %v, %v; expected nil, nil", missing, err)
	}
}

func TestStoreDuplicateID(t *testing.T) {
	store := openTestStore(t)

	rec := record("dup", "main.js", 0, 1, engine.ReasonExhausted)
	if err := store.SaveSession(rec); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	if err := store.SaveSession(rec); err == nil {
		t.Error("saving the same session twice should fail")
	}
	if err := store.SaveSession(SessionRecord{Script: "x"}); err == nil {
		t.Error("saving a record without id should fail")
	}
}

func TestStoreRecentSessions(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		rec := record(fmt.Sprintf("s%d", i), "main.js", time.Duration(i)*time.Minute, i, engine.ReasonExhausted)
		if err := store.SaveSession(rec); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}

	recent, err := store.RecentSessions(3)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}

	var ids []string
	for _, r := range recent {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"s4", "s3", "s2"}, ids); diff != "" {
		t.Errorf("RecentSessions() order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreScriptSessionsAndClear(t *testing.T) {
	store := openTestStore(t)

	store.SaveSession(record("a", "one.js", 0, 1, engine.ReasonExhausted))
	store.SaveSession(record("b", "one.js", time.Minute, 2, engine.ReasonQuit))
	store.SaveSession(record("c", "two.js", 2*time.Minute, 3, engine.ReasonExhausted))

	one, err := store.ScriptSessions("one.js", 10)
	if err != nil {
		t.Fatalf("ScriptSessions() failed: %v", err)
	}
	if len(one) != 2 {
		t.Errorf("Expected 2 sessions for one.js, got %d", len(one))
	}

	if err := store.ClearSessions("one.js"); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}

	one, _ = store.ScriptSessions("one.js", 10)
	if len(one) != 0 {
		t.Errorf("Expected 0 one.js sessions after clear, got %d", len(one))
	}
	two, _ := store.ScriptSessions("two.js", 10)
	if len(two) != 1 {
		t.Error("two.js sessions should not be affected by clearing one.js")
	}
}

func TestStoreScriptStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetScriptStats("main.js")
	if err != nil {
		t.Fatalf("GetScriptStats() failed: %v", err)
	}
	if empty.Runs != 0 || !empty.LastRun.IsZero() {
		t.Errorf("empty stats = %+v, expected zero runs", empty)
	}

	store.SaveSession(record("a", "main.js", 0, 10, engine.ReasonExhausted))
	store.SaveSession(record("b", "main.js", time.Hour, 5, engine.ReasonError))

	stats, err := store.GetScriptStats("main.js")
	if err != nil {
		t.Fatalf("GetScriptStats() failed: %v", err)
	}
	want := &ScriptStats{
		Script:      "main.js",
		Runs:        2,
		Failures:    1,
		TotalFrames: 15,
		LastRun:     epoch.Add(time.Hour),
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("GetScriptStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFromOutcome(t *testing.T) {
	o := engine.Outcome{
		SessionID: "id",
		Script:    "main.js",
		Reason:    engine.ReasonError,
		Frames:    3,
		Size:      core.Size{W: 4, H: 2},
		Err:       errors.New("boom"),
		StartedAt: epoch,
		EndedAt:   epoch.Add(time.Second),
	}

	want := SessionRecord{
		ID:        "id",
		Script:    "main.js",
		StartedAt: epoch,
		EndedAt:   epoch.Add(time.Second),
		Frames:    3,
		Width:     4,
		Height:    2,
		Reason:    "error",
		Error:     "boom",
	}
	if diff := cmp.Diff(want, RecordFromOutcome(o)); diff != "" {
		t.Errorf("RecordFromOutcome() mismatch (-want +got):\n%s", diff)
	}
}
