package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/redengine/internal/storage"
)

func sampleRecords() []storage.SessionRecord {
	start := time.Now().Add(-time.Hour)
	rec := func(id, script string, frames int) storage.SessionRecord {
		return storage.SessionRecord{
			ID:        id,
			Script:    script,
			StartedAt: start,
			EndedAt:   start.Add(2 * time.Second),
			Frames:    frames,
			Reason:    "exhausted",
		}
	}
	return []storage.SessionRecord{rec("1", "a.js", 10), rec("2", "b.js", 20), rec("3", "a.js", 30)}
}

func TestHistoryRow(t *testing.T) {
	r := sampleRecords()[2]
	r.EndedAt = r.StartedAt.Add(1234 * time.Millisecond)
	r.Frames = 12345
	r.Error = "boom"

	row := HistoryRow(r)
	want := []string{"1 hour ago", "a.js", "exhausted", "12,345", "1.23s", "boom"}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("HistoryRow()[%d] = %q, expected %q", i, row[i], w)
		}
	}
}

func TestHistoryModelFilters(t *testing.T) {
	m := NewHistoryModel(sampleRecords(), 100, 30)
	if m.Script() != allScripts || len(m.Sessions()) != 3 {
		t.Fatalf("initial filter = %q with %d sessions", m.Script(), len(m.Sessions()))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	if m.Script() != "a.js" || len(m.Sessions()) != 2 {
		t.Errorf("after tab filter = %q with %d sessions", m.Script(), len(m.Sessions()))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	if m.Script() != "b.js" || len(m.Sessions()) != 1 {
		t.Errorf("after wrap-around filter = %q with %d sessions", m.Script(), len(m.Sessions()))
	}

	if !strings.Contains(ansi.Strip(m.View()), "RUN HISTORY - b.js") {
		t.Error("View() should show the selected script")
	}
}
