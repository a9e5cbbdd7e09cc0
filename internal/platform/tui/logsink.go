package tui

import (
	"bytes"
	"strings"
	"sync"
)

// DefaultLogLines is how many lines the log pane keeps.
const DefaultLogLines = 500

// LogSink is an io.Writer that keeps the last lines written to it. The
// logger writes from session goroutines while the UI reads on ticks.
type LogSink struct {
	mu      sync.Mutex
	lines   []string
	partial []byte
	max     int
	version uint64
}

// NewLogSink creates a sink keeping up to max lines.
func NewLogSink(max int) *LogSink {
	if max <= 0 {
		max = DefaultLogLines
	}
	return &LogSink{max: max}
}

// Write implements io.Writer.
func (s *LogSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := append(s.partial, p...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		s.lines = append(s.lines, string(data[:i]))
		data = data[i+1:]
	}
	s.partial = append([]byte(nil), data...)

	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append([]string(nil), s.lines[over:]...)
	}
	s.version++
	return len(p), nil
}

// Lines returns a copy of the retained lines.
func (s *LogSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Version changes whenever something was written.
func (s *LogSink) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// String joins the retained lines.
func (s *LogSink) String() string {
	return strings.Join(s.Lines(), "\n")
}
