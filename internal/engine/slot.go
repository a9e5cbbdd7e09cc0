package engine

import (
	"sync"

	"github.com/vovakirdan/redengine/internal/core"
)

// Slot holds the most recently published frame. One goroutine publishes,
// any number read. Frames are immutable so a reader either sees the previous
// frame or the new one in full.
type Slot struct {
	mu    sync.RWMutex
	frame *core.Frame
	seq   uint64
}

// NewSlot creates an empty frame slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish replaces the held frame.
func (s *Slot) Publish(f *core.Frame) {
	s.mustInit()
	s.mu.Lock()
	s.frame = f
	s.seq++
	s.mu.Unlock()
}

// Read returns the held frame without removing it.
func (s *Slot) Read() (*core.Frame, bool) {
	s.mustInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.frame != nil
}

// ReadSeq returns the held frame together with its publish sequence number.
func (s *Slot) ReadSeq() (*core.Frame, uint64) {
	s.mustInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.seq
}

// Seq returns how many frames have been published so far.
func (s *Slot) Seq() uint64 {
	s.mustInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Clear empties the slot. It does not count as a publish.
func (s *Slot) Clear() {
	s.mustInit()
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
}

// mustInit fails fast on a slot that was never constructed.
func (s *Slot) mustInit() {
	if s == nil {
		panic("engine: frame slot used before initialization")
	}
}
