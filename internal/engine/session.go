package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/redengine/internal/core"
)

// Reason tells why a session ended.
type Reason string

const (
	ReasonExhausted Reason = "exhausted" // step sequence finished
	ReasonQuit      Reason = "quit"      // a stop instruction ended the loop
	ReasonCanceled  Reason = "canceled"  // the session context was canceled
	ReasonError     Reason = "error"     // script, contract, step or frame error
)

// Options configures execution sessions.
type Options struct {
	// FrameSize is used when the entry object does not declare its own.
	FrameSize core.Size

	// FrameAttr names the entry attribute holding the frame bytes.
	FrameAttr string

	// FrameInterval is the minimum time between steps. Zero runs unthrottled.
	FrameInterval time.Duration
}

// DefaultOptions returns options matching the 1280x720 script contract.
func DefaultOptions() Options {
	return Options{
		FrameSize: core.DefaultFrameSize,
		FrameAttr: DefaultFrameAttr,
	}
}

func (o Options) withDefaults() Options {
	if o.FrameAttr == "" {
		o.FrameAttr = DefaultFrameAttr
	}
	if !o.FrameSize.Valid() {
		o.FrameSize = core.DefaultFrameSize
	}
	return o
}

// Outcome describes a finished session.
type Outcome struct {
	SessionID string
	Script    string
	Reason    Reason
	Frames    int
	Size      core.Size
	Err       error
	StartedAt time.Time
	EndedAt   time.Time
}

// Session runs one script to completion or until stopped, publishing a frame
// per step and draining one instruction before each step.
type Session struct {
	ID     string
	script string
	source string

	interp *Interpreter
	slot   *Slot
	queue  *Queue
	opts   Options
	logger *log.Logger

	frames atomic.Int64

	// ready is called on the session goroutine once the frame size is known.
	ready func(core.Size)
}

// NewSession prepares a session. Nothing runs until Run is called.
func NewSession(script, source string, interp *Interpreter, slot *Slot, queue *Queue, opts Options, logger *log.Logger) *Session {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Session{
		ID:     id,
		script: script,
		source: source,
		interp: interp,
		slot:   slot,
		queue:  queue,
		opts:   opts,
		logger: logger.With("session", id[:8]),
	}
}

// Frames returns how many frames the session has published.
func (s *Session) Frames() int {
	return int(s.frames.Load())
}

// Run executes the session on the calling goroutine and blocks until it ends.
// Cancellation of ctx is honored at loop boundaries only.
func (s *Session) Run(ctx context.Context) (out Outcome) {
	out = Outcome{SessionID: s.ID, Script: s.script, StartedAt: time.Now()}

	rt := s.interp.Acquire(s.logger)
	defer rt.Close()

	defer func() {
		if r := recover(); r != nil {
			out.Reason = ReasonError
			out.Err = fmt.Errorf("engine: session panic: %v", r)
		}
		if n := s.queue.Clear(); n > 0 {
			s.logger.Debug("dropped pending instructions", "count", n)
		}
		out.Frames = s.Frames()
		out.EndedAt = time.Now()
		s.report(out)
	}()

	s.logger.Info("session starting", "script", s.script)

	if err := rt.Exec(s.script, s.source); err != nil {
		return s.fail(out, err)
	}
	entry, err := rt.ResolveEntry(s.opts.FrameAttr, s.opts.FrameSize)
	if err != nil {
		return s.fail(out, err)
	}
	out.Size = entry.Size()
	if s.ready != nil {
		s.ready(out.Size)
	}

	steps, err := entry.Steps()
	if err != nil {
		return s.fail(out, err)
	}

	var pace <-chan time.Time
	if s.opts.FrameInterval > 0 {
		ticker := time.NewTicker(s.opts.FrameInterval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for {
		if in, ok := s.queue.DrainOne(); ok {
			if err := in(rt); err != nil {
				if errors.Is(err, ErrStopSession) {
					out.Reason = ReasonQuit
					return out
				}
				s.logger.Error("instruction failed", "error", err)
			}
		}

		if ctx.Err() != nil {
			out.Reason = ReasonCanceled
			return out
		}

		more, err := steps.Next()
		if err != nil {
			return s.fail(out, err)
		}
		if !more {
			out.Reason = ReasonExhausted
			return out
		}

		pix, err := entry.FrameBytes()
		if err != nil {
			return s.fail(out, err)
		}
		frame, err := core.NewFrame(out.Size, pix)
		if err != nil {
			return s.fail(out, err)
		}
		s.slot.Publish(frame)
		s.frames.Add(1)

		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
			}
		}
	}
}

func (s *Session) fail(out Outcome, err error) Outcome {
	out.Reason = ReasonError
	out.Err = err
	return out
}

func (s *Session) report(out Outcome) {
	if out.Err != nil {
		s.logger.Error("session failed", "frames", out.Frames, "error", out.Err)
		return
	}
	s.logger.Info("session ended", "reason", out.Reason, "frames", out.Frames,
		"elapsed", out.EndedAt.Sub(out.StartedAt).Round(time.Millisecond))
}
