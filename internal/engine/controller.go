package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/redengine/internal/core"
)

// Controller is the UI-facing facade over execution sessions. Start and Stop
// never block on the session goroutine.
type Controller struct {
	interp *Interpreter
	slot   *Slot
	queue  *Queue
	opts   Options
	logger *log.Logger

	// base is canceled by Close; every session context derives from it.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    core.GameState
	session  *Session
	done     chan struct{}
	last     Outcome
	hookID   int
	forget   []hook[func()]
	finished []hook[func(Outcome)]
}

type hook[F any] struct {
	id int
	fn F
}

func removeHook[F any](hooks []hook[F], id int) []hook[F] {
	out := hooks[:0:0]
	for _, h := range hooks {
		if h.id != id {
			out = append(out, h)
		}
	}
	return out
}

// NewController creates a controller over the shared slot and queue.
func NewController(interp *Interpreter, slot *Slot, queue *Queue, opts Options, logger *log.Logger) *Controller {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		interp: interp,
		slot:   slot,
		queue:  queue,
		opts:   opts,
		logger: logger,
		base:   ctx,
		cancel: cancel,
		state:  core.GameState{Size: opts.FrameSize},
	}
}

// OnForget registers a hook run by Stop to discard cached presentation
// state, such as the viewport texture. The returned func unregisters it.
func (c *Controller) OnForget(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hookID++
	id := c.hookID
	c.forget = append(c.forget, hook[func()]{id, fn})
	return func() {
		c.mu.Lock()
		c.forget = removeHook(c.forget, id)
		c.mu.Unlock()
	}
}

// OnFinish registers a hook run on the session goroutine after a session
// ends. The returned func unregisters it.
func (c *Controller) OnFinish(fn func(Outcome)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hookID++
	id := c.hookID
	c.finished = append(c.finished, hook[func(Outcome)]{id, fn})
	return func() {
		c.mu.Lock()
		c.finished = removeHook(c.finished, id)
		c.mu.Unlock()
	}
}

// Start launches a session for the given script and returns immediately.
// Stale frames and instructions from earlier sessions are discarded first.
func (c *Controller) Start(script, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Running {
		return ErrAlreadyRunning
	}
	if err := c.base.Err(); err != nil {
		return err
	}

	if n := c.queue.Clear(); n > 0 {
		c.logger.Debug("dropped stale instructions", "count", n)
	}
	c.slot.Clear()

	s := NewSession(script, source, c.interp, c.slot, c.queue, c.opts, c.logger)
	s.ready = c.setSize
	done := make(chan struct{})

	c.session = s
	c.done = done
	c.state = core.GameState{
		Running:   true,
		Size:      c.opts.FrameSize,
		SessionID: s.ID,
	}

	go c.run(s, done)
	return nil
}

func (c *Controller) run(s *Session, done chan struct{}) {
	out := s.Run(c.base)

	c.mu.Lock()
	c.last = out
	if c.session == s {
		c.state.Running = false
		c.state.Stopping = false
		c.state.Frames = out.Frames
	}
	hooks := append([]hook[func(Outcome)]{}, c.finished...)
	c.mu.Unlock()

	for _, h := range hooks {
		h.fn(out)
	}
	close(done)
}

func (c *Controller) setSize(size core.Size) {
	c.mu.Lock()
	c.state.Size = size
	c.mu.Unlock()
}

// Stop requests an orderly shutdown. The quit call runs inside the
// interpreter on the session's next loop iteration. Stop is safe to call at
// any time, including before the first Start.
func (c *Controller) Stop() {
	c.queue.Enqueue(quitInstruction)

	c.mu.Lock()
	if c.state.Running {
		c.state.Stopping = true
	}
	hooks := append([]hook[func()]{}, c.forget...)
	c.mu.Unlock()

	for _, h := range hooks {
		h.fn()
	}
}

// quitInstruction calls the entry's quit method and ends the loop whether or
// not quit succeeded.
func quitInstruction(rt *Runtime) error {
	entry := rt.Entry()
	if entry == nil {
		return ErrStopSession
	}
	if err := entry.Quit(); err != nil {
		return errors.Join(ErrStopSession, err)
	}
	return ErrStopSession
}

// Enqueue forwards an instruction to the running session.
func (c *Controller) Enqueue(in Instruction) {
	c.queue.Enqueue(in)
}

// State returns a snapshot of the current game state.
func (c *Controller) State() core.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	if st.Running && c.session != nil {
		st.Frames = c.session.Frames()
	}
	return st
}

// Done returns a channel closed when the current session has ended. It is
// nil before the first Start.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Last returns the outcome of the most recently finished session.
func (c *Controller) Last() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Wait blocks until the current session ends or ctx is done.
func (c *Controller) Wait(ctx context.Context) (Outcome, error) {
	done := c.Done()
	if done == nil {
		return Outcome{}, ErrNotStarted
	}
	select {
	case <-done:
		return c.Last(), nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Close cancels the running session at its next loop boundary and refuses
// further starts. It does not wait.
func (c *Controller) Close() {
	c.cancel()
}
