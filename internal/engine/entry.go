package engine

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/vovakirdan/redengine/internal/core"
)

// Names the script contract is resolved by.
const (
	EntryName        = "game"
	StepMethod       = "test_run"
	QuitMethod       = "quit"
	DefaultFrameAttr = "_frame_buffer"
)

// Entry is the script-defined object implementing the run/frame/quit
// contract. It is only valid on the goroutine that resolved it.
type Entry struct {
	rt        *Runtime
	obj       *goja.Object
	testRun   goja.Callable
	quit      goja.Callable
	frameAttr string
	size      core.Size
}

// ResolveEntry looks up the entry object in the global scope and checks its
// contract. fallback is used when the object does not declare width and
// height.
func (rt *Runtime) ResolveEntry(frameAttr string, fallback core.Size) (*Entry, error) {
	if frameAttr == "" {
		frameAttr = DefaultFrameAttr
	}

	var e *Entry
	var resolveErr error
	if err := rt.try(func() { e, resolveErr = rt.resolve(frameAttr, fallback) }); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrContract, describe(err))
	}
	if resolveErr != nil {
		return nil, resolveErr
	}

	rt.entry = e
	return e, nil
}

func (rt *Runtime) resolve(frameAttr string, fallback core.Size) (*Entry, error) {
	v := rt.vm.Get(EntryName)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("%w: no top-level %q", ErrMissingEntry, EntryName)
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, not an object", ErrMissingEntry, EntryName, v.ExportType())
	}

	testRun, ok := goja.AssertFunction(obj.Get(StepMethod))
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a function", ErrContract, EntryName, StepMethod)
	}
	quit, ok := goja.AssertFunction(obj.Get(QuitMethod))
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a function", ErrContract, EntryName, QuitMethod)
	}
	if fb := obj.Get(frameAttr); fb == nil || goja.IsUndefined(fb) {
		return nil, fmt.Errorf("%w: %s.%s is not defined", ErrContract, EntryName, frameAttr)
	}

	return &Entry{
		rt:        rt,
		obj:       obj,
		testRun:   testRun,
		quit:      quit,
		frameAttr: frameAttr,
		size:      negotiateSize(obj, fallback),
	}, nil
}

// negotiateSize reads optional numeric width and height from the entry.
func negotiateSize(obj *goja.Object, fallback core.Size) core.Size {
	dim := func(name string) int {
		v := obj.Get(name)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			return 0
		}
		return int(v.ToInteger())
	}
	size := core.Size{W: dim("width"), H: dim("height")}
	if !size.Valid() {
		return fallback
	}
	return size
}

// Size returns the frame size negotiated at resolution.
func (e *Entry) Size() core.Size {
	return e.size
}

// Steps starts the step sequence by calling test_run.
func (e *Entry) Steps() (*Steps, error) {
	res, err := e.testRun(e.obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %s", ErrStep, EntryName, StepMethod, describe(err))
	}
	iter, ok := res.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s did not return an iterator", ErrContract, EntryName, StepMethod)
	}
	next, ok := goja.AssertFunction(iter.Get("next"))
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s result has no next()", ErrContract, EntryName, StepMethod)
	}
	return &Steps{rt: e.rt, iter: iter, next: next}, nil
}

// FrameBytes reads the frame attribute as raw bytes. The returned slice may
// alias script memory and must be copied before it leaves the session
// goroutine.
func (e *Entry) FrameBytes() ([]byte, error) {
	var buf []byte
	err := e.rt.try(func() {
		v := e.obj.Get(e.frameAttr)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			return
		}
		if exportErr := e.rt.vm.ExportTo(v, &buf); exportErr != nil {
			panic(e.rt.vm.NewGoError(exportErr))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %s", ErrContract, EntryName, e.frameAttr, describe(err))
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: %s.%s is not set", ErrContract, EntryName, e.frameAttr)
	}
	return buf, nil
}

// Quit calls the entry's quit method.
func (e *Entry) Quit() error {
	if _, err := e.quit(e.obj); err != nil {
		return fmt.Errorf("%w: %s.%s: %s", ErrScript, EntryName, QuitMethod, describe(err))
	}
	return nil
}

// Steps is a lazy, finite sequence of script steps backed by a JavaScript
// iterator. It cannot be restarted once exhausted.
type Steps struct {
	rt   *Runtime
	iter *goja.Object
	next goja.Callable
	done bool
}

// Next advances the sequence by one step. It returns false once the sequence
// is exhausted, and keeps returning false afterwards.
func (s *Steps) Next() (bool, error) {
	if s.done {
		return false, nil
	}

	res, err := s.next(s.iter)
	if err != nil {
		s.done = true
		return false, fmt.Errorf("%w: %s", ErrStep, describe(err))
	}

	var done bool
	if err := s.rt.try(func() {
		obj, ok := res.(*goja.Object)
		if !ok {
			panic(s.rt.vm.NewTypeError("iterator result is not an object"))
		}
		if d := obj.Get("done"); d != nil {
			done = d.ToBoolean()
		}
	}); err != nil {
		s.done = true
		return false, fmt.Errorf("%w: %s", ErrStep, describe(err))
	}

	if done {
		s.done = true
		return false, nil
	}
	return true, nil
}
