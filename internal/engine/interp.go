package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"
)

// Interpreter guards the single scripted execution context of the process.
// Only the goroutine holding it may call into script code; other goroutines
// reach the running script through the instruction queue.
type Interpreter struct {
	mu     sync.Mutex
	logger *log.Logger
}

// NewInterpreter creates the process-wide interpreter.
func NewInterpreter(logger *log.Logger) *Interpreter {
	return &Interpreter{logger: logger}
}

// Acquire blocks until the interpreter is free and returns a fresh runtime.
// The runtime must be released with Close on the same goroutine.
func (in *Interpreter) Acquire(logger *log.Logger) *Runtime {
	in.mu.Lock()
	if logger == nil {
		logger = in.logger
	}

	vm := goja.New()
	rt := &Runtime{
		vm:      vm,
		logger:  logger,
		release: in.mu.Unlock,
	}
	rt.installConsole()
	rt.installSurfaces()
	return rt
}

// Runtime is the interpreter context handed to instructions. It is confined
// to the session goroutine.
type Runtime struct {
	vm      *goja.Runtime
	entry   *Entry
	logger  *log.Logger
	release func()
}

// VM exposes the underlying JavaScript runtime.
func (rt *Runtime) VM() *goja.Runtime {
	return rt.vm
}

// Entry returns the resolved entry object, or nil before resolution.
func (rt *Runtime) Entry() *Entry {
	return rt.entry
}

// Logger returns the session logger.
func (rt *Runtime) Logger() *log.Logger {
	return rt.logger
}

// Exec runs script source in the global scope.
func (rt *Runtime) Exec(name, src string) error {
	if _, err := rt.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("%w: %s", ErrScript, describe(err))
	}
	return nil
}

// Close releases the interpreter. Calling it twice is a no-op.
func (rt *Runtime) Close() {
	if rt.release != nil {
		rt.release()
		rt.release = nil
	}
}

// try runs f and turns a thrown script exception into an error.
func (rt *Runtime) try(f func()) error {
	if ex := rt.vm.Try(f); ex != nil {
		return ex
	}
	return nil
}

func (rt *Runtime) installConsole() {
	console := rt.vm.NewObject()
	bind := func(name string, logf func(msg interface{}, keyvals ...interface{})) {
		//nolint:errcheck // Setting a property on a fresh object cannot fail
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			logf(joinArgs(call.Arguments), "source", "script")
			return goja.Undefined()
		})
	}
	bind("log", rt.logger.Info)
	bind("info", rt.logger.Info)
	bind("debug", rt.logger.Debug)
	bind("warn", rt.logger.Warn)
	bind("error", rt.logger.Error)

	//nolint:errcheck // Globals on a fresh runtime
	rt.vm.Set("console", console)
	//nolint:errcheck // Globals on a fresh runtime
	rt.vm.Set("print", console.Get("log"))
}

func joinArgs(args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// describe renders script errors with their stack position when available.
func describe(err error) string {
	if ex, ok := err.(*goja.Exception); ok {
		return ex.String()
	}
	return err.Error()
}
