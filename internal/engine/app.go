// Package engine runs user scripts on a background goroutine and bridges
// them to the UI. A session publishes frames to a shared Slot and executes
// deferred instructions from a Queue; the Controller is the non-blocking
// facade the UI talks to.
package engine

import "github.com/charmbracelet/log"

// App owns the process-wide shared objects. It is constructed once at
// startup and passed by reference to whoever needs the slot or controller.
type App struct {
	Slot       *Slot
	Queue      *Queue
	Interp     *Interpreter
	Controller *Controller
}

// NewApp wires a slot, queue, interpreter and controller together.
func NewApp(opts Options, logger *log.Logger) *App {
	slot := NewSlot()
	queue := NewQueue()
	interp := NewInterpreter(logger)
	return &App{
		Slot:       slot,
		Queue:      queue,
		Interp:     interp,
		Controller: NewController(interp, slot, queue, opts, logger),
	}
}

// Close stops accepting sessions and cancels the running one.
func (a *App) Close() {
	a.Controller.Close()
}
