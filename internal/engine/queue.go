package engine

import (
	"container/list"
	"sync"
)

// Instruction is deferred work that runs inside the interpreter context, on
// the session goroutine. Returning ErrStopSession ends the session loop.
type Instruction func(rt *Runtime) error

// Queue is an unbounded FIFO of instructions. Any goroutine may enqueue;
// only the session goroutine drains.
type Queue struct {
	mu    sync.Mutex
	items *list.List
}

// NewQueue creates an empty instruction queue.
func NewQueue() *Queue {
	return &Queue{items: list.New()}
}

// Enqueue appends an instruction to the tail. It never blocks on the consumer.
func (q *Queue) Enqueue(in Instruction) {
	if in == nil {
		return
	}
	q.mu.Lock()
	q.items.PushBack(in)
	q.mu.Unlock()
}

// DrainOne pops the head instruction, if any.
func (q *Queue) DrainOne() (Instruction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.items.Front()
	if front == nil {
		return nil, false
	}
	q.items.Remove(front)
	return front.Value.(Instruction), true
}

// Len returns the number of pending instructions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Clear drops every pending instruction and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.items.Len()
	q.items.Init()
	return n
}
