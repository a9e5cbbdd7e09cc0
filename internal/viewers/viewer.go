// Package viewers tracks the shells attached to one shared engine and fans
// engine notifications out to them. It is transport neutral: the SSH server
// registers a Channel per connection and the shell reads its events.
package viewers

import "sync"

// ID identifies a connected viewer, such as "alice@10.0.0.2:51234".
type ID string

// DefaultBuffer is the event buffer of a Channel created with size < 1.
const DefaultBuffer = 64

// Handle is what the registry needs to deliver events to a viewer.
type Handle interface {
	// ID returns the unique viewer identifier.
	ID() ID

	// Send delivers an event without blocking.
	Send(evt Event)

	// Done returns a channel that closes when the viewer disconnects.
	Done() <-chan struct{}
}

// Channel is a Handle backed by a buffered channel.
type Channel struct {
	id       ID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannel creates a channel handle buffering up to size events.
func NewChannel(id ID, size int) *Channel {
	if size < 1 {
		size = DefaultBuffer
	}
	return &Channel{
		id:     id,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// ID returns the viewer identifier.
func (c *Channel) ID() ID {
	return c.id
}

// Send queues an event. When the buffer is full the oldest event is dropped.
// Events sent after Close are discarded.
func (c *Channel) Send(evt Event) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- evt:
		return
	default:
	}

	// Buffer full: drop the oldest and retry once.
	select {
	case <-c.events:
	default:
	}
	select {
	case c.events <- evt:
	default:
	}
}

// Events returns the channel the shell reads from.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Done returns the done channel.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close marks the viewer as gone. Safe to call multiple times.
func (c *Channel) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
