package viewers

import "github.com/vovakirdan/redengine/internal/engine"

// Event is a notification delivered to every connected viewer.
type Event interface {
	viewerEvent()
}

// OutcomeEvent reports a finished script session.
type OutcomeEvent struct {
	Outcome engine.Outcome
}

func (OutcomeEvent) viewerEvent() {}

// JoinedEvent is sent to the other viewers when one connects.
type JoinedEvent struct {
	Viewer ID
	Count  int // viewers connected after the join
}

func (JoinedEvent) viewerEvent() {}

// LeftEvent is sent to the remaining viewers when one disconnects.
type LeftEvent struct {
	Viewer ID
	Count  int // viewers connected after the leave
}

func (LeftEvent) viewerEvent() {}
