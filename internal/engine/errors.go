package engine

import (
	"errors"

	"github.com/vovakirdan/redengine/internal/core"
)

var (
	// ErrScript reports a script that failed to compile or run.
	ErrScript = errors.New("engine: script failed")

	// ErrMissingEntry reports a script that does not define the entry object.
	ErrMissingEntry = errors.New("engine: entry object not defined")

	// ErrContract reports an entry object missing a required method or attribute.
	ErrContract = errors.New("engine: entry contract violated")

	// ErrStep reports an error raised while advancing the step sequence.
	ErrStep = errors.New("engine: step failed")

	// ErrFrameSize reports a frame buffer of the wrong length.
	ErrFrameSize = core.ErrFrameSize

	// ErrStopSession is returned by an instruction to end the session loop.
	ErrStopSession = errors.New("engine: session stop requested")

	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("engine: a session is already running")

	// ErrNotStarted is returned by Wait before any session was started.
	ErrNotStarted = errors.New("engine: no session started")
)
