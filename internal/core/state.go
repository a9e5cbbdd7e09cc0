package core

// GameState is the observable status of the scripted program.
// Running is set when a session starts and cleared only once the session
// goroutine has actually exited. Stopping is set as soon as a stop has been
// requested and stays set until the session exits.
type GameState struct {
	Running   bool
	Stopping  bool
	Size      Size   // Frame size negotiated at session start
	Frames    int    // Frames published by the current or last session
	SessionID string // Empty before the first session
}
