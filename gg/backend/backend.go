package backend

import (
	"errors"

	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/video"
)

// ErrQuit is returned by the run loop when a backend asked to quit.
var ErrQuit = errors.New("quit requested")

// Backend represents a presentation platform (terminal, SDL window, headless).
// Backends are responsible for:
// - Rendering frames to their specific output
// - Translating platform-specific input to Actions
// - Handling backend-only features such as toggling the debug view
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config Config) error

	// Update renders a completed frame and returns the actions triggered
	// since the previous call.
	Update(frame *video.FrameBuffer) ([]action.Action, error)

	// Cleanup releases platform resources.
	Cleanup() error
}

// Poller is implemented by backends that must keep servicing input while no
// new frame is produced, for example while the core sits on a breakpoint.
type Poller interface {
	Poll() ([]action.Action, error)
}

// Config holds configuration for backends.
type Config struct {
	Title     string
	Scale     int
	ShowDebug bool // Backends may ignore unsupported features

	// Debug gives read access to the machine state. Set by the runner.
	Debug DebugProvider
}

// DebugProvider exposes machine state to debug panels.
type DebugProvider interface {
	Snapshot() debug.Snapshot
	State() debug.RunState
}
