package timing

import (
	"fmt"
	"time"
)

// Limiter paces frame presentation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// CyclesPerFrame is the cost of one frame in this machine's cycle units:
// 144 visible lines followed by as many V-blank lines, 1824 cycles each.
const CyclesPerFrame = 2 * 144 * 1824

// RefreshRate is the display refresh rate of the handheld, in Hz.
var RefreshRate = 59.7275

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / RefreshRate)
}

// ByName returns the limiter selected on the command line: "adaptive",
// "ticker" or "none".
func ByName(name string) (Limiter, error) {
	switch name {
	case "adaptive", "":
		return NewAdaptiveLimiter(), nil
	case "ticker":
		return NewTickerLimiter(), nil
	case "none":
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown limiter %q", name)
}
