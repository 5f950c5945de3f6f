package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps until a running deadline, so short frames make up
// for long ones. It gives up on catching up when it falls too far behind.
type AdaptiveLimiter struct {
	frameTime time.Duration
	next      time.Time
	frames    int64
	now       func() time.Time
	sleep     func(time.Duration)
}

// maxLag is how far behind schedule the limiter may fall before it resynchronises.
const maxLag = 80 * time.Millisecond

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return newAdaptiveLimiter(time.Now, time.Sleep)
}

func newAdaptiveLimiter(now func() time.Time, sleep func(time.Duration)) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frameTime: FrameDuration(),
		next:      now(),
		now:       now,
		sleep:     sleep,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	a.next = a.next.Add(a.frameTime)
	a.frames++

	wait := a.next.Sub(a.now())
	switch {
	case wait > 0:
		a.sleep(wait)
	case wait < -maxLag:
		slog.Debug("Frame limiter resynchronised", "behind_ms", (-wait).Milliseconds(), "frame", a.frames)
		a.next = a.now()
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.frames = 0
}
