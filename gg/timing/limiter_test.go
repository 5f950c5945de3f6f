package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameDuration(t *testing.T) {
	d := FrameDuration()

	assert.Greater(t, d, 16*time.Millisecond)
	assert.Less(t, d, 17*time.Millisecond)

	previous := RefreshRate
	t.Cleanup(func() { RefreshRate = previous })
	RefreshRate = 50
	assert.Equal(t, 20*time.Millisecond, FrameDuration())
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()

	start := time.Now()
	for i := 0; i < 100; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func TestAdaptiveLimiter(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := newAdaptiveLimiter(clock.Now, clock.Sleep)
	frame := FrameDuration()

	l.WaitForNextFrame()
	assert.Equal(t, []time.Duration{frame}, clock.slept)

	// a slow frame is made up for by a shorter wait
	clock.now = clock.now.Add(frame / 2)
	l.WaitForNextFrame()
	assert.Equal(t, frame/2, clock.slept[1])

	// far behind: no sleep, deadline moves to now
	clock.now = clock.now.Add(10 * frame)
	l.WaitForNextFrame()
	assert.Len(t, clock.slept, 2)

	l.WaitForNextFrame()
	assert.Equal(t, frame, clock.slept[2])
}

func TestTickerLimiter(t *testing.T) {
	l := NewTickerLimiter()
	defer l.Stop()

	start := time.Now()
	l.WaitForNextFrame()
	l.WaitForNextFrame()

	assert.GreaterOrEqual(t, time.Since(start), FrameDuration())

	l.Reset()
	start = time.Now()
	l.WaitForNextFrame()
	assert.Greater(t, time.Since(start), FrameDuration()/2, "reset drops the pending tick")
}

func TestByName(t *testing.T) {
	testCases := []struct {
		name string
		want Limiter
	}{
		{name: "", want: &AdaptiveLimiter{}},
		{name: "adaptive", want: &AdaptiveLimiter{}},
		{name: "ticker", want: &TickerLimiter{}},
		{name: "none", want: noOpLimiter{}},
	}
	for _, tC := range testCases {
		t.Run(tC.name, func(t *testing.T) {
			l, err := ByName(tC.name)
			assert.NoError(t, err)
			assert.IsType(t, tC.want, l)
			if tl, ok := l.(*TickerLimiter); ok {
				tl.Stop()
			}
		})
	}

	_, err := ByName("fast")
	assert.Error(t, err)
}
