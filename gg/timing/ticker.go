package timing

import "time"

// TickerLimiter releases one frame per tick of a fixed period ticker.
// A late frame is not made up for: the next wait ends at the following tick.
type TickerLimiter struct {
	period time.Duration
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	period := FrameDuration()
	return &TickerLimiter{period: period, ticker: time.NewTicker(period)}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

// Reset restarts the period from now, dropping a tick already pending.
func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
	select {
	case <-t.ticker.C:
	default:
	}
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
