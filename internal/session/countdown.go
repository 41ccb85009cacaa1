package session

import "time"

const DefaultTurnSeconds = 15

// Ticker is the part of time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// countdown is either stopped or running with remaining seconds. It is
// owned by one room goroutine, which selects on C and calls tick.
type countdown struct {
	seconds   int
	remaining int
	newTicker TickerFunc
	ticker    Ticker
}

func newCountdown(seconds int, newTicker TickerFunc) *countdown {
	if seconds <= 0 {
		seconds = DefaultTurnSeconds
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &countdown{seconds: seconds, newTicker: newTicker}
}

// start replaces any running countdown with a full one and returns the
// value to announce.
func (c *countdown) start() int {
	c.stop()
	c.remaining = c.seconds
	c.ticker = c.newTicker(time.Second)
	return c.remaining
}

func (c *countdown) stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *countdown) running() bool {
	return c.ticker != nil
}

// C is nil while stopped, so a select on it never fires.
func (c *countdown) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

// tick consumes one second. On reaching zero the countdown stops itself
// and reports expired.
func (c *countdown) tick() (remaining int, expired bool) {
	if c.ticker == nil {
		return 0, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.stop()
		return 0, true
	}
	return c.remaining, false
}
