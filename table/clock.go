package table

import (
	"sync"
	"time"
)

// ClockToken identifies one armed deadline. Zero is never a valid token.
type ClockToken uint64

// ActionClock enforces per-request response deadlines. Each Arm
// supersedes any previously armed deadline, so a stale timer can never
// fire for a newer action; a token fires at most once.
type ActionClock struct {
	mu    sync.Mutex
	seq   ClockToken
	armed ClockToken
	timer *time.Timer
	fire  func(ClockToken)
}

// NewActionClock creates a clock that invokes fire with the armed token
// when a deadline elapses. fire is called from a timer goroutine.
func NewActionClock(fire func(ClockToken)) *ActionClock {
	return &ActionClock{fire: fire}
}

// Arm starts a new deadline and returns its token, atomically
// superseding any prior one.
func (c *ActionClock) Arm(d time.Duration) ClockToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.seq++
	token := c.seq
	c.armed = token

	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		live := c.armed == token
		if live {
			c.armed = 0
		}
		c.mu.Unlock()

		if live {
			c.fire(token)
		}
	})

	return token
}

// Cancel disarms the given token. It is idempotent and safe to call for
// a token that already fired or was superseded.
func (c *ActionClock) Cancel(token ClockToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == 0 || token != c.armed {
		return
	}

	c.armed = 0
	if c.timer != nil {
		c.timer.Stop()
	}
}
