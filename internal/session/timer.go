package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// TimerState enumerates the countdown timer's lifecycle.
type TimerState string

const (
	TimerIdle    TimerState = "IDLE"
	TimerRunning TimerState = "RUNNING"
	TimerExpired TimerState = "EXPIRED"
	TimerStopped TimerState = "STOPPED"
)

// ErrTimerNotIdle is returned when Start is called twice.
var ErrTimerNotIdle = errors.New("countdown already started")

// Countdown ticks a session clock down in whole seconds and fires an expiry
// callback exactly once when it reaches zero.
//
// The countdown is an owned resource: Stop must be called on every exit path
// that does not reach expiry (manual submission, session teardown) so no tick
// can fire after the owning session is gone. Stop is idempotent and a no-op
// after expiry.
type Countdown struct {
	mu        sync.Mutex
	state     TimerState
	remaining int
	interval  time.Duration
	stop      chan struct{}
}

// NewCountdown creates an idle countdown holding seconds of time budget.
// interval is the real-time length of one tick; production callers pass
// time.Second, tests may compress it.
func NewCountdown(seconds int, interval time.Duration) *Countdown {
	return &Countdown{
		state:     TimerIdle,
		remaining: seconds,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// Start transitions Idle → Running and begins ticking. onTick is invoked
// after every decrement with the new remaining value; onExpire is invoked
// exactly once when the clock reaches zero. Both run on the timer goroutine.
func (c *Countdown) Start(onTick func(remaining int), onExpire func()) error {
	c.mu.Lock()
	if c.state != TimerIdle {
		c.mu.Unlock()
		return ErrTimerNotIdle
	}
	if c.remaining <= 0 {
		c.mu.Unlock()
		return errors.New("countdown requires a positive duration")
	}
	c.state = TimerRunning
	c.mu.Unlock()

	go c.run(onTick, onExpire)
	return nil
}

func (c *Countdown) run(onTick func(int), onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != TimerRunning {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			if remaining <= 0 {
				// Flip to Expired inside the lock so a racing Stop,
				// or a straggling tick, can never re-trigger expiry.
				c.state = TimerExpired
				c.mu.Unlock()
				if onTick != nil {
					onTick(0)
				}
				if onExpire != nil {
					onExpire()
				}
				return
			}
			c.mu.Unlock()
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// Stop cancels a running countdown. Safe to call from any exit path, any
// number of times; after expiry it is a no-op.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == TimerRunning || c.state == TimerIdle {
		c.state = TimerStopped
		close(c.stop)
	}
}

// State returns the current lifecycle state.
func (c *Countdown) State() TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the seconds left on the clock. It never increases while
// the countdown is running.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// FormatClock renders a seconds value as a zero-padded HH:MM:SS display
// string. Negative input clamps to zero.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
