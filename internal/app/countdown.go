package app

import (
	"sync"
	"time"

	"quizverse/internal/domain"
)

// TickSource delivers countdown ticks. Production code uses a 1 Hz ticker;
// tests push synthetic ticks through a channel.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

type tickerSource struct {
	ticker *time.Ticker
}

// NewTicker returns a TickSource backed by time.Ticker.
func NewTicker(interval time.Duration) TickSource {
	return &tickerSource{ticker: time.NewTicker(interval)}
}

// SecondTicker is the default tick source for attempts.
func SecondTicker() TickSource {
	return NewTicker(time.Second)
}

func (t *tickerSource) C() <-chan time.Time { return t.ticker.C }
func (t *tickerSource) Stop()               { t.ticker.Stop() }

// Countdown drives an attempt's remaining time to zero and auto-submits it.
type Countdown struct {
	attempt *Attempt
	source  TickSource

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

func newCountdown(attempt *Attempt, source TickSource) *Countdown {
	return &Countdown{
		attempt: attempt,
		source:  source,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the tick loop. A countdown runs at most once; starting a
// stopped countdown does nothing.
func (c *Countdown) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return domain.ErrCountdownStarted
	}
	c.started = true
	if c.stopped {
		return nil
	}
	go c.run()
	return nil
}

// Stop halts the loop. Safe to call many times and before Start.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
	if !c.started {
		c.source.Stop()
		close(c.done)
	}
}

// Done is closed once the loop has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) run() {
	defer close(c.done)
	defer c.source.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-c.source.C():
			// A tick racing with Stop must not reach the attempt.
			select {
			case <-c.stop:
				return
			default:
			}
			if !c.attempt.tick() {
				return
			}
		}
	}
}
