package watcher

import (
	"sort"
	"sync"
	"time"
)

// Batch is the coalesced result of a quiet period.
type Batch struct {
	Changed []string
	Deleted []string
}

// Empty reports whether the batch carries no paths.
func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Deleted) == 0
}

// Coalescer collects events per path and signals Ready once no event has
// arrived for the configured delay. The last event for a path wins.
type Coalescer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	pending map[string]EventType
	ready   chan struct{}
	// gen identifies the live timer; signals from older timers are dropped.
	gen uint64
}

// NewCoalescer creates a coalescer with the given quiet period
func NewCoalescer(delay time.Duration) *Coalescer {
	return &Coalescer{
		delay:   delay,
		pending: make(map[string]EventType),
		ready:   make(chan struct{}, 1),
	}
}

// Add records an event and restarts the quiet period
func (c *Coalescer) Add(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[event.Path] = event.Type

	if c.timer != nil {
		c.timer.Stop()
	}
	select {
	case <-c.ready:
	default:
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() { c.signal(gen) })
}

func (c *Coalescer) signal(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Ready fires when the quiet period has elapsed. Call Take to collect.
func (c *Coalescer) Ready() <-chan struct{} {
	return c.ready
}

// Take returns and clears the pending batch
func (c *Coalescer) Take() Batch {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	select {
	case <-c.ready:
	default:
	}
	var b Batch
	for path, typ := range c.pending {
		if typ.IsRemoval() {
			b.Deleted = append(b.Deleted, path)
		} else {
			b.Changed = append(b.Changed, path)
		}
	}
	c.pending = make(map[string]EventType)
	sort.Strings(b.Changed)
	sort.Strings(b.Deleted)
	return b
}

// Cancel drops all pending events
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.pending = make(map[string]EventType)
	select {
	case <-c.ready:
	default:
	}
}

// Pending returns the number of distinct pending paths
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
