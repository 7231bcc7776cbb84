package orchestrator

import (
	"sync"
	"time"
)

// connTracker is a mutex-guarded record of the private stream's
// connectivity, written by the private-event reader goroutine and read
// by the strategy ticker, mirroring marketdata.Mailbox's single-slot
// pattern for the same reason: the domain tick loop must never block
// on a channel the stream goroutine also writes.
type connTracker struct {
	mu        sync.Mutex
	connected bool
	downSince time.Time
}

func newConnTracker() *connTracker {
	return &connTracker{connected: true}
}

func (c *connTracker) set(connected bool, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if connected {
		c.connected = true
		c.downSince = time.Time{}
		return
	}
	if c.connected {
		c.downSince = ts
	}
	c.connected = false
}

func (c *connTracker) snapshot() (connected bool, downSince time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected, c.downSince
}
