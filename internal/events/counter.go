package events

import (
	"context"
	"sync"
)

// Counter is an EventHandler that keeps running totals per event type.
type Counter struct {
	mu     sync.Mutex
	totals map[Type]int64
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{totals: make(map[Type]int64)}
}

// HandleEvent implements EventHandler.
func (c *Counter) HandleEvent(_ context.Context, event *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[event.Type]++
	return nil
}

// Count returns the total for one event type.
func (c *Counter) Count(t Type) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[t]
}

// Totals returns a copy of all totals.
func (c *Counter) Totals() map[Type]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[Type]int64, len(c.totals))
	for k, v := range c.totals {
		out[k] = v
	}
	return out
}
