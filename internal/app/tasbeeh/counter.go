package tasbeeh

import (
	"context"
	"log/slog"
	"sync"
)

// Recorder records completed sessions.
type Recorder interface {
	Record(ctx context.Context, count int, dhikr string) error
}

// Counter is a tasbeeh counter. It only counts while running.
type Counter struct {
	activity *Activity
	events   *Events
	recorder Recorder

	mu      sync.Mutex
	count   int
	dhikr   string
	running bool
}

// NewCounter returns a new counter. events is optional.
func NewCounter(activity *Activity, recorder Recorder, events *Events) *Counter {
	return &Counter{activity: activity, recorder: recorder, events: events}
}

func (c *Counter) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
}

func (c *Counter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// SetDhikr sets the dhikr being counted, which is stored with the session.
func (c *Counter) SetDhikr(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dhikr = s
}

func (c *Counter) Dhikr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dhikr
}

// Increment increments the count while the counter is running and returns the count.
func (c *Counter) Increment(ctx context.Context) int {
	c.mu.Lock()
	if !c.running {
		n := c.count
		c.mu.Unlock()
		return n
	}
	c.count++
	n := c.count
	c.mu.Unlock()
	c.activity.Touch()
	c.emit(ctx, n)
	return n
}

// Reset stops the counter and sets the count to zero.
// A count above zero is recorded as session.
func (c *Counter) Reset(ctx context.Context) error {
	c.mu.Lock()
	n := c.count
	dhikr := c.dhikr
	c.count = 0
	c.running = false
	c.mu.Unlock()
	c.emit(ctx, 0)
	if n == 0 {
		return nil
	}
	if err := c.recorder.Record(ctx, n, dhikr); err != nil {
		return err
	}
	slog.Info("Tasbeeh session recorded", "count", n, "dhikr", dhikr)
	return nil
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Counter) emit(ctx context.Context, n int) {
	if c.events == nil {
		return
	}
	c.events.CounterChanged.Emit(ctx, n)
}
