package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry holds the process-wide request counters surfaced on /health.
type Registry struct {
	Requests       Counter
	FailedRequests Counter
	startedAt      time.Time
}

func NewRegistry() *Registry {
	return &Registry{startedAt: time.Now()}
}

func (r *Registry) Uptime() time.Duration {
	return time.Since(r.startedAt)
}
