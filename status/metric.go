package status

import (
	"math"
	"sync/atomic"
)

// Counter is a cumulative int64 metric. The zero value is ready to use.
type Counter struct {
	v atomic.Int64
}

// Add increments the counter by delta and returns the new value
func (c *Counter) Add(delta int64) int64 {
	return c.v.Add(delta)
}

// Load returns the current value
func (c *Counter) Load() int64 {
	return c.v.Load()
}

// Gauge is a last-value float64 metric, stored as raw bits so writers on hot
// paths never take a lock. The zero value reads 0.
type Gauge struct {
	bits atomic.Uint64
}

// Set replaces the gauge's value
func (g *Gauge) Set(val float64) {
	g.bits.Store(math.Float64bits(val))
}

// Get returns the current value
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}
