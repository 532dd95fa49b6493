package engine

import (
	"sync/atomic"
	"time"
)

// MockTimeProvider is a hand-cranked TimeProvider for tests: the reading
// never moves on its own, only through SetTime and Advance. Stored as a fixed
// base instant plus an atomic nanosecond offset, so concurrent advances are
// additive.
type MockTimeProvider struct {
	base   time.Time
	offset atomic.Int64 // Nanoseconds relative to base
}

// NewMockTimeProvider creates a mock clock reading startTime
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{base: startTime}
}

// Now returns the mock's current reading
func (m *MockTimeProvider) Now() time.Time {
	return m.base.Add(time.Duration(m.offset.Load()))
}

// SetTime jumps the clock to t; moving backward is allowed
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.offset.Store(int64(t.Sub(m.base)))
}

// Advance moves the clock forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.offset.Add(int64(d))
}
