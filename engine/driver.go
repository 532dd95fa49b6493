package engine

import (
	"sync"
	"time"

	"github.com/lixenwraith/cadre/core"
	"github.com/lixenwraith/cadre/scene"
	"github.com/lixenwraith/cadre/status"
)

// Mode selects the driver's timing source
type Mode uint8

const (
	// ModeContinuous free-runs at the display period; dt is measured
	// between consecutive ticks and is zero on the first tick after a start
	ModeContinuous Mode = iota

	// ModeFixedInterval fires every period with dt always exactly the
	// period; the internal clock advances by the period per tick regardless
	// of wall time
	ModeFixedInterval
)

// DefaultFramePeriod is the continuous-mode period when none is configured
const DefaultFramePeriod = 16 * time.Millisecond

// Driver owns the single timing source for a mounted tree. It is started
// when the readiness barrier rises and stopped when it falls or the tree
// unmounts; the tick callback performs the draw pass. Frame numbering and
// the fixed-mode internal clock persist across stop/start cycles within one
// mount.
type Driver struct {
	mode   Mode
	period time.Duration
	clock  *PausableClock
	tick   func(ft scene.FrameTime)

	mu           sync.Mutex
	run          *driverRun
	frameCount   int64
	fixedElapsed time.Duration
	lastTick     time.Time // Previous tick in mount time (continuous mode)
	firstOfRun   bool

	// Cached metric pointers
	statTicks *status.Counter
	statDT    *status.Gauge
}

// driverRun is one start/stop cycle of the timing source
type driverRun struct {
	stop chan struct{}
	done chan struct{}
}

// NewDriver creates a stopped driver. tick runs on the driver goroutine,
// once per elapsed period, never concurrently with itself.
func NewDriver(mode Mode, period time.Duration, clock *PausableClock, reg *status.Registry, tick func(ft scene.FrameTime)) *Driver {
	if period <= 0 {
		period = DefaultFramePeriod
	}
	return &Driver{
		mode:      mode,
		period:    period,
		clock:     clock,
		tick:      tick,
		statTicks: reg.Counter("engine.ticks"),
		statDT:    reg.Gauge("engine.dt"),
	}
}

// Period returns the configured tick period
func (d *Driver) Period() time.Duration {
	return d.period
}

// Running reports whether a timing source is live
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run != nil
}

// Start launches the timing source. No-op if already running.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run != nil {
		return
	}
	run := &driverRun{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	d.run = run
	d.firstOfRun = true
	core.Go(func() { d.loop(run) })
}

// Stop signals the timing source to halt and returns a channel closed when
// its goroutine has fully exited. Safe to call under locks the tick callback
// also takes: Stop never waits itself. Calling Stop on a stopped driver
// returns an already-closed channel.
func (d *Driver) Stop() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	run := d.run
	d.run = nil
	close(run.stop)
	return run.done
}

// isCurrent reports whether run is still the live timing source
func (d *Driver) isCurrent(run *driverRun) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run == run
}

// loop is the timing source: deadline-based scheduling against mount time,
// pause-aware, drift-corrected, stopped via the run's channel. The timer
// handle lives on the stack and is unconditionally stopped on exit.
func (d *Driver) loop(run *driverRun) {
	defer close(run.done)

	next := d.clock.Now().Add(d.period)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-run.stop:
			return
		default:
		}

		var sleep time.Duration

		if d.clock.IsPaused() {
			// Increase sleep interval while paused to save CPU
			sleep = d.period * 2
		} else {
			now := d.clock.Now()
			if !now.Before(next) {
				if !d.isCurrent(run) {
					return
				}
				ft := d.advance(now)
				d.tick(ft)

				next = next.Add(d.period)
				// Snap the deadline forward after long stalls instead
				// of bursting catch-up ticks
				if now.Sub(next) > d.period*2 {
					next = now.Add(d.period)
				}

				sleep = next.Sub(d.clock.Now())
				if sleep < 0 {
					sleep = 0
				}
			} else {
				sleep = next.Sub(now)
			}
		}

		if sleep > 0 {
			timer.Reset(sleep)
			select {
			case <-timer.C:
			case <-run.stop:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				return
			}
		}
	}
}

// advance produces the next tick's FrameTime. now is the current mount time;
// fixed-interval mode ignores it and steps its internal clock by exactly one
// period.
func (d *Driver) advance(now time.Time) scene.FrameTime {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.frameCount++
	ft := scene.FrameTime{Frame: d.frameCount}

	switch d.mode {
	case ModeFixedInterval:
		d.fixedElapsed += d.period
		ft.T = d.fixedElapsed
		ft.DT = d.period
	default:
		ft.T = d.clock.Elapsed()
		if d.firstOfRun {
			ft.DT = 0
		} else {
			ft.DT = now.Sub(d.lastTick)
		}
		d.lastTick = now
	}
	d.firstOfRun = false

	d.statTicks.Add(1)
	d.statDT.Set(ft.DT.Seconds())
	return ft
}
