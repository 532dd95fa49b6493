// Package engine implements the component lifecycle scheduler: it discovers
// the declared tree each pass, creates each element's resource exactly once
// per identity, tracks the all-ready barrier, and drives a single shared
// frame clock that invokes draw callbacks in declaration order under
// per-element redraw policies.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/lixenwraith/cadre/event"
	"github.com/lixenwraith/cadre/scene"
	"github.com/lixenwraith/cadre/status"
)

// config collects construction options
type config struct {
	mode     Mode
	period   time.Duration
	provider TimeProvider
	queue    *event.Queue
	reg      *status.Registry
}

// Option configures a Runtime at construction
type Option func(*config)

// WithFixedInterval selects fixed-interval mode: ticks every p, dt exactly p,
// internal clock advancing by p per tick
func WithFixedInterval(p time.Duration) Option {
	return func(c *config) {
		c.mode = ModeFixedInterval
		c.period = p
	}
}

// WithFrameRate sets the continuous-mode tick period (default 16ms)
func WithFrameRate(period time.Duration) Option {
	return func(c *config) {
		c.mode = ModeContinuous
		c.period = period
	}
}

// WithTimeProvider injects the clock's time source, for deterministic tests
func WithTimeProvider(tp TimeProvider) Option {
	return func(c *config) { c.provider = tp }
}

// WithEvents attaches an external lifecycle event queue
func WithEvents(q *event.Queue) Option {
	return func(c *config) { c.queue = q }
}

// WithStatus attaches an external metrics registry
func WithStatus(reg *status.Registry) Option {
	return func(c *config) { c.reg = reg }
}

// Runtime is the scheduler facade for one mounted tree. One lock guards the
// table, tracker and lifecycle records; creation goroutines, the driver
// goroutine and the caller all serialize through it. Setup, draw and cleanup
// callbacks run under that lock and must not call back into Runtime mutators.
type Runtime struct {
	mu sync.Mutex

	clock   *PausableClock
	table   *Table
	tracker *Tracker
	driver  *Driver
	queue   *event.Queue
	reg     *status.Registry

	discovery  scene.Discovery
	lifecycles map[string]*lifecycle
	children   map[string][]string

	// genSeq issues creation generations, runtime-wide. Issued values never
	// repeat, so a result from a removed incarnation can never match the
	// generation of a later incarnation under the same name.
	genSeq uint64

	// applyCtx is the context of the most recent Apply; factory calls it
	// started (including parent-gated ones resolved later) receive it
	applyCtx context.Context

	// readySnapshot is the elements snapshot taken when the barrier last
	// rose; shared by all setups and frames of that barrier generation
	readySnapshot scene.Elements
	readyWaiters  []chan struct{}

	lastFrame int64
	closed    bool

	// driverDone is the exit channel of the latest driver run, stashed when
	// the falling edge stops the clock; Close waits on it so the driver
	// goroutine is gone before Close returns
	driverDone <-chan struct{}

	// Cached metric pointers
	statFrames   *status.Counter
	statSkips    *status.Counter
	statCreated  *status.Counter
	statStale    *status.Counter
	statFailures *status.Counter
}

// New creates an unmounted runtime. Nothing happens until the first Apply.
func New(opts ...Option) *Runtime {
	cfg := config{
		mode:   ModeContinuous,
		period: DefaultFramePeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.queue == nil {
		cfg.queue = event.NewQueue()
	}
	if cfg.reg == nil {
		cfg.reg = status.NewRegistry()
	}

	rt := &Runtime{
		clock:      NewPausableClock(cfg.provider),
		table:      NewTable(),
		tracker:    NewTracker(),
		queue:      cfg.queue,
		reg:        cfg.reg,
		lifecycles: make(map[string]*lifecycle),
		applyCtx:   context.Background(),

		statFrames:   cfg.reg.Counter("engine.frames"),
		statSkips:    cfg.reg.Counter("engine.draw.skips"),
		statCreated:  cfg.reg.Counter("lifecycle.created"),
		statStale:    cfg.reg.Counter("lifecycle.stale_discards"),
		statFailures: cfg.reg.Counter("lifecycle.failures"),
	}

	rt.driver = NewDriver(cfg.mode, cfg.period, rt.clock, cfg.reg, rt.tick)
	rt.table.OnCoverage = rt.tracker.Observe
	rt.tracker.OnUp = rt.barrierUp
	rt.tracker.OnDown = rt.barrierDown

	return rt
}

// Apply reconciles one render pass: discover the declared tree, tear down
// names that vanished (children before parents), then reconcile every
// declared name. Creations started by this pass receive ctx; they outlive
// Apply's return and commit asynchronously.
func (rt *Runtime) Apply(ctx context.Context, roots []scene.Spec) error {
	next, err := scene.Discover(roots)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return ErrClosed
	}
	rt.applyCtx = ctx

	prev := rt.discovery
	rt.discovery = next
	rt.children = childIndex(next)

	// Install the new expected set first so the barrier reflects this
	// pass before any lifecycle work: fresh names drop it immediately
	rt.table.SetOrders(next.Orders.Setup)

	for _, name := range scene.Removed(prev, next) {
		rt.teardownElement(name)
	}

	for _, name := range next.Orders.Setup {
		rt.upsertElement(name)
	}

	return nil
}

// childIndex maps each parent name to its children in declaration order
func childIndex(d scene.Discovery) map[string][]string {
	idx := make(map[string][]string)
	for _, name := range d.Orders.Setup {
		if p := d.Parent[name]; p != "" {
			idx[p] = append(idx[p], name)
		}
	}
	return idx
}

// barrierUp runs on the rising edge, under the runtime lock, inside the
// mutation that completed the table: snapshot the elements, fire setups in
// setup order, arm ready-dependent entries, release waiters, start the clock
func (rt *Runtime) barrierUp() {
	if rt.closed {
		return
	}

	snapshot := rt.table.Elements()
	rt.readySnapshot = snapshot

	env := scene.Env{Elements: snapshot}
	for _, name := range rt.discovery.Orders.Setup {
		lc := rt.lifecycles[name]
		if lc == nil || lc.spec.Setup == nil {
			continue
		}
		e, ok := rt.table.Get(name)
		if !ok {
			continue
		}
		props := lc.spec.Setup(e.Resource, env)
		rt.table.SetProps(name, props)
	}

	// Dependency lists containing the ready sentinel get their one-shot
	for _, name := range rt.discovery.Orders.Setup {
		if lc := rt.lifecycles[name]; lc != nil && lc.whenReady {
			rt.table.Arm(name)
		}
	}

	for _, ch := range rt.readyWaiters {
		close(ch)
	}
	rt.readyWaiters = nil

	rt.driver.Start()
	Logger().Info("barrier up", "elements", rt.table.Len())
	rt.pushEvent(event.TypeBarrierUp, "", nil)
	rt.pushEvent(event.TypeDriverStarted, "", nil)
}

// barrierDown runs on the falling edge: stop the clock. Survivors keep
// their entries and props until the next rise, which re-runs every setup
// against a fresh snapshot.
func (rt *Runtime) barrierDown() {
	rt.driverDone = rt.driver.Stop()
	Logger().Info("barrier down")
	rt.pushEvent(event.TypeBarrierDown, "", nil)
	rt.pushEvent(event.TypeDriverStopped, "", nil)
}

// tick performs one draw pass. Runs on the driver goroutine; a tick that
// raced a stop signal finds the barrier down and does nothing.
func (rt *Runtime) tick(ft scene.FrameTime) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed || !rt.tracker.Ready() {
		return
	}

	rt.lastFrame = ft.Frame
	frame := scene.Frame{Time: ft, Elements: rt.readySnapshot}

	for _, name := range rt.discovery.Orders.Draw {
		e, ok := rt.table.Get(name)
		if !ok {
			continue // Never resolved: skipped, not an error
		}
		if e.Policy == PolicySuppressed {
			rt.statSkips.Add(1)
			continue
		}
		if e.Draw == nil {
			panic(missingDrawPanic(name))
		}
		e.Draw(e.Resource, frame, e.Props)
		if e.Policy == PolicyOnce {
			e.Policy = PolicySuppressed
		}
	}

	rt.statFrames.Add(1)
}

// Close unmounts the tree: stop the clock, tear down every element in
// reverse setup order (cleanups exactly once), reject all future operations.
// Blocks until the driver goroutine has exited or ctx is done. In-flight
// factory calls are not cancelled; their late results are discarded.
func (rt *Runtime) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return ErrClosed
	}
	rt.closed = true

	// Teardown first: the first removal that breaks coverage fires the
	// barrier's falling edge, stopping the driver before any resource is
	// destroyed. The explicit stop below covers trees that never raised
	// the barrier and the empty tree, whose coverage never falls.
	setup := rt.discovery.Orders.Setup
	for i := len(setup) - 1; i >= 0; i-- {
		rt.teardownElement(setup[i])
	}

	wasRunning := rt.driver.Running()
	stopDone := rt.driver.Stop()
	if wasRunning {
		rt.driverDone = stopDone
		rt.pushEvent(event.TypeDriverStopped, "", nil)
	}

	for _, ch := range rt.readyWaiters {
		close(ch)
	}
	rt.readyWaiters = nil

	// The falling edge during teardown, or the explicit stop above, stashed
	// the live run's exit channel. A driver that never started has neither;
	// stopDone is then already closed.
	done := rt.driverDone
	if done == nil {
		done = stopDone
	}

	Logger().Info("runtime closed")
	rt.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitReady blocks until the barrier is up, the runtime closes, or ctx ends
func (rt *Runtime) WaitReady(ctx context.Context) error {
	for {
		rt.mu.Lock()
		if rt.closed {
			rt.mu.Unlock()
			return ErrClosed
		}
		if rt.tracker.Ready() {
			rt.mu.Unlock()
			return nil
		}
		ch := make(chan struct{})
		rt.readyWaiters = append(rt.readyWaiters, ch)
		rt.mu.Unlock()

		select {
		case <-ch:
			// Re-check: the barrier may already have dropped again, or
			// the runtime closed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ready reports whether every declared element currently has a resolved
// resource
func (rt *Runtime) Ready() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return !rt.closed && rt.tracker.Ready()
}

// Elements returns a snapshot copy of the currently registered resources
func (rt *Runtime) Elements() scene.Elements {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.table.Elements()
}

// Err returns the element's last creation failure, or nil
func (rt *Runtime) Err(name string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if lc, ok := rt.lifecycles[name]; ok {
		return lc.err
	}
	return nil
}

// Pause freezes the frame clock; ticks suspend without losing position
func (rt *Runtime) Pause() {
	rt.clock.Pause()
}

// Resume continues the frame clock without a dt jump
func (rt *Runtime) Resume() {
	rt.clock.Resume()
}

// Paused reports the clock's pause state
func (rt *Runtime) Paused() bool {
	return rt.clock.IsPaused()
}

// Clock exposes the shared pausable clock
func (rt *Runtime) Clock() *PausableClock {
	return rt.clock
}

// Events returns the lifecycle event queue. Single consumer: drain with
// Consume.
func (rt *Runtime) Events() *event.Queue {
	return rt.queue
}

// Stats returns the metrics registry
func (rt *Runtime) Stats() *status.Registry {
	return rt.reg
}

// pushEvent publishes one lifecycle event. Callers hold the runtime lock;
// the queue itself is lock-free so this never blocks.
func (rt *Runtime) pushEvent(t event.Type, name string, err error) {
	rt.queue.Push(event.Event{
		Type:      t,
		Name:      name,
		Err:       err,
		Frame:     rt.lastFrame,
		Timestamp: rt.clock.RealTime(),
	})
}
