// Package scene defines the declarative component model consumed by the
// engine: a tree of named Specs, each describing how its resource is created,
// set up, drawn and torn down. The package is pure data plus tree walks; it
// holds no runtime state.
package scene

import (
	"context"
	"time"
)

// FactoryFunc constructs the underlying resource for a component.
// It may block (device acquisition, file loads, permission prompts); the
// engine calls it off the render path. parent is the resolved resource of the
// enclosing component, or nil for root components.
type FactoryFunc func(ctx context.Context, opts Options, parent any) (any, error)

// SetupFunc runs exactly once per creation generation, after every component
// in the tree has a resolved resource. Its return value becomes the
// component's internal props, passed to every subsequent Draw call.
type SetupFunc func(resource any, env Env) any

// DrawFunc is invoked on permitted ticks, in declaration order.
// It must return synchronously; a tick's full draw pass completes before the
// next tick is scheduled.
type DrawFunc func(resource any, frame Frame, props any)

// CleanupFunc releases a resource. Invoked exactly once per creation
// generation, on removal or identity-driven recreation. When nil, resources
// implementing io.Closer are closed instead.
type CleanupFunc func(resource any)

// Spec declares one component. Name must be unique within the tree and
// stable across render passes; it is the identity the lifecycle tracks.
//
// A nil Create registers a nil resource immediately, so pure-draw components
// still count toward the readiness barrier.
type Spec struct {
	Name string

	Create  FactoryFunc
	Setup   SetupFunc
	Draw    DrawFunc
	Cleanup CleanupFunc

	// Deps is the redraw-dependency list. Nil means draw every tick.
	// Declaring a list (even an empty one) means draw only after a shallow
	// change between passes, or when the list contains WhenReady and the
	// element table completes.
	Deps []any

	Options Options

	Children []Spec
}

// HasDraw reports whether the declaration requests drawing.
// Only specs with HasDraw participate in the draw order.
func (s Spec) HasDraw() bool {
	return s.Draw != nil
}

// readyMarker is the type of WhenReady; unexported so the sentinel is the
// only value of it in circulation.
type readyMarker struct{}

// WhenReady is a Deps sentinel. A dependency list containing it is armed for
// one draw when the readiness barrier transitions to true, in addition to
// arming on shallow changes of the other values.
var WhenReady = readyMarker{}

// Elements is the resource snapshot keyed by component name, captured once
// when the readiness barrier becomes true. It is shared by every setup call
// of that barrier generation and by every frame; it is not re-snapshotted
// per tick.
type Elements map[string]any

// Env is the context handed to setup callbacks.
type Env struct {
	Elements Elements
}

// FrameTime carries the shared clock for one tick.
// T is the accumulated clock of the mount: measured elapsed (pausable) time
// in continuous mode, period times tick count in fixed-interval mode. DT is
// the delta since the previous tick: measured in continuous mode (zero on the
// first tick after a start), exactly the period in fixed-interval mode.
// Frame is the tick index starting at 1 and never resets while mounted.
type FrameTime struct {
	T     time.Duration
	DT    time.Duration
	Frame int64
}

// Frame is the per-tick context handed to draw callbacks.
type Frame struct {
	Time     FrameTime
	Elements Elements
}
