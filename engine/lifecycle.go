package engine

import (
	"io"

	"github.com/lixenwraith/cadre/core"
	"github.com/lixenwraith/cadre/event"
	"github.com/lixenwraith/cadre/scene"
)

// lifecycleState is the per-element creation state machine
type lifecycleState uint8

const (
	// stateIdle: declared but creation not started (waiting for its parent
	// to resolve, or a previous attempt failed)
	stateIdle lifecycleState = iota

	// stateCreating: a factory call is in flight for the current generation
	stateCreating

	// stateRegistered: the resource resolved and lives in the table
	stateRegistered

	// stateRemoved: terminal, set during teardown just before the
	// lifecycle record is dropped
	stateRemoved
)

func (s lifecycleState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCreating:
		return "creating"
	case stateRegistered:
		return "registered"
	case stateRemoved:
		return "removed"
	default:
		return "invalid"
	}
}

// lifecycle tracks one declared element across render passes. All fields are
// guarded by the runtime lock.
type lifecycle struct {
	name  string
	state lifecycleState

	// gen is the creation generation, issued from the runtime-wide genSeq.
	// Each creation attempt captures the generation it was started with and
	// only commits if it still matches: the latest accepted creation wins,
	// stale results are discarded. Issued generations never repeat, so a
	// result from a removed incarnation stays stale even after the name is
	// re-declared.
	gen uint64

	// identity is the recreate identity (stringified options) the current
	// generation was declared with. A change discards the resource and
	// starts a fresh creation.
	identity string

	spec      scene.Spec
	deps      []any
	whenReady bool

	// err holds the last creation failure. While set (and identity
	// unchanged) no new attempt starts: creation failures do not retry.
	err error
}

// upsertElement reconciles one declared name against its lifecycle record:
// first sight starts creation, an identity change recreates, a dependency
// list change arms one draw, and refreshed callbacks replace stale closures.
func (rt *Runtime) upsertElement(name string) {
	spec := rt.discovery.Specs[name]

	lc, ok := rt.lifecycles[name]
	if !ok {
		lc = &lifecycle{
			name:      name,
			identity:  spec.Options.Identity(),
			spec:      spec,
			deps:      spec.Deps,
			whenReady: scene.HasWhenReady(spec.Deps),
		}
		rt.lifecycles[name] = lc
		rt.maybeStartCreation(lc)
		return
	}

	prevDeps := lc.deps
	lc.spec = spec
	lc.deps = spec.Deps
	lc.whenReady = scene.HasWhenReady(spec.Deps)

	// Declarations rebuild their closures every pass; keep the registered
	// entry pointing at the fresh ones without touching resource or policy
	rt.table.SetDraw(name, spec.Draw)
	rt.table.SetCleanup(name, spec.Cleanup)

	if newIdentity := spec.Options.Identity(); newIdentity != lc.identity {
		// Identity change: retire the old resource (cleanup exactly once)
		// and start over. Taking a fresh generation first makes any
		// in-flight result for the old identity stale.
		rt.retireEntry(lc)
		lc.identity = newIdentity
		lc.gen = rt.nextGen()
		lc.err = nil
		lc.state = stateIdle
		rt.maybeStartCreation(lc)
		return
	}

	if lc.state == stateRegistered && !scene.DepsEqual(prevDeps, spec.Deps) {
		rt.table.Arm(name)
	}

	// An idle element may have been waiting on a parent that has since
	// registered
	rt.maybeStartCreation(lc)
}

// maybeStartCreation starts a factory call when the element is eligible:
// idle, not failed, and its parent (if any) resolved. Root elements have no
// parent gate.
func (rt *Runtime) maybeStartCreation(lc *lifecycle) {
	if lc.state != stateIdle || lc.err != nil {
		return
	}

	var parentRes any
	if parentName := rt.discovery.Parent[lc.name]; parentName != "" {
		pe, ok := rt.table.Get(parentName)
		if !ok {
			return // Retried when the parent commits
		}
		parentRes = pe.Resource
	}

	rt.startCreation(lc, parentRes)
}

// nextGen issues the next creation generation. Caller holds the runtime lock.
func (rt *Runtime) nextGen() uint64 {
	rt.genSeq++
	return rt.genSeq
}

// startCreation launches the factory on its own goroutine under a fresh
// generation. The result is handed back to finishCreation, which checks the
// generation before committing.
func (rt *Runtime) startCreation(lc *lifecycle, parentRes any) {
	lc.gen = rt.nextGen()
	gen := lc.gen
	lc.state = stateCreating
	lc.err = nil

	name := lc.name
	factory := lc.spec.Create
	opts := lc.spec.Options
	ctx := rt.applyCtx

	Logger().Debug("creation started", "name", name, "generation", gen)

	core.Go(func() {
		if factory == nil {
			// Declarations without a factory register a nil resource so
			// they still count toward the barrier
			rt.finishCreation(name, gen, nil, nil)
			return
		}
		res, err := factory(ctx, opts, parentRes)
		rt.finishCreation(name, gen, res, err)
	})
}

// finishCreation accepts or discards one factory result. Runs on the
// creation goroutine; takes the runtime lock, so commits are serialized in
// arrival order and the barrier recompute inside Commit is synchronous.
func (rt *Runtime) finishCreation(name string, gen uint64, res any, err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	lc, ok := rt.lifecycles[name]
	if rt.closed || !ok || lc.gen != gen {
		// Stale: a newer generation superseded this attempt, the element
		// was removed, or the runtime closed. Not user-visible; close
		// closeable resources so they do not leak.
		rt.statStale.Add(1)
		Logger().Debug("stale creation discarded", "name", name, "generation", gen)
		if closer, isCloser := res.(io.Closer); isCloser && err == nil {
			_ = closer.Close()
		}
		return
	}

	if err != nil {
		lc.err = CreationError{Name: name, Err: err}
		lc.state = stateIdle
		rt.statFailures.Add(1)
		Logger().Warn("creation failed", "name", name, "generation", gen, "error", err)
		rt.pushEvent(event.TypeCreationFailed, name, lc.err)
		return
	}

	lc.state = stateRegistered
	rt.statCreated.Add(1)
	Logger().Debug("element registered", "name", name, "generation", gen)
	rt.pushEvent(event.TypeRegistered, name, nil)

	// Commit recomputes coverage; if this was the last missing element the
	// rising edge (and its events) fires inside, after the Registered push
	rt.table.Commit(name, res, lc.spec.Draw, lc.spec.Cleanup, lc.spec.Deps)

	// Children gated on this parent can start now
	for _, child := range rt.children[name] {
		if clc, exists := rt.lifecycles[child]; exists {
			rt.maybeStartCreation(clc)
		}
	}
}

// retireEntry pops the element's table entry for an identity-driven
// recreation. The barrier recompute (and driver stop) fires inside Remove,
// before the old resource is destroyed.
func (rt *Runtime) retireEntry(lc *lifecycle) {
	entry := rt.table.Remove(lc.name)
	if entry == nil {
		return
	}
	rt.runCleanup(lc.name, entry)
	rt.pushEvent(event.TypeRemoved, lc.name, nil)
	Logger().Debug("element retired for recreation", "name", lc.name)
}

// teardownElement removes one element for good: entry popped, cleanup run
// exactly once, lifecycle record dropped. Dropping the record makes any
// in-flight result stale, and a re-declared record gets a generation the old
// result can never match. Safe to call for names that never resolved.
func (rt *Runtime) teardownElement(name string) {
	if lc, ok := rt.lifecycles[name]; ok {
		lc.state = stateRemoved
		delete(rt.lifecycles, name)
	}

	entry := rt.table.Remove(name)
	if entry == nil {
		return
	}
	rt.runCleanup(name, entry)
	rt.pushEvent(event.TypeRemoved, name, nil)
	Logger().Debug("element removed", "name", name)
}

// runCleanup releases one resource: the declared hook when present, the
// io.Closer fallback otherwise
func (rt *Runtime) runCleanup(name string, e *Entry) {
	if e.Cleanup != nil {
		e.Cleanup(e.Resource)
		return
	}
	if closer, ok := e.Resource.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			Logger().Warn("resource close failed", "name", name, "error", err)
		}
	}
}
