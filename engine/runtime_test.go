package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/cadre/scene"
)

const testPeriod = 16 * time.Millisecond

// newTestRuntime builds a runtime whose real timing source sleeps for an
// hour, so tests drive draw passes manually through tick for exact counts
func newTestRuntime(opts ...Option) *Runtime {
	return New(append([]Option{WithFixedInterval(time.Hour)}, opts...)...)
}

func instantFactory(res any) scene.FactoryFunc {
	return func(context.Context, scene.Options, any) (any, error) { return res, nil }
}

func applyWait(t *testing.T, rt *Runtime, roots []scene.Spec) {
	t.Helper()
	if err := rt.Apply(context.Background(), roots); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

// tickN drives n fixed-interval draw passes with the shared test period
func tickN(rt *Runtime, frame *int64, n int) {
	for i := 0; i < n; i++ {
		*frame++
		rt.tick(scene.FrameTime{
			T:     time.Duration(*frame) * testPeriod,
			DT:    testPeriod,
			Frame: *frame,
		})
	}
}

func closeRuntime(t *testing.T, rt *Runtime) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil && !errors.Is(err, ErrClosed) {
		t.Fatalf("Close: %v", err)
	}
}

func waitForInt(t *testing.T, what string, get func() int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for get() != want {
		if time.Now().After(deadline) {
			t.Fatalf("%s = %d, never reached %d", what, get(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func assertPanics(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, substr) {
			t.Fatalf("panic %q does not contain %q", msg, substr)
		}
	}()
	fn()
}

// TestBarrierTracksCoverage: the barrier is up iff every declared name has a
// resolved entry, re-evaluated on every mutation and every pass
func TestBarrierTracksCoverage(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	release := make(chan struct{})
	gated := func(ctx context.Context, _ scene.Options, _ any) (any, error) {
		select {
		case <-release:
			return "slow", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	err := rt.Apply(context.Background(), []scene.Spec{
		{Name: "fast", Create: instantFactory("fast")},
		{Name: "slow", Create: gated},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// One name unresolved: the barrier cannot be up
	if rt.Ready() {
		t.Fatal("Ready with an unresolved element")
	}

	close(release)
	applyWait(t, rt, []scene.Spec{
		{Name: "fast", Create: instantFactory("fast")},
		{Name: "slow", Create: gated},
	})
	if !rt.Ready() {
		t.Fatal("not Ready with all elements resolved")
	}

	elems := rt.Elements()
	if elems["fast"] != "fast" || elems["slow"] != "slow" {
		t.Errorf("Elements = %v", elems)
	}

	// Shrinking the tree keeps the barrier up when survivors are covered
	applyWait(t, rt, []scene.Spec{
		{Name: "fast", Create: instantFactory("fast")},
	})
	if !rt.Ready() {
		t.Fatal("not Ready after removing a resolved element")
	}

	// Declaring a new unresolved name drops the barrier synchronously
	stuck := make(chan struct{})
	defer close(stuck)
	err = rt.Apply(context.Background(), []scene.Spec{
		{Name: "fast", Create: instantFactory("fast")},
		{Name: "stuck", Create: func(context.Context, scene.Options, any) (any, error) {
			<-stuck
			return nil, nil
		}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rt.Ready() {
		t.Fatal("Ready immediately after declaring an unresolved element")
	}
}

// TestDrawOrderIsDeclarationPreorder: draws run in preorder on every tick
func TestDrawOrderIsDeclarationPreorder(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	var order []string
	rec := func(name string) scene.DrawFunc {
		return func(any, scene.Frame, any) { order = append(order, name) }
	}

	applyWait(t, rt, []scene.Spec{
		{Name: "root", Create: instantFactory(1), Draw: rec("root"), Children: []scene.Spec{
			{Name: "left", Create: instantFactory(2), Draw: rec("left"), Children: []scene.Spec{
				{Name: "leaf", Create: instantFactory(3), Draw: rec("leaf")},
			}},
			{Name: "right", Create: instantFactory(4), Draw: rec("right")},
		}},
	})

	var frame int64
	tickN(rt, &frame, 2)

	want := []string{
		"root", "left", "leaf", "right",
		"root", "left", "leaf", "right",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("draw order mismatch (-want +got):\n%s", diff)
	}
}

// TestAlwaysDrawsSuppressedSkips: no dependency list means every tick, an
// unchanged dependency list means never
func TestAlwaysDrawsSuppressedSkips(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	always, gated := 0, 0
	applyWait(t, rt, []scene.Spec{
		{Name: "always", Create: instantFactory(1),
			Draw: func(any, scene.Frame, any) { always++ }},
		{Name: "gated", Create: instantFactory(2), Deps: []any{1},
			Draw: func(any, scene.Frame, any) { gated++ }},
	})

	var frame int64
	tickN(rt, &frame, 3)

	if always != 3 {
		t.Errorf("always drawn %d times, want 3", always)
	}
	if gated != 0 {
		t.Errorf("gated drawn %d times, want 0", gated)
	}

	if got := rt.Stats().Counter("engine.frames").Load(); got != 3 {
		t.Errorf("engine.frames = %d, want 3", got)
	}
	if got := rt.Stats().Counter("engine.draw.skips").Load(); got != 3 {
		t.Errorf("engine.draw.skips = %d, want 3", got)
	}
}

// TestDepChangeArmsExactlyOneDraw: one dependency change produces exactly
// one draw, no matter how many ticks elapse before or after
func TestDepChangeArmsExactlyOneDraw(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	count := 0
	tree := func(x int) []scene.Spec {
		return []scene.Spec{
			{Name: "c", Create: instantFactory("c"), Deps: []any{x},
				Draw: func(any, scene.Frame, any) { count++ }},
		}
	}

	applyWait(t, rt, tree(1))

	var frame int64
	tickN(rt, &frame, 4)
	if count != 0 {
		t.Fatalf("drawn %d times before any change, want 0", count)
	}

	if err := rt.Apply(context.Background(), tree(2)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tickN(rt, &frame, 3)
	if count != 1 {
		t.Fatalf("drawn %d times after one change, want 1", count)
	}

	// Same value again: no change, no draw
	if err := rt.Apply(context.Background(), tree(2)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tickN(rt, &frame, 2)
	if count != 1 {
		t.Errorf("drawn %d times after no-op pass, want 1", count)
	}
}

// TestWhenReadyArmsAtBarrier: a dependency list holding the ready sentinel
// draws exactly once when the barrier rises
func TestWhenReadyArmsAtBarrier(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	count := 0
	tree := []scene.Spec{
		{Name: "w", Create: instantFactory(1), Deps: []any{scene.WhenReady},
			Draw: func(any, scene.Frame, any) { count++ }},
	}
	applyWait(t, rt, tree)

	var frame int64
	tickN(rt, &frame, 3)
	if count != 1 {
		t.Fatalf("drawn %d times after barrier, want 1", count)
	}

	// Identical re-declaration: sentinel compares equal, no re-arm
	if err := rt.Apply(context.Background(), tree); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tickN(rt, &frame, 2)
	if count != 1 {
		t.Errorf("drawn %d times after identical pass, want 1", count)
	}
}

// TestRemovalCleansUpOnceAndRedeclareIsFresh: removal runs the cleanup hook
// exactly once; the same name later starts a brand-new creation
func TestRemovalCleansUpOnceAndRedeclareIsFresh(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	cleanups := 0
	var creations atomic.Int64
	x := scene.Spec{
		Name: "x",
		Create: func(context.Context, scene.Options, any) (any, error) {
			creations.Add(1)
			return "x-res", nil
		},
		Cleanup: func(res any) {
			if res != "x-res" {
				t.Errorf("cleanup received %v", res)
			}
			cleanups++
		},
	}
	keeper := scene.Spec{Name: "keeper", Create: instantFactory("k")}

	applyWait(t, rt, []scene.Spec{x, keeper})
	waitForInt(t, "creations", creations.Load, 1)

	if err := rt.Apply(context.Background(), []scene.Spec{keeper}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cleanups != 1 {
		t.Fatalf("cleanups = %d after removal, want 1", cleanups)
	}
	if _, ok := rt.Elements()["x"]; ok {
		t.Fatal("entry survived removal")
	}

	// Extra passes never re-run the cleanup
	if err := rt.Apply(context.Background(), []scene.Spec{keeper}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cleanups != 1 {
		t.Fatalf("cleanups = %d after no-op pass, want 1", cleanups)
	}

	applyWait(t, rt, []scene.Spec{x, keeper})
	waitForInt(t, "creations", creations.Load, 2)
	if cleanups != 1 {
		t.Errorf("cleanups = %d after re-declare, want 1", cleanups)
	}
}

// TestFixedIntervalParentChildScenario: parent and child both draw every
// tick, child observes the parent's post-draw state within the same tick
func TestFixedIntervalParentChildScenario(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	counter := 0
	var observed []int
	var dts []time.Duration

	applyWait(t, rt, []scene.Spec{
		{Name: "a", Create: instantFactory("A"),
			Draw: func(_ any, f scene.Frame, _ any) {
				counter++
				dts = append(dts, f.Time.DT)
			},
			Children: []scene.Spec{
				{Name: "b", Create: instantFactory("B"),
					Draw: func(any, scene.Frame, any) {
						observed = append(observed, counter)
					}},
			}},
	})

	var frame int64
	tickN(rt, &frame, 3)

	if counter != 3 {
		t.Errorf("a drawn %d times, want 3", counter)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, observed); diff != "" {
		t.Errorf("b observations (-want +got):\n%s", diff)
	}
	for i, dt := range dts {
		if dt != testPeriod {
			t.Errorf("tick %d dt = %v, want %v", i+1, dt, testPeriod)
		}
	}
}

// TestDependencyScenarioExact: the full dependency-list scenario with ticks
// interleaved between passes
func TestDependencyScenarioExact(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	count := 0
	tree := func(x int) []scene.Spec {
		return []scene.Spec{
			{Name: "c", Create: instantFactory(1), Deps: []any{x},
				Draw: func(any, scene.Frame, any) { count++ }},
		}
	}

	applyWait(t, rt, tree(1))

	var frame int64
	tickN(rt, &frame, 2)
	if count != 0 {
		t.Fatalf("count = %d after 2 unchanged ticks, want 0", count)
	}

	if err := rt.Apply(context.Background(), tree(2)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tickN(rt, &frame, 1)
	if count != 1 {
		t.Fatalf("count = %d after change + 1 tick, want 1", count)
	}

	tickN(rt, &frame, 1)
	if count != 1 {
		t.Errorf("count = %d after further unchanged tick, want 1", count)
	}
}

// TestMissingDrawFailsLoudly: an entry in draw order without a draw callback
// is a scheduler bug and panics rather than being skipped
func TestMissingDrawFailsLoudly(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	rt.mu.Lock()
	rt.discovery = scene.Discovery{
		Orders: scene.Orders{Setup: []string{"x"}, Draw: []string{"x"}},
	}
	rt.table.SetOrders([]string{"x"})
	rt.table.Commit("x", 1, nil, nil, nil)
	rt.mu.Unlock()

	assertPanics(t, "draw order", func() {
		rt.tick(scene.FrameTime{Frame: 1})
	})
}

// TestNilCreateCountsTowardBarrier: declarations without a factory register
// a nil resource and still gate readiness
func TestNilCreateCountsTowardBarrier(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	var sawNil bool
	applyWait(t, rt, []scene.Spec{
		{Name: "pure", Draw: func(res any, _ scene.Frame, _ any) {
			sawNil = res == nil
		}},
		{Name: "real", Create: instantFactory("r")},
	})

	elems := rt.Elements()
	if v, ok := elems["pure"]; !ok || v != nil {
		t.Errorf("pure entry = %v, %v; want nil, true", v, ok)
	}

	var frame int64
	tickN(rt, &frame, 1)
	if !sawNil {
		t.Error("draw did not receive nil resource")
	}
}

// TestWaitReadyHonorsContext: a blocked barrier wait ends with the context
func TestWaitReadyHonorsContext(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	stuck := make(chan struct{})
	defer close(stuck)
	err := rt.Apply(context.Background(), []scene.Spec{
		{Name: "never", Create: func(context.Context, scene.Options, any) (any, error) {
			<-stuck
			return nil, nil
		}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rt.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady = %v, want deadline exceeded", err)
	}
}

// TestApplyRejectsInvalidTrees: discovery validation surfaces through Apply
func TestApplyRejectsInvalidTrees(t *testing.T) {
	rt := newTestRuntime()
	defer closeRuntime(t, rt)

	err := rt.Apply(context.Background(), []scene.Spec{
		{Name: "dup", Create: instantFactory(1)},
		{Name: "dup", Create: instantFactory(2)},
	})
	var dupErr scene.DuplicateNameError
	if !errors.As(err, &dupErr) || dupErr.Name != "dup" {
		t.Errorf("Apply = %v, want DuplicateNameError for dup", err)
	}

	err = rt.Apply(context.Background(), []scene.Spec{{Create: instantFactory(1)}})
	var emptyErr scene.EmptyNameError
	if !errors.As(err, &emptyErr) {
		t.Errorf("Apply = %v, want EmptyNameError", err)
	}
}
