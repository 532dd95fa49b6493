package engine

import (
	"github.com/lixenwraith/cadre/scene"
)

// Entry is one registered element. An entry exists in the table iff its
// resource has successfully resolved; absence means "not yet created" or
// "torn down". Fields are mutated only through Table operations, under the
// owning runtime's lock.
type Entry struct {
	Resource any
	Draw     scene.DrawFunc
	Policy   Policy
	Props    any
	Cleanup  scene.CleanupFunc
}

// Table is the registration table: the single shared mapping from element
// name to its live entry, plus the expected name set the barrier is computed
// against. The table carries no lock of its own; every mutation happens under
// the runtime lock, and every mutation reports coverage to the observer
// synchronously before returning.
type Table struct {
	entries map[string]*Entry

	// expected is the current setup order; coverage means every expected
	// name has an entry
	expected []string

	// OnCoverage receives the coverage result after every mutation, on the
	// mutating goroutine. Set once during wiring, before first use.
	OnCoverage func(covered bool)
}

// NewTable creates an empty table with no expected names
func NewTable() *Table {
	return &Table{
		entries: make(map[string]*Entry),
	}
}

// SetOrders installs the expected name set for the current declaration pass
func (t *Table) SetOrders(setupOrder []string) {
	t.expected = setupOrder
	t.report()
}

// Commit inserts the entry for a freshly resolved resource. The entry starts
// with the given callbacks and the initial policy derived from deps.
func (t *Table) Commit(name string, resource any, draw scene.DrawFunc, cleanup scene.CleanupFunc, deps []any) {
	t.entries[name] = &Entry{
		Resource: resource,
		Draw:     draw,
		Policy:   initialPolicy(deps),
		Cleanup:  cleanup,
	}
	t.report()
}

// Remove deletes the entry and returns it so the caller can run its cleanup.
// Returns nil if no entry exists.
func (t *Table) Remove(name string) *Entry {
	e, ok := t.entries[name]
	if !ok {
		t.report()
		return nil
	}
	delete(t.entries, name)
	t.report()
	return e
}

// SetDraw replaces the draw callback without touching resource or policy.
// Declarations rebuild their closures every render pass, so this runs on
// every pass for every registered element.
func (t *Table) SetDraw(name string, draw scene.DrawFunc) {
	if e, ok := t.entries[name]; ok {
		e.Draw = draw
	}
	t.report()
}

// SetCleanup replaces the cleanup hook without touching resource or policy
func (t *Table) SetCleanup(name string, cleanup scene.CleanupFunc) {
	if e, ok := t.entries[name]; ok {
		e.Cleanup = cleanup
	}
	t.report()
}

// SetPolicy overwrites the entry's redraw policy
func (t *Table) SetPolicy(name string, p Policy) {
	if e, ok := t.entries[name]; ok {
		e.Policy = p
	}
	t.report()
}

// Arm schedules one future draw by setting PolicyOnce. Arming an entry that
// is already armed collapses into the same single pending draw; the flip back
// to PolicySuppressed happens in the draw pass right after the invocation.
func (t *Table) Arm(name string) {
	if e, ok := t.entries[name]; ok {
		e.Policy = PolicyOnce
	}
	t.report()
}

// SetProps stores a setup callback's return value for subsequent draws
func (t *Table) SetProps(name string, props any) {
	if e, ok := t.entries[name]; ok {
		e.Props = props
	}
	t.report()
}

// Get returns the live entry for name
func (t *Table) Get(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Has reports whether name has a resolved entry
func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Len returns the number of registered entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Elements snapshots every registered resource keyed by name
func (t *Table) Elements() scene.Elements {
	snap := make(scene.Elements, len(t.entries))
	for name, e := range t.entries {
		snap[name] = e.Resource
	}
	return snap
}

// Covered reports whether every expected name currently has an entry.
// An empty expectation is vacuously covered.
func (t *Table) Covered() bool {
	for _, name := range t.expected {
		if _, ok := t.entries[name]; !ok {
			return false
		}
	}
	return true
}

// report recomputes coverage and hands it to the observer. Runs synchronously
// inside every mutation so barrier transitions happen before the mutator
// returns, in mutation order.
func (t *Table) report() {
	if t.OnCoverage != nil {
		t.OnCoverage(t.Covered())
	}
}
