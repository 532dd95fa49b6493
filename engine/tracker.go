package engine

// Tracker owns the all-ready barrier: a single boolean derived from table
// coverage, with explicit edge hooks. Observe is the state machine's
// transition function; it runs synchronously on the mutating goroutine, under
// the runtime lock, so transitions happen in mutation order.
type Tracker struct {
	ready bool

	// OnUp fires on every false -> true transition. The table is complete
	// at that instant; the hook takes the setup snapshot and starts the
	// driver.
	OnUp func()

	// OnDown fires on every true -> false transition (an expected element
	// vanished or a new declaration is still pending). Survivors keep their
	// entries; the next rise re-runs every setup.
	OnDown func()
}

// NewTracker creates a tracker with the barrier down
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe applies the latest coverage result and fires at most one edge hook
func (tr *Tracker) Observe(covered bool) {
	if covered == tr.ready {
		return
	}
	tr.ready = covered
	if covered {
		if tr.OnUp != nil {
			tr.OnUp()
		}
	} else {
		if tr.OnDown != nil {
			tr.OnDown()
		}
	}
}

// Ready returns the current barrier state
func (tr *Tracker) Ready() bool {
	return tr.ready
}
