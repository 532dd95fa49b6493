package engine

// Policy is the tri-state redraw gate carried by every table entry. The zero
// value is PolicySuppressed: an entry whose policy was never set draws
// nothing rather than drawing every tick.
type Policy uint8

const (
	// PolicySuppressed skips drawing until explicitly re-armed by a
	// dependency change or a barrier rise
	PolicySuppressed Policy = iota

	// PolicyOnce draws on the next tick only, then flips to PolicySuppressed
	PolicyOnce

	// PolicyAlways draws on every tick unconditionally
	PolicyAlways
)

func (p Policy) String() string {
	switch p {
	case PolicySuppressed:
		return "suppressed"
	case PolicyOnce:
		return "once"
	case PolicyAlways:
		return "always"
	default:
		return "invalid"
	}
}

// initialPolicy is the policy a fresh registration starts with: elements
// without a dependency list draw every tick, elements with one stay quiet
// until armed
func initialPolicy(deps []any) Policy {
	if deps == nil {
		return PolicyAlways
	}
	return PolicySuppressed
}
