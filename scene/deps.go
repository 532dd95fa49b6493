package scene

import "reflect"

// DepsEqual reports whether two dependency lists are shallowly equal:
// same length and pairwise equal values by position. Values of
// non-comparable dynamic types (slices, maps, funcs) never compare equal;
// declare comparable values (numbers, strings, bools, pointers) for stable
// suppression.
func DepsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !shallowEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HasWhenReady reports whether the dependency list declares the
// barrier-completion arming transition.
func HasWhenReady(deps []any) bool {
	for _, d := range deps {
		if _, ok := d.(readyMarker); ok {
			return true
		}
	}
	return false
}

func shallowEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	tx, ty := reflect.TypeOf(x), reflect.TypeOf(y)
	if tx != ty {
		return false
	}
	if !tx.Comparable() {
		return false
	}
	return x == y
}
