package scene

import "fmt"

// RequireParent asserts that a factory was invoked inside its required parent
// scope and returns the parent resource as T. A nil parent or a type mismatch
// is a declaration bug (a child kind used outside its parent), not an
// environment failure, so it panics with a descriptive message rather than
// proceeding with undefined behavior.
func RequireParent[T any](parent any, childKind, parentKind string) T {
	if parent == nil {
		panic(fmt.Sprintf("scene: %s must be declared inside %s (no parent resource)", childKind, parentKind))
	}
	typed, ok := parent.(T)
	if !ok {
		panic(fmt.Sprintf("scene: %s declared inside wrong parent scope: want %s resource, got %T", childKind, parentKind, parent))
	}
	return typed
}

// ElementAs returns the named resource from an elements snapshot cast to T.
// Returns the zero value and false if absent or of a different type.
func ElementAs[T any](e Elements, name string) (T, bool) {
	var zero T
	v, ok := e[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// MustElement returns the named resource from an elements snapshot or panics.
// Useful inside setup callbacks, which only run once every element exists.
func MustElement[T any](e Elements, name string) T {
	typed, ok := ElementAs[T](e, name)
	if !ok {
		panic(fmt.Sprintf("scene: element %q missing or not %T in snapshot", name, typed))
	}
	return typed
}
