package engine

import (
	"errors"
	"fmt"
)

// ErrClosed means the runtime was closed before or during the operation.
var ErrClosed = errors.New("engine: runtime closed")

// CreationError means an element's factory returned an error. The element
// stays absent from the table; no retry happens until its options change or
// it is removed and re-declared.
type CreationError struct {
	Name string
	Err  error
}

func (e CreationError) Error() string {
	return fmt.Sprintf("creating element %q: %v", e.Name, e.Err)
}

func (e CreationError) Unwrap() error { return e.Err }

// missingDrawPanic is the message raised when a name in draw order has a
// table entry without a draw callback. Draw order is derived exactly from
// which declarations requested drawing, so this is a scheduler bug and must
// fail loudly rather than be skipped.
func missingDrawPanic(name string) string {
	return fmt.Sprintf("engine: element %q is in draw order but its entry has no draw callback", name)
}
