package scene

import "fmt"

// DuplicateNameError means the same component name appears more than once in
// a declared tree. Names are lifecycle identities and must be unique.
type DuplicateNameError struct {
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("scene: duplicate component name: %q", e.Name)
}

// EmptyNameError means a declaration was given without a name. Parent is the
// enclosing component's name, or empty for a root declaration.
type EmptyNameError struct {
	Parent string
}

func (e EmptyNameError) Error() string {
	if e.Parent == "" {
		return "scene: component declared with empty name at tree root"
	}
	return fmt.Sprintf("scene: component declared with empty name under %q", e.Parent)
}
