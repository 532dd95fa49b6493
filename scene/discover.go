package scene

// Orders are the two ordered name sequences derived from one declared tree.
// Setup lists every name in preorder (parent before child); Draw is the
// subsequence of names whose declaration carries a draw callback. Draw order
// is the contract for inter-component drawing dependencies: a component that
// must draw after another is declared after it.
type Orders struct {
	Setup []string
	Draw  []string
}

// Discovery is the result of one tree walk: the orders plus per-name lookup
// tables the lifecycle needs.
type Discovery struct {
	Orders Orders

	// Specs maps each declared name to its declaration for this pass.
	Specs map[string]Spec

	// Parent maps each declared name to its parent's name, or "" for roots.
	Parent map[string]string
}

// Discover walks the declared tree in preorder and produces the pass's
// Discovery. It is a pure function of the declared tree: same declarations,
// same result. Names must be non-empty and unique across the whole tree.
func Discover(roots []Spec) (Discovery, error) {
	d := Discovery{
		Specs:  make(map[string]Spec, len(roots)),
		Parent: make(map[string]string, len(roots)),
	}

	var walk func(specs []Spec, parent string) error
	walk = func(specs []Spec, parent string) error {
		for _, s := range specs {
			if s.Name == "" {
				return EmptyNameError{Parent: parent}
			}
			if _, exists := d.Specs[s.Name]; exists {
				return DuplicateNameError{Name: s.Name}
			}

			d.Specs[s.Name] = s
			d.Parent[s.Name] = parent
			d.Orders.Setup = append(d.Orders.Setup, s.Name)
			if s.HasDraw() {
				d.Orders.Draw = append(d.Orders.Draw, s.Name)
			}

			if err := walk(s.Children, s.Name); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(roots, ""); err != nil {
		return Discovery{}, err
	}
	return d, nil
}

// Removed returns the names present in prev but absent from next, in prev's
// reverse setup order so callers tear children down before their parents.
func Removed(prev, next Discovery) []string {
	var gone []string
	for i := len(prev.Orders.Setup) - 1; i >= 0; i-- {
		name := prev.Orders.Setup[i]
		if _, ok := next.Specs[name]; !ok {
			gone = append(gone, name)
		}
	}
	return gone
}
