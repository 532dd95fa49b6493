// Package manifest loads declared element trees from YAML and resolves
// their kinds against the builder registry.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/cadre/registry"
	"github.com/lixenwraith/cadre/scene"
)

// Element is one declared component in a manifest document. An element
// without a kind is a plain grouping node: it registers a nil resource and
// draws nothing. In deps, the string "@ready" stands for the ready sentinel
// (one draw when the barrier rises).
type Element struct {
	Name     string         `yaml:"name"`
	Kind     string         `yaml:"kind"`
	Options  map[string]any `yaml:"options"`
	Deps     []any          `yaml:"deps"`
	Children []Element      `yaml:"children"`
}

// Document is the root of a manifest file
type Document struct {
	Elements []Element `yaml:"elements"`
}

// UnknownKindError means a declared kind has no registered builder
type UnknownKindError struct {
	Name string
	Kind string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("manifest: element %q declares unknown kind %q", e.Name, e.Kind)
}

// Parse decodes one manifest document
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return doc, nil
}

// Load reads and decodes a manifest file
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Build resolves every element's kind and assembles the declaration tree
func (d Document) Build() ([]scene.Spec, error) {
	return buildElements(d.Elements)
}

func buildElements(els []Element) ([]scene.Spec, error) {
	if len(els) == 0 {
		return nil, nil
	}
	specs := make([]scene.Spec, 0, len(els))
	for _, el := range els {
		spec, err := buildElement(el)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func buildElement(el Element) (scene.Spec, error) {
	opts := scene.Options(el.Options)

	var spec scene.Spec
	if el.Kind != "" {
		builder, ok := registry.Get(el.Kind)
		if !ok {
			return scene.Spec{}, UnknownKindError{Name: el.Name, Kind: el.Kind}
		}
		built, err := builder(opts)
		if err != nil {
			return scene.Spec{}, fmt.Errorf("building element %q (kind %q): %w", el.Name, el.Kind, err)
		}
		spec = built
	}

	spec.Name = el.Name
	spec.Options = opts
	if el.Deps != nil {
		// A declared list wins over the builder's default, including the
		// empty list (draw only when armed)
		spec.Deps = translateDeps(el.Deps)
	}

	children, err := buildElements(el.Children)
	if err != nil {
		return scene.Spec{}, err
	}
	spec.Children = children
	return spec, nil
}

// translateDeps maps the @ready marker string to the ready sentinel so
// documents can declare draw-once-at-barrier elements
func translateDeps(deps []any) []any {
	out := make([]any, len(deps))
	for i, d := range deps {
		if s, ok := d.(string); ok && s == "@ready" {
			out[i] = scene.WhenReady
			continue
		}
		out[i] = d
	}
	return out
}
