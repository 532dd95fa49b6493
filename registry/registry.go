// Package registry maps manifest kind names to component builders. Domain
// packages register their kinds at startup; the manifest loader resolves
// declared elements against them.
package registry

import (
	"sort"
	"sync"

	"github.com/lixenwraith/cadre/scene"
)

// Builder produces the lifecycle callbacks for one element of a kind. The
// loader fills Name, Options and Children on the returned spec; builders
// supply Create, Setup, Draw, Cleanup and Deps.
type Builder func(opts scene.Options) (scene.Spec, error)

var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// Register adds a builder under a kind name, replacing any previous one
func Register(kind string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[kind] = b
}

// Get retrieves a builder by kind name
func Get(kind string) (Builder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	b, ok := builders[kind]
	return b, ok
}

// Names returns all registered kind names, sorted
func Names() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
