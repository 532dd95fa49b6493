package asset

import (
	"context"
	"errors"

	"github.com/lixenwraith/cadre/registry"
	"github.com/lixenwraith/cadre/scene"
)

// RegisterKinds registers the asset-backed kinds against one store:
//
//	file - resource is the file's contents ([]byte), loaded through the
//	       store's dedup cache. Requires a path option.
func RegisterKinds(store *Store) {
	registry.Register("file", func(opts scene.Options) (scene.Spec, error) {
		if opts.String("path", "") == "" {
			return scene.Spec{}, errors.New("asset: file kind requires a path option")
		}
		return scene.Spec{
			Create: func(_ context.Context, opts scene.Options, _ any) (any, error) {
				return store.Load(opts.String("path", ""))
			},
		}, nil
	})
}
