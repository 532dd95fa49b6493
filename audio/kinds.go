package audio

import (
	"context"
	"errors"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/cadre/engine"
	"github.com/lixenwraith/cadre/registry"
	"github.com/lixenwraith/cadre/scene"
)

// RegisterKinds registers the sound kinds:
//
//	context - root audio engine; a failed speaker degrades to silent mode
//	          instead of failing the mount. Options: rate.
//	tone    - looping tone inside a context. Options: freq (required),
//	          volume (base-2 exponent, 0 is unity), paused.
func RegisterKinds() {
	registry.Register("context", buildContext)
	registry.Register("tone", buildTone)
}

func buildContext(opts scene.Options) (scene.Spec, error) {
	return scene.Spec{
		Create: func(_ context.Context, opts scene.Options, _ any) (any, error) {
			eng := NewEngine(beep.SampleRate(opts.Int("rate", int(DefaultSampleRate))))
			if err := eng.Start(); err != nil {
				// A missing device is an environment fact, not a mount
				// failure
				engine.Logger().Warn("audio unavailable, continuing silent", "error", err)
			}
			return eng, nil
		},
		Cleanup: func(res any) {
			res.(*Engine).Stop()
		},
	}, nil
}

func buildTone(opts scene.Options) (scene.Spec, error) {
	if opts.Float("freq", 0) <= 0 {
		return scene.Spec{}, errors.New("audio: tone requires a positive freq option")
	}
	return scene.Spec{
		Create: func(_ context.Context, opts scene.Options, parent any) (any, error) {
			eng := scene.RequireParent[*Engine](parent, "tone", "context")
			voice := eng.PlayTone(opts.Float("freq", 440), opts.Float("volume", 0))
			if opts.Bool("paused", false) {
				voice.SetPaused(true)
			}
			return voice, nil
		},
		Cleanup: func(res any) {
			res.(*Voice).Stop()
		},
	}, nil
}
