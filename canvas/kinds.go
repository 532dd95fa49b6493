package canvas

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cadre/registry"
	"github.com/lixenwraith/cadre/scene"
)

// RegisterKinds registers the terminal kinds:
//
//	screen  - root surface owning the tcell screen. With clear: true it
//	          erases the back buffer every tick; otherwise drawn cells
//	          persist and draw-once policies keep static content visible.
//	          driver: sim selects the in-memory simulation screen.
//	box     - single-line border with an optional title
//	text    - one line of text; a string props value overrides the option
//	present - flushes the surface. Declare it as the screen's final child
//	          so it runs after every drawing sibling in the pass.
func RegisterKinds() {
	registry.Register("screen", buildScreen)
	registry.Register("box", buildBox)
	registry.Register("text", buildText)
	registry.Register("present", buildPresent)
}

func buildScreen(opts scene.Options) (scene.Spec, error) {
	spec := scene.Spec{
		Create: func(_ context.Context, opts scene.Options, _ any) (any, error) {
			screen, err := newScreen(opts.String("driver", ""))
			if err != nil {
				return nil, fmt.Errorf("canvas: creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return nil, fmt.Errorf("canvas: initializing screen: %w", err)
			}
			return &Surface{screen: screen, owns: true}, nil
		},
		Cleanup: func(res any) {
			res.(*Surface).Release()
		},
	}
	if opts.Bool("clear", false) {
		spec.Draw = func(res any, _ scene.Frame, _ any) {
			res.(*Surface).Clear()
		}
	}
	return spec, nil
}

func newScreen(driver string) (tcell.Screen, error) {
	switch driver {
	case "", "auto":
		return tcell.NewScreen()
	case "sim":
		return tcell.NewSimulationScreen("UTF-8"), nil
	default:
		return nil, fmt.Errorf("unknown screen driver %q", driver)
	}
}

func buildBox(opts scene.Options) (scene.Spec, error) {
	if opts.Int("w", 0) < 2 || opts.Int("h", 0) < 2 {
		return scene.Spec{}, errors.New("canvas: box requires w and h options of at least 2")
	}
	return scene.Spec{
		Create: surfacePassthrough("box"),
		Draw: func(res any, _ scene.Frame, _ any) {
			s := res.(*Surface)
			x, y := opts.Int("x", 0), opts.Int("y", 0)
			w, h := opts.Int("w", 0), opts.Int("h", 0)
			style := styleFrom(opts)
			s.Box(x, y, w, h, style)
			if title := opts.String("title", ""); title != "" && len(title)+2 <= w {
				s.Print(x+1, y, title, style)
			}
		},
	}, nil
}

func buildText(opts scene.Options) (scene.Spec, error) {
	return scene.Spec{
		Create: surfacePassthrough("text"),
		Draw: func(res any, _ scene.Frame, props any) {
			s := res.(*Surface)
			text := opts.String("text", "")
			if p, ok := props.(string); ok && p != "" {
				text = p
			}
			s.Print(opts.Int("x", 0), opts.Int("y", 0), text, styleFrom(opts))
		},
	}, nil
}

func buildPresent(opts scene.Options) (scene.Spec, error) {
	return scene.Spec{
		Create: surfacePassthrough("present"),
		Draw: func(res any, _ scene.Frame, _ any) {
			res.(*Surface).Show()
		},
	}, nil
}

// surfacePassthrough hands the screen ancestor's surface down to drawing
// children. Using one of these kinds outside a screen is a declaration bug.
func surfacePassthrough(kind string) scene.FactoryFunc {
	return func(_ context.Context, _ scene.Options, parent any) (any, error) {
		return scene.RequireParent[*Surface](parent, kind, "screen"), nil
	}
}

func styleFrom(opts scene.Options) tcell.Style {
	style := tcell.StyleDefault
	if fg := opts.String("fg", ""); fg != "" {
		style = style.Foreground(tcell.GetColor(fg))
	}
	if bg := opts.String("bg", ""); bg != "" {
		style = style.Background(tcell.GetColor(bg))
	}
	if opts.Bool("bold", false) {
		style = style.Bold(true)
	}
	return style
}
