// FILE: main.go
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"

	"github.com/lixenwraith/cadre/canvas"
	"github.com/lixenwraith/cadre/core"
	"github.com/lixenwraith/cadre/engine"
	"github.com/lixenwraith/cadre/scene"
)

// Minimal code-declared scene: one screen with a scrolling banner and a
// clock readout, mounted on the continuous frame clock. Keys 1-9 re-apply
// the tree with a different speed option, which recreates the marquee
// while the screen element survives untouched.

const (
	framePeriod = 30 * time.Millisecond
	bannerText  = "  cadre · declarative terminal scenes  "
	defaultRate = 4
)

type marquee struct {
	surface *canvas.Surface
	step    time.Duration
}

func buildScene(speed int) []scene.Spec {
	return []scene.Spec{{
		Name: "screen",
		Create: func(ctx context.Context, opts scene.Options, parent any) (any, error) {
			screen, err := tcell.NewScreen()
			if err != nil {
				return nil, err
			}
			if err := screen.Init(); err != nil {
				return nil, err
			}
			return canvas.NewSurface(screen), nil
		},
		Cleanup: func(res any) {
			res.(*canvas.Surface).Screen().Fini()
		},
		Draw: func(res any, f scene.Frame, props any) {
			res.(*canvas.Surface).Clear()
		},
		Children: []scene.Spec{
			{
				Name:    "banner",
				Options: scene.Options{"speed": speed},
				Create: func(ctx context.Context, opts scene.Options, parent any) (any, error) {
					s := scene.RequireParent[*canvas.Surface](parent, "banner", "screen")
					rate := opts.Int("speed", defaultRate)
					return &marquee{surface: s, step: 200 * time.Millisecond / time.Duration(rate)}, nil
				},
				Draw: func(res any, f scene.Frame, props any) {
					m := res.(*marquee)
					w, h := m.surface.Size()
					span := w + len(bannerText)
					if span <= 0 {
						return
					}
					x := w - int(f.Time.T/m.step)%span
					style := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
					m.surface.Print(x, h/2, bannerText, style)
				},
			},
			{
				Name: "clock",
				Create: func(ctx context.Context, opts scene.Options, parent any) (any, error) {
					return scene.RequireParent[*canvas.Surface](parent, "clock", "screen"), nil
				},
				Draw: func(res any, f scene.Frame, props any) {
					s := res.(*canvas.Surface)
					_, h := s.Size()
					line := fmt.Sprintf("t=%6.2fs  frame=%-6d  [1-9] speed  [p] pause  [q] quit",
						f.Time.T.Seconds(), f.Time.Frame)
					s.Print(1, h-2, line, tcell.StyleDefault.Foreground(tcell.ColorGray))
				},
			},
			{
				Name: "present",
				Create: func(ctx context.Context, opts scene.Options, parent any) (any, error) {
					return scene.RequireParent[*canvas.Surface](parent, "present", "screen"), nil
				},
				Draw: func(res any, f scene.Frame, props any) {
					res.(*canvas.Surface).Show()
				},
			},
		},
	}}
}

func pollKeys(rt *engine.Runtime, screen tcell.Screen, done chan<- struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				close(done)
				return
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				close(done)
				return
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
				if rt.Paused() {
					rt.Resume()
				} else {
					rt.Pause()
				}
			case ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9':
				speed := int(ev.Rune() - '0')
				if err := rt.Apply(context.Background(), buildScene(speed)); err != nil {
					close(done)
					return
				}
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal")
		os.Exit(1)
	}

	core.SetCrashHandler(func(r any) {
		canvas.EmergencyReset(os.Stdout)
		fmt.Fprintf(os.Stderr, "\nCRASH DETECTED: %v\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
		os.Exit(1)
	})

	rt := engine.New(engine.WithFrameRate(framePeriod))

	if err := rt.Apply(context.Background(), buildScene(defaultRate)); err != nil {
		fmt.Fprintf(os.Stderr, "apply failed: %v\n", err)
		os.Exit(1)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.WaitReady(waitCtx); err != nil {
		fmt.Fprintf(os.Stderr, "scene never became ready: %v\n", err)
		os.Exit(1)
	}

	surface, ok := scene.ElementAs[*canvas.Surface](rt.Elements(), "screen")
	if !ok {
		fmt.Fprintln(os.Stderr, "screen element missing after ready")
		os.Exit(1)
	}

	done := make(chan struct{})
	core.Go(func() { pollKeys(rt, surface.Screen(), done) })

	<-done

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
}
