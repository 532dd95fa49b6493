// Command cadre-demo mounts a manifest-declared terminal scene, with sound,
// and drives it on the continuous frame clock until q or ctrl-c.
//
// Without -manifest it runs a built-in static scene that draws once at the
// readiness barrier and keeps a quiet hum playing. With -sim it renders to
// the in-memory simulation screen and prints the final cell grid, which
// works on machines without a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"

	"github.com/lixenwraith/cadre/asset"
	"github.com/lixenwraith/cadre/audio"
	"github.com/lixenwraith/cadre/canvas"
	"github.com/lixenwraith/cadre/core"
	"github.com/lixenwraith/cadre/engine"
	"github.com/lixenwraith/cadre/manifest"
	"github.com/lixenwraith/cadre/scene"
)

var (
	manifestFlag = flag.String("manifest", "", "Path to a scene manifest; empty runs the built-in demo scene")
	simFlag      = flag.Bool("sim", false, "Render to the in-memory simulation screen (headless)")
	rateFlag     = flag.Duration("rate", 33*time.Millisecond, "Frame period")
	forFlag      = flag.Duration("for", 0, "Exit after this duration; 0 runs until q or ctrl-c")
	logFlag      = flag.String("log", "", "Write structured engine logs to this file")
	statsFlag    = flag.Bool("stats", false, "Print engine counters and the event log on exit")
)

const builtinManifest = `
elements:
  - name: main
    kind: screen
    children:
      - name: frame
        kind: box
        deps: ["@ready"]
        options: {x: 2, y: 1, w: 46, h: 8, title: " cadre ", fg: teal}
      - name: caption
        kind: text
        deps: ["@ready"]
        options: {x: 5, y: 3, text: "declarative scene, drawn once at ready", fg: white, bold: true}
      - name: hint
        kind: text
        deps: ["@ready"]
        options: {x: 5, y: 5, text: "[p] pause   [m] mute   [q] quit", fg: gray}
      - name: flush
        kind: present
  - name: sound
    kind: context
    children:
      - name: hum
        kind: tone
        options: {freq: 110, volume: -3}
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			crashDump(r)
		}
	}()

	flag.Parse()

	if !*simFlag && !termStdout() {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal; use -sim for headless rendering")
		os.Exit(1)
	}

	if *logFlag != "" {
		f, err := os.Create(*logFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		engine.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Engine goroutines report panics here; restore the terminal before the
	// stack trace prints
	core.SetCrashHandler(crashDump)

	canvas.RegisterKinds()
	audio.RegisterKinds()
	asset.RegisterKinds(asset.NewStore(assetRoot()))

	doc, err := loadManifest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading manifest: %v\n", err)
		os.Exit(1)
	}
	if *simFlag {
		forceSimDriver(doc.Elements)
	}

	roots, err := doc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building scene: %v\n", err)
		os.Exit(1)
	}

	rt := engine.New(engine.WithFrameRate(*rateFlag))

	if err := rt.Apply(context.Background(), roots); err != nil {
		fmt.Fprintf(os.Stderr, "apply failed: %v\n", err)
		os.Exit(1)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.WaitReady(waitCtx); err != nil {
		fmt.Fprintf(os.Stderr, "scene never became ready: %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	surface, hasScreen := firstSurface(rt.Elements())
	if hasScreen && !*simFlag {
		core.Go(func() { pollKeys(rt, surface.Screen(), done) })
	}

	runFor := *forFlag
	if *simFlag && runFor == 0 {
		runFor = 2 * time.Second
	}

	select {
	case <-done:
	case <-deadline(runFor):
	}

	if *simFlag && hasScreen {
		printSimGrid(surface.Screen())
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}

	if *statsFlag {
		printStats(rt)
	}
}

func termStdout() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func crashDump(r any) {
	canvas.EmergencyReset(os.Stdout)
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCADRE-DEMO CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Exit(1)
}

func assetRoot() string {
	if *manifestFlag != "" {
		return filepath.Dir(*manifestFlag)
	}
	return "."
}

func loadManifest() (manifest.Document, error) {
	if *manifestFlag == "" {
		return manifest.Parse([]byte(builtinManifest))
	}
	return manifest.Load(*manifestFlag)
}

// forceSimDriver rewrites every screen element to the simulation driver so
// the same manifest runs headless
func forceSimDriver(els []manifest.Element) {
	for i := range els {
		if els[i].Kind == "screen" {
			if els[i].Options == nil {
				els[i].Options = map[string]any{}
			}
			els[i].Options["driver"] = "sim"
		}
		forceSimDriver(els[i].Children)
	}
}

// firstSurface finds the first mounted screen surface, by sorted element
// name so repeated runs pick the same one
func firstSurface(els scene.Elements) (*canvas.Surface, bool) {
	names := make([]string, 0, len(els))
	for name := range els {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s, ok := els[name].(*canvas.Surface); ok {
			return s, true
		}
	}
	return nil, false
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
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
				if voice, ok := scene.ElementAs[*audio.Voice](rt.Elements(), "hum"); ok {
					voice.SetPaused(!voice.Paused())
				}
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// deadline returns a channel that fires after d, or nil (never fires) when
// d is zero
func deadline(d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return time.After(d)
}

func printSimGrid(screen tcell.Screen) {
	sim, ok := screen.(tcell.SimulationScreen)
	if !ok {
		return
	}
	cells, w, h := sim.GetContents()
	for y := 0; y < h; y++ {
		line := make([]rune, w)
		for x := 0; x < w; x++ {
			line[x] = ' '
			if runes := cells[y*w+x].Runes; len(runes) > 0 {
				line[x] = runes[0]
			}
		}
		fmt.Println(string(line))
	}
}

func printStats(rt *engine.Runtime) {
	snap := rt.Stats().Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("--- counters ---")
	for _, k := range keys {
		fmt.Printf("%-28s %v\n", k, snap[k])
	}

	fmt.Println("--- events ---")
	for _, ev := range rt.Events().Consume() {
		if ev.Err != nil {
			fmt.Printf("%6d  %-16s %s: %v\n", ev.Frame, ev.Type, ev.Name, ev.Err)
			continue
		}
		fmt.Printf("%6d  %-16s %s\n", ev.Frame, ev.Type, ev.Name)
	}
}
