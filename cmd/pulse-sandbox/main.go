// Command pulse-sandbox exercises the fixed-interval clock without a
// terminal: a small code-declared tree ticks a set number of frames,
// printing the deterministic clock values, then dumps the lifecycle event
// log and engine counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cadre/engine"
	"github.com/lixenwraith/cadre/scene"
)

var (
	ticksFlag  = flag.Int("ticks", 12, "Frames to run before closing")
	periodFlag = flag.Duration("period", 50*time.Millisecond, "Fixed frame period")
)

type pulse struct {
	draws atomic.Int64
}

func buildTree(p *pulse) []scene.Spec {
	return []scene.Spec{{
		Name: "pulse",
		Create: func(ctx context.Context, opts scene.Options, parent any) (any, error) {
			return p, nil
		},
		Draw: func(res any, f scene.Frame, props any) {
			n := res.(*pulse).draws.Add(1)
			fmt.Printf("tick %3d  t=%-8v dt=%-6v draws=%d\n", f.Time.Frame, f.Time.T, f.Time.DT, n)
		},
		Children: []scene.Spec{{
			Name: "echo",
			Deps: []any{scene.WhenReady},
			Setup: func(res any, env scene.Env) any {
				return fmt.Sprintf("%d elements ready", len(env.Elements))
			},
			Draw: func(res any, f scene.Frame, props any) {
				fmt.Printf("          %s at frame %d\n", props, f.Time.Frame)
			},
		}},
	}}
}

func main() {
	flag.Parse()

	p := &pulse{}
	rt := engine.New(engine.WithFixedInterval(*periodFlag))

	if err := rt.Apply(context.Background(), buildTree(p)); err != nil {
		fmt.Fprintf(os.Stderr, "apply failed: %v\n", err)
		os.Exit(1)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.WaitReady(waitCtx); err != nil {
		fmt.Fprintf(os.Stderr, "tree never became ready: %v\n", err)
		os.Exit(1)
	}

	for p.draws.Load() < int64(*ticksFlag) {
		time.Sleep(*periodFlag / 4)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}

	fmt.Println("--- events ---")
	for _, ev := range rt.Events().Consume() {
		fmt.Printf("%6d  %-16s %s\n", ev.Frame, ev.Type, ev.Name)
	}

	fmt.Println("--- counters ---")
	snap := rt.Stats().Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-28s %v\n", k, snap[k])
	}
}
