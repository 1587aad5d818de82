package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/reflow-ui/reflow/pkg/devtools"
	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/reconcile"
)

type profile struct {
	Name    string
	Effects int
	Rounds  int
	Writes  int
	List    int
}

var profiles = map[string]profile{
	"fast":     {Name: "fast", Effects: 100, Rounds: 100, Writes: 10, List: 100},
	"standard": {Name: "standard", Effects: 1000, Rounds: 500, Writes: 20, List: 1000},
	"stress":   {Name: "stress", Effects: 5000, Rounds: 2000, Writes: 50, List: 10000},
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reflow-bench",
		Short: "Benchmark and stress the Reflow reactive engine",
	}
	root.AddCommand(stormCmd(), listCmd(), serveCmd())
	return root
}

func resolveProfile(name string) (profile, error) {
	p, ok := profiles[name]
	if !ok {
		return profile{}, fmt.Errorf("unknown profile %q (have fast, standard, stress)", name)
	}
	return p, nil
}

func stormCmd() *cobra.Command {
	var profileName string
	cmd := &cobra.Command{
		Use:   "storm",
		Short: "Batched write storm across many effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profileName)
			if err != nil {
				return err
			}
			return runStorm(cmd.Context(), p, nil)
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "standard", "benchmark profile")
	return cmd
}

func runStorm(ctx context.Context, p profile, eng *reactive.Engine) error {
	if eng == nil {
		eng = reactive.New()
	}

	obj := eng.Wrap(map[string]any{}).(*reactive.Object)
	for i := 0; i < p.Effects; i++ {
		key := fmt.Sprintf("cell-%d", i%p.Writes)
		eng.CreateEffect(func() {
			_ = obj.Get(key)
		})
	}

	start := time.Now()
	for round := 0; round < p.Rounds; round++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		eng.Batch(func() {
			for w := 0; w < p.Writes; w++ {
				obj.Set(fmt.Sprintf("cell-%d", w), round*p.Writes+w)
			}
		})
		if err := eng.NextTick(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	stats := eng.Stats()
	fmt.Printf("profile=%s rounds=%d effects=%d writes/round=%d\n", p.Name, p.Rounds, p.Effects, p.Writes)
	fmt.Printf("elapsed=%s effect_runs=%d triggers=%d flush_passes=%d\n",
		elapsed.Round(time.Millisecond), stats.EffectRuns, stats.Triggers, stats.FlushPasses)
	fmt.Printf("rounds/sec=%.0f\n", float64(p.Rounds)/elapsed.Seconds())
	return nil
}

func listCmd() *cobra.Command {
	var profileName string
	var seed int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Keyed-list reconciliation churn",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profileName)
			if err != nil {
				return err
			}
			return runList(p, seed)
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "standard", "benchmark profile")
	cmd.Flags().Int64Var(&seed, "seed", 1, "shuffle seed")
	return cmd
}

func runList(p profile, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	r := reconcile.New()

	items := make([]any, p.List)
	for i := range items {
		items[i] = i
	}

	var creates, moves, removes int
	cb := reconcile.Callbacks{
		Key:    func(item any, _ int) reconcile.Key { return item },
		Create: func(item any, _ int) any { creates++; return item },
		Update: func(_, _ any, _ int) {},
		Remove: func(_ any) { removes++ },
		Move:   func(_, _ any) { moves++ },
	}

	state := reconcile.State{}
	start := time.Now()
	for round := 0; round < p.Rounds; round++ {
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
		state = r.Reconcile(state, items, cb)
	}
	elapsed := time.Since(start)

	fmt.Printf("profile=%s rounds=%d list=%d\n", p.Name, p.Rounds, p.List)
	fmt.Printf("elapsed=%s creates=%d moves=%d removes=%d\n",
		elapsed.Round(time.Millisecond), creates, moves, removes)
	fmt.Printf("reconciles/sec=%.0f\n", float64(p.Rounds)/elapsed.Seconds())
	return nil
}

func serveCmd() *cobra.Command {
	var profileName string
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a storm scenario with the devtools server attached",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profileName)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			dt := devtools.New()
			eng := reactive.New(
				reactive.WithMetrics(reactive.NewMetrics()),
				reactive.WithEventSink(dt.Sink("bench")),
			)
			dt.Register("bench", eng)

			go func() {
				for ctx.Err() == nil {
					if err := runStorm(ctx, p, eng); err != nil && ctx.Err() == nil {
						fmt.Fprintln(os.Stderr, "storm error:", err)
						return
					}
				}
			}()

			return dt.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "fast", "benchmark profile")
	cmd.Flags().StringVar(&addr, "addr", ":6900", "devtools listen address")
	return cmd
}
