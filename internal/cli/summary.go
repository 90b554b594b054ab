package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/habitkit/go-habitkit/internal/client"
)

// SummaryCmd creates the summary command. Episodes and strategies are
// fetched in parallel; both requests share the client's token manager, so
// an expired token still costs a single refresh round-trip.
func SummaryCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show episode and strategy totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			return runSummary(cmd, env, c)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

func runSummary(cmd *cobra.Command, env *Env, c *client.Client) error {
	var (
		instances  []client.Instance
		strategies []client.Strategy
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		instances, err = c.ListInstances(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		strategies, err = c.ListStrategies(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	resisted := 0
	for _, in := range instances {
		if in.Resisted {
			resisted++
		}
	}
	active := 0
	totalUses := 0
	for _, s := range strategies {
		if s.Status == client.StrategyActive {
			active++
		}
		totalUses += s.UseCount
	}

	fmt.Fprintf(env.Stdout, "episodes:   %d (%d resisted)\n", len(instances), resisted)
	fmt.Fprintf(env.Stdout, "strategies: %d (%d active, %d total uses)\n", len(strategies), active, totalUses)
	return nil
}
