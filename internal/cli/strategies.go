package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habitkit/go-habitkit/internal/client"
)

// StrategiesCmd creates the strategies command group.
func StrategiesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Manage coping strategies",
	}

	cmd.AddCommand(strategiesListCmd(env))
	cmd.AddCommand(strategiesAddCmd(env))
	cmd.AddCommand(strategiesToggleCmd(env))
	cmd.AddCommand(strategiesUseCmd(env))
	cmd.AddCommand(strategiesDeleteCmd(env))

	return cmd
}

func strategiesListCmd(env *Env) *cobra.Command {
	var (
		cfgPath   string
		triggerID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coping strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}

			var (
				strategies []client.Strategy
				lerr       error
			)
			if triggerID != "" {
				strategies, lerr = c.StrategiesByTrigger(cmd.Context(), triggerID)
			} else {
				strategies, lerr = c.ListStrategies(cmd.Context())
			}
			if lerr != nil {
				return lerr
			}

			for _, s := range strategies {
				fmt.Fprintf(env.Stdout, "%s  [%s]  used %d  %s\n", s.ID, s.Status, s.UseCount, s.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&triggerID, "trigger", "", "only strategies for this trigger")
	return cmd
}

func strategiesAddCmd(env *Env) *cobra.Command {
	var (
		cfgPath string
		params  client.StrategyParams
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a coping strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			params.Name = args[0]
			created, err := c.CreateStrategy(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "added %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&params.Description, "description", "", "what to do and when")
	cmd.Flags().StringVar(&params.Category, "category", "", "strategy category")
	cmd.Flags().StringVar(&params.TriggerID, "trigger", "", "associated trigger")
	return cmd
}

func strategiesToggleCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a strategy between active and archived",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			updated, err := c.ToggleStrategyStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "%s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

func strategiesUseCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Record one use of a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			updated, err := c.IncrementStrategyUseCount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "%s used %d times\n", updated.ID, updated.UseCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

func strategiesDeleteCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			if err := c.DeleteStrategy(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}
