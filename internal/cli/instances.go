package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/habitkit/go-habitkit/internal/client"
)

// InstancesCmd creates the instances command group.
func InstancesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instances",
		Short: "Manage logged episodes",
	}

	cmd.AddCommand(instancesListCmd(env))
	cmd.AddCommand(instancesLogCmd(env))
	cmd.AddCommand(instancesShowCmd(env))
	cmd.AddCommand(instancesDeleteCmd(env))

	return cmd
}

func instancesListCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			instances, err := c.ListInstances(cmd.Context())
			if err != nil {
				return err
			}
			for _, in := range instances {
				fmt.Fprintf(env.Stdout, "%s  %s  intensity=%d  %s\n",
					in.ID, in.OccurredAt.Format(time.RFC3339), in.Intensity, in.Trigger)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

func instancesLogCmd(env *Env) *cobra.Command {
	var (
		cfgPath  string
		params   client.InstanceParams
		when     string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a new episode",
		Example: `  habitkit instances log --trigger stress --intensity 4
  habitkit instances log --trigger boredom --intensity 2 --resisted --duration 3m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}

			params.OccurredAt = env.Now()
			if when != "" {
				at, err := time.Parse(time.RFC3339, when)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", when, err)
				}
				params.OccurredAt = at
			}
			params.DurationSeconds = int(duration.Seconds())

			created, err := c.CreateInstance(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "logged %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&params.Trigger, "trigger", "", "trigger pattern")
	cmd.Flags().IntVar(&params.Intensity, "intensity", 0, "urge intensity (1-10)")
	cmd.Flags().StringVar(&params.Location, "location", "", "where it happened")
	cmd.Flags().StringVar(&params.Notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&params.Resisted, "resisted", false, "the urge was resisted")
	cmd.Flags().DurationVar(&duration, "duration", 0, "episode duration")
	cmd.Flags().StringVar(&when, "at", "", "occurrence time (RFC3339, default now)")
	_ = cmd.MarkFlagRequired("trigger")
	_ = cmd.MarkFlagRequired("intensity")

	return cmd
}

func instancesShowCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			in, err := c.GetInstance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "id:        %s\n", in.ID)
			fmt.Fprintf(env.Stdout, "trigger:   %s\n", in.Trigger)
			fmt.Fprintf(env.Stdout, "intensity: %d\n", in.Intensity)
			fmt.Fprintf(env.Stdout, "occurred:  %s\n", in.OccurredAt.Format(time.RFC3339))
			if in.Location != "" {
				fmt.Fprintf(env.Stdout, "location:  %s\n", in.Location)
			}
			if in.Notes != "" {
				fmt.Fprintf(env.Stdout, "notes:     %s\n", in.Notes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

func instancesDeleteCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			if err := c.DeleteInstance(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}
