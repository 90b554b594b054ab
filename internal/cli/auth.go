package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habitkit/go-habitkit/internal/client"
)

// LoginCmd creates the login command.
func LoginCmd(env *Env) *cobra.Command {
	var (
		cfgPath  string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and store the session tokens",
		Example: `  habitkit login me@example.com
  habitkit login me@example.com --password-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, env, cfgPath, args[0], password)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, env *Env, cfgPath, email, password string) error {
	c, err := newClient(env, cfgPath)
	if err != nil {
		return err
	}

	if password == "" {
		password, err = promptLine(env, "password: ")
		if err != nil {
			return err
		}
	}

	user, err := c.Login(cmd.Context(), client.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	if !user.Approved {
		fmt.Fprintln(env.Stdout, "signed in; account is pending approval")
		return nil
	}
	fmt.Fprintf(env.Stdout, "signed in as %s\n", user.Email)
	return nil
}

// LogoutCmd creates the logout command.
func LogoutCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and discard stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "signed out")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

// WhoamiCmd creates the whoami command.
func WhoamiCmd(env *Env) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	return cmd
}

// RegisterCmd creates the register command.
func RegisterCmd(env *Env) *cobra.Command {
	var (
		cfgPath  string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(env, cfgPath)
			if err != nil {
				return err
			}

			if password == "" {
				password, err = promptLine(env, "password: ")
				if err != nil {
					return err
				}
			}

			user, err := c.Register(cmd.Context(), client.RegisterParams{
				Email:       args[0],
				Password:    password,
				DisplayName: name,
			})
			if err != nil {
				return err
			}

			if user.Approved {
				fmt.Fprintf(env.Stdout, "account created for %s\n", user.Email)
			} else {
				fmt.Fprintln(env.Stdout, "account created; awaiting approval")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")

	return cmd
}
