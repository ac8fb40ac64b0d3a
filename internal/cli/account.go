package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/browser"
)

func newLoginCmd(opts *options) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "login <identity-token>",
		Short: "Sign in with an identity token",
		Long:  "Sign in with the identity token (a JWT) issued by the sign-in provider. Saves are then kept on the news service too.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Sessions.Login(cmd.Context(), args[0], userID)
			if err != nil {
				return fmt.Errorf("signing in: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(s.User.Email, s.User.Name, s.User.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "user id to sign in as (default the token's subject)")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Sessions.Load(cmd.Context())
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", displayName(s.User.Email, s.User.Name, s.User.ID), s.User.ID)
			return nil
		},
	}
}

func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "unknown user"
}

func newCheckoutCmd(opts *options) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start a subscription checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			url, err := a.Checkout(cmd.Context())
			if err != nil {
				return fmt.Errorf("starting checkout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			if open {
				return browser.Open(url)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open the checkout page in the browser")
	return cmd
}
