package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-api-session-client/apiclient"
	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/headers/redact"
	"github.com/spf13/cobra"
)

func newLoginCommand(cfg *cliConfig) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange email and password for tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = os.Getenv("APICLIENT_PASSWORD")
			}
			if password == "" {
				return errors.New("--password or APICLIENT_PASSWORD is required")
			}

			client, _, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := client.RequestOauthToken(cmd.Context(), email, password); err != nil {
				if errors.Is(err, apiclient.ErrWrongCredentials) {
					return errors.New("login failed: wrong email or password")
				}
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $APICLIENT_PASSWORD)")
	return cmd
}

func newRefreshCommand(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for new tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := client.RefreshOauthToken(cmd.Context()); err != nil {
				if errors.Is(err, apiclient.ErrWrongCredentials) {
					if resetErr := client.ResetCredentials(); resetErr != nil {
						return errors.Join(err, resetErr)
					}
				}
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "tokens refreshed")
			return err
		},
	}
}

func newStatusCommand(cfg *cliConfig) *cobra.Command {
	var showTokens, watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if err := printStatus(out, client, showTokens); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			fileStore, ok := store.(*cookiestore.FileStore)
			if !ok {
				return errors.New("--watch requires a cookie file")
			}
			err = fileStore.Watch(cmd.Context(), func() {
				reloaded, _, closeReloaded, err := cfg.session()
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %s\n", err)
					return
				}
				defer closeReloaded()
				_ = printStatus(out, reloaded, showTokens)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&showTokens, "show-tokens", false, "print token values instead of redacting them")
	cmd.Flags().BoolVar(&watch, "watch", false, "print the status again whenever the cookie file changes")
	return cmd
}

func printStatus(out io.Writer, client *apiclient.Client, showTokens bool) error {
	accessToken, refreshToken, _ := client.Credentials()
	display := func(name, value string) string {
		if value == "" {
			return "<none>"
		}
		return redact.RedactSensitiveHeaderData(!showTokens, name, value)
	}
	_, err := fmt.Fprintf(out, "state: %s\naccess_token: %s\nrefresh_token: %s\n",
		client.State(),
		display(apiclient.CookieAccessToken, accessToken),
		display(apiclient.CookieRefreshToken, refreshToken),
	)
	return err
}

func newLogoutCommand(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := client.SignOut(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "signed out, state: %s\n", client.State())
			return err
		},
	}
}

func newRollbackCommand(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the session saved before the last switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := client.RollbackSession(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "rolled back, state: %s\n", client.State())
			return err
		},
	}
}
