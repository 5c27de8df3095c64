package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ai-library/ai-library/client/auth"
)

func newLoginCmd(c *cli) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			member, err := c.session.SignIn(cmd.Context(), auth.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				if auth.KindOf(err) == auth.KindInvalidCredentials {
					return errors.New("invalid email or password")
				}
				return err
			}
			if err := c.store.SaveMember(cmd.Context(), member); err != nil {
				c.log.Warn("cache member", zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", member.DisplayName, member.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, cannot prompt for password")
	}
	fmt.Fprint(cmd.OutOrStdout(), "password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			if err := c.store.ClearMember(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := c.session.Init(cmd.Context())
			if err != nil {
				return err
			}
			if member == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			return printJSON(cmd, member)
		},
	}
}
