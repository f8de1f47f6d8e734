package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"notesync/models"
)

var (
	registerEmail string
	password      string
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readSecret(password, "Password: ", cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ok := application.Auth.SignUp(cmd.Context(), models.RegisterRequest{
			Username: args[0],
			Email:    registerEmail,
			Password: pw,
		})
		if !ok {
			return errors.New("sign-up failed")
		}
		id := application.Auth.CurrentUserID()
		if repos, err := repositories(cmd); err == nil {
			u := &models.User{ID: id, Username: args[0], Email: registerEmail}
			if err := repos.Store.UpsertUser(cmd.Context(), u); err != nil {
				application.Logger.Warn("failed to cache profile", "error", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s (%s)\n", args[0], id)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Sign in to the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readSecret(password, "Password: ", cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		if !application.Auth.SignIn(cmd.Context(), args[0], pw) {
			return errors.New("sign-in failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", application.Auth.CurrentUserID())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Auth.SignOut(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !application.Auth.IsSignedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		id := application.Auth.CurrentUserID()
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		// known once registered here or seen in a group listing
		u, err := repos.Store.GetUser(cmd.Context(), id)
		if err != nil {
			return err
		}
		if u == nil {
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.Username, u.Email, id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	_ = registerCmd.MarkFlagRequired("email")
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	}
}
