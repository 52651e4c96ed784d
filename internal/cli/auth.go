package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the API and save the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if user == "" {
				var err error
				if user, err = p.Line("Username: "); err != nil {
					return err
				}
			}
			pass, err := p.Secret("Password: ")
			if err != nil {
				return err
			}
			if user == "" || pass == "" {
				return errors.New("username and password are required")
			}

			var result AuthResult
			req := map[string]string{"username": user, "password": pass}
			if err := client.Post(cmd.Context(), "/auth/login", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (prompted if omitted)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Logged out")
			return nil
		},
	}
}
