package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/mcoot/fxdesk/internal/config"
	"github.com/mcoot/fxdesk/internal/services/auth"
)

// Keys of the [app] section
const (
	secretUsername  = "username"
	secretPassword  = "password"
	secretSecondary = "secondary_password"
)

func newSecretsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Maintain the fallback credentials in the secrets file",
		Long: `Maintain the fallback credentials in the [app] section of the secrets file.

Passwords are stored as SHA-256 digests and are only used when the user
store has no matching account.`,
	}

	cmd.PersistentFlags().StringVar(&file, "file", getEnvOrDefault("SECRETS_FILE", ".streamlit/secrets.toml"), "Secrets file (env: SECRETS_FILE)")

	cmd.AddCommand(newSetSecretCmd(&file, "set-password", "Set the fallback password", secretPassword, "Password"))
	cmd.AddCommand(newSetSecretCmd(&file, "set-secondary", "Set the fallback secondary password", secretSecondary, "Secondary password"))

	return cmd
}

func newSetSecretCmd(file *string, use, short, key, label string) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			current, err := config.LoadSecrets(*file)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			overwrite := false
			if current != nil && appSecret(current.App, key) != "" {
				ok, err := p.Confirm(fmt.Sprintf("%s is already set in %s. Overwrite?", label, *file))
				if err != nil {
					return err
				}
				if !ok {
					out.PrintMessage("Left unchanged")
					return nil
				}
				overwrite = true
			}

			value, err := p.NewSecret(label)
			if err != nil {
				return err
			}

			if user != "" {
				if err := config.SetAppSecret(*file, secretUsername, user, true); err != nil {
					return err
				}
			}
			if err := config.SetAppSecret(*file, key, auth.LegacyDigest(value), overwrite); err != nil {
				return err
			}

			out.PrintMessage(fmt.Sprintf("%s saved to %s", label, *file))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Also set the fallback username")

	return cmd
}

func appSecret(app config.AppSecrets, key string) string {
	switch key {
	case secretUsername:
		return app.Username
	case secretPassword:
		return app.Password
	case secretSecondary:
		return app.SecondaryPassword
	default:
		return ""
	}
}
