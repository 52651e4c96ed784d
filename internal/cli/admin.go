package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mcoot/fxdesk/internal/config"
	"github.com/mcoot/fxdesk/internal/factory"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts directly in the document store",
		Long: `Manage admin accounts directly in the document store.

These commands do not go through the API. They read the same environment
and secrets file as the server.`,
	}

	cmd.AddCommand(newAdminCreateCmd())

	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))
			fc := factory.FromConfig(appCfg, logger)
			p := newPrompter(cmd)

			if database == "" {
				database, err = pickDatabase(cmd, p, fc)
				if err != nil {
					return err
				}
			}
			fc.MongoConfig.UsersDatabase = database

			username, err := p.Line("Username: ")
			if err != nil {
				return err
			}
			if username == "" {
				return fmt.Errorf("username must not be empty")
			}
			password, err := p.NewSecret("Password")
			if err != nil {
				return err
			}
			secondary, err := p.NewSecret("Secondary password")
			if err != nil {
				return err
			}

			app, err := factory.New(ctx, fc)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(ctx) }()

			if _, err := app.AuthService.CreateAdmin(ctx, username, password, secondary); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(
				fmt.Sprintf("Admin user %s created in database %s", username, database))
			return nil
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Database holding the users collection (prompted if omitted)")

	return cmd
}

// pickDatabase lists the databases in the store and asks which one holds the
// users collection, defaulting to the configured one
func pickDatabase(cmd *cobra.Command, p *prompter, fc factory.Config) (string, error) {
	ctx := cmd.Context()
	fallback := fc.MongoConfig.UsersDatabase

	app, err := factory.New(ctx, fc)
	if err != nil {
		return "", err
	}
	defer func() { _ = app.Close(ctx) }()

	names, err := app.BrowserService.ListDatabases(ctx)
	if err != nil {
		return "", fmt.Errorf("list databases: %w", err)
	}

	if len(names) > 0 {
		fmt.Fprintln(p.out, "Databases:")
		for i, n := range names {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, n)
		}
	}

	answer, err := p.Line(fmt.Sprintf("Database [%s]: ", fallback))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	var n int
	if _, err := fmt.Sscanf(answer, "%d", &n); err == nil && fmt.Sprint(n) == answer {
		if n < 1 || n > len(names) {
			return "", fmt.Errorf("no database numbered %d", n)
		}
		return names[n-1], nil
	}
	if !slices.Contains(names, answer) {
		fmt.Fprintf(p.out, "Database %s does not exist yet and will be created\n", answer)
	}
	return answer, nil
}
