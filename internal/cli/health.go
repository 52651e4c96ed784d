package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and document store health",
		Long: `Check server and document store health. Exits non-zero when the
server answers but cannot reach the document store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get(cmd.Context(), "/health", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			if result.Store == "unavailable" {
				return errors.New("document store unavailable")
			}
			return nil
		},
	}
}
