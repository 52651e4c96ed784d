package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/fxdesk/internal/api/request"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Browse the document store (admin only)",
	}

	cmd.AddCommand(newDBListCmd())
	cmd.AddCommand(newDBCollectionsCmd())
	cmd.AddCommand(newDBFetchCmd())
	cmd.AddCommand(newDBCreateCmd())
	cmd.AddCommand(newDBDeleteCmd())

	return cmd
}

func newDBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Databases
			if err := client.Get(cmd.Context(), "/databases", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newDBCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections <database>",
		Short: "List the collections of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Collections
			if err := client.Get(cmd.Context(), "/databases/"+url.PathEscape(args[0])+"/collections", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newDBFetchCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "fetch <database> <collection>",
		Short: "Print every document of a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Documents
			if err := client.Get(cmd.Context(), collectionPath(args[0], args[1])+"/documents", &result); err != nil {
				return err
			}
			result.Columns = visibleColumns(result.Columns, all)
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include bookkeeping columns such as _id")

	return cmd
}

func newDBCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <database> <collection>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), collectionPath(args[0], args[1]), nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Collection %s.%s created", args[0], args[1]))
			return nil
		},
	}
}

func newDBDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <database> <collection> <id>...",
		Short: "Delete documents by id",
		Long: `Delete documents by id. Deletion asks for your secondary password and,
unless --yes is given, for confirmation.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			ids := args[2:]

			if !yes {
				ok, err := p.Confirm(fmt.Sprintf("Delete %d document(s) from %s.%s?", len(ids), args[0], args[1]))
				if err != nil {
					return err
				}
				if !ok {
					out.PrintMessage("Nothing deleted")
					return nil
				}
			}

			secondary, err := p.Secret("Secondary password: ")
			if err != nil {
				return err
			}

			req := request.BatchRequest{
				Kind:              "delete",
				IDs:               ids,
				SecondaryPassword: secondary,
			}
			var result BatchResult
			if err := client.Post(cmd.Context(), collectionPath(args[0], args[1])+"/batch", req, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation question")

	return cmd
}
