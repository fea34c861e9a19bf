package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cebdan/woodwop-post-processor/internal/tooldb"
)

// ToolsOptions holds flags for the tools command group.
type ToolsOptions struct {
	*RootOptions
	Database string
}

// NewToolsCommand creates the tools command group for inspecting and
// maintaining the machine tool table.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToolsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and maintain the machine tool table",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the tool table (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newToolsListCommand(opts))
	cmd.AddCommand(newToolsAddCommand(opts))

	return cmd
}

func newToolsListCommand(opts *ToolsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all tools",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := tooldb.Open(opts.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			tools, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "T%-4d %-20s d=%.1f %s\n",
					t.Number, t.Name, t.Diameter, t.Comment)
			}
			return nil
		},
	}
}

func newToolsAddCommand(opts *ToolsOptions) *cobra.Command {
	var tool tooldb.Tool

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add or replace a tool slot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := tooldb.Open(opts.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Put(cmd.Context(), tool); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored T%d\n", tool.Number)
			return nil
		},
	}

	cmd.Flags().IntVar(&tool.Number, "number", 0, "tool number (required)")
	cmd.Flags().StringVar(&tool.Name, "name", "", "symbolic tool name")
	cmd.Flags().Float64Var(&tool.Diameter, "diameter", 0, "tool diameter in mm")
	cmd.Flags().StringVar(&tool.Comment, "comment", "", "free-form comment")
	_ = cmd.MarkFlagRequired("number")

	return cmd
}
