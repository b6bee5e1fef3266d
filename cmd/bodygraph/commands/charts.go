package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChartsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Manage archived charts",
		Long: `List, show and delete charts saved with 'chart --save' or the HTTP API.

The archive location is store.path in the config file.`,
	}

	cmd.AddCommand(newChartsListCommand())
	cmd.AddCommand(newChartsShowCommand())
	cmd.AddCommand(newChartsDeleteCommand())

	return cmd
}

func newChartsListCommand() *cobra.Command {
	var (
		chartType string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived charts",
		Example: `  # Newest charts first
  bodygraph charts list

  # Only Projectors, second page
  bodygraph charts list --type Projector --limit 20 --offset 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.svc.List(cmd.Context(), chartType, limit, offset)
			if err != nil {
				return err
			}
			return printChartList(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVar(&chartType, "type", "", "only charts of this type")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of charts (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of charts to skip")

	return cmd
}

func newChartsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			chart, err := a.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printChart(cmd.OutOrStdout(), chart)
		},
	}
}

func newChartsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted chart %s\n", args[0])
			return err
		},
	}
}
