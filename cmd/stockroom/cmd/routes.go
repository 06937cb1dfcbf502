package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmcleod/stockroom/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Inspect the client's page routes",
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every path and the page it shows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tPAGE")
		for _, e := range routes.Default().Entries() {
			fmt.Fprintf(w, "%s\t%s\n", e.Path, e.Page)
		}
		return w.Flush()
	},
}

var routesResolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show which page a path resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, ok := routes.Default().Resolve(args[0])
		if !ok {
			return fmt.Errorf("no page registered for %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), page)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(routesListCmd, routesResolveCmd)
}
