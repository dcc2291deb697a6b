package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipq/catalogapi/querycat"
)

func newQueriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "Print the query catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range querycat.Names() {
				fmt.Fprintf(out, "-- %s\n%s;\n\n", name, querycat.MustResolve(name))
			}
			return nil
		},
	}
}
