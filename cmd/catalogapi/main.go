// Command catalogapi serves the read-only catalog API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set by the build.
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogapi",
		Short:         "Read-only HTTP API over the shop catalog",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newQueriesCommand())
	return root
}
