// Command stabilityctl drives the core stability engine from the
// command line: ingesting a record-batch stream and printing ingest
// telemetry, or slicing a window out of an already-ingested file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "stabilityctl",
		Short: "Core stability engine CLI",
		Long:  "stabilityctl drives the codec, column store, window packer, and orchestrator from the command line.",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newIngestCmd())
	root.AddCommand(newWindowCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stabilityctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stabilityctl v%s\n", version)
		},
	}
}
