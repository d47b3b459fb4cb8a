// Command hrsync synchronizes a file tree between the local filesystem and
// HDFS (or between two trees on the same scheme), using rsync-style
// semantics: recursive descent, mirroring with deletion, metadata
// preservation, and filter rules.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fatih/color"
)

func warning(message string) {
	color.New(color.FgYellow).Fprintln(os.Stderr, "Warning:", message)
}

func fatal(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

var rootCommand = &cobra.Command{
	Use:          "hrsync <source...>",
	Short:        "Synchronize a file tree between local disk and HDFS",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runSync,
	SilenceUsage: true,
}

func init() {
	cobra.EnableCommandSorting = false
	bindSyncFlags(rootCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
