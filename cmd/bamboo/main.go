// Package main provides the entry point for the bamboo CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v-brkic/Bamboo-filter/cmd/bamboo/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bamboo",
		Short: "Bamboo filter - expanding cuckoo membership filter",
		Long: `Bamboo filter benchmark harness.

Commands:
  bench     Insert and query sampled genome k-mers, report timing and accuracy`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewBenchCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "bamboo %s (commit: %s)\n", version, commit)
		},
	}
}
