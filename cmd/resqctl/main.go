package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shenikar/resqnet/internal/cli"
)

var (
	version = "v0.1.0" // Перезаписывается при сборке
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resqctl",
		Short: "Command-line client for the ResQNet disaster report service",
		Long: `resqctl submits field photos to ResQNet, scores damage tags against
the triage knowledge base and checks the service health.`,
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		cli.NewSubmitCmd(),
		cli.NewScoreCmd(),
		cli.NewPingCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resqctl version %s\n", version)
		},
	}
}
