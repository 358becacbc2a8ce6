package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/cli"
	"github.com/example/comanda/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "comanda",
		Short:   "comanda - cashier order board and notification watcher",
		Version: version.String(),
		Long: `comanda is a terminal client for a POS/e-commerce backend: a live kanban
board of orders in flight, lifecycle transitions, and a watcher for the
delivery, web-order, and pickup notification feeds.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.BoardCmd())
	rootCmd.AddCommand(cli.WatchCmd())
	rootCmd.AddCommand(cli.OrderCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
