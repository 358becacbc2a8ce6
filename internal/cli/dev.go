package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/stub"
)

// DevCmd returns the dev command (developer tools)
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Developer tools",
	}

	cmd.AddCommand(devServeCmd())

	return cmd
}

func devServeCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
		noSeed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stand-in POS backend",
		Long: `Run a local POS backend speaking the same JSON contract as production,
backed by SQLite. Intended for development and demos; seeds a small demo
dataset unless --no-seed is given.

Examples:
  comanda dev serve                        # :8069, in-memory database
  comanda dev serve --db ./comanda-dev.db  # persistent database
  comanda dev serve --addr :9000 --no-seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := stub.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if !noSeed {
				if err := store.Seed(time.Now()); err != nil {
					return err
				}
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			server := stub.NewServer(store, nil, logger)

			fmt.Printf("comanda dev backend listening on %s (db: %s)\n", addr, dbPath)
			return http.ListenAndServe(addr, server.Routes())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8069", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", ":memory:", "SQLite database path")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip the demo dataset")

	return cmd
}
