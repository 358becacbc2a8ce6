// Package cli contains the cobra commands for the comanda client.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/adapters/terminal"
	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/wire"
)

// BoardCmd returns the board command
func BoardCmd() *cobra.Command {
	var (
		date     string
		customer string
		origin   string
		state    string
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the live order board",
		Long: `Render the kanban order board.

By default the board stays live: a full refresh every 30 seconds, elapsed
times re-classified every second, and a sound alert while unacknowledged
new orders are present. Filters narrow the visible board without touching
the data fetched from the backend.

Examples:
  comanda board                       # live board, today's orders
  comanda board --once                # single render, then exit
  comanda board --date all --origin web
  comanda board --customer maria --state in_preparation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.BoardService()
			if err != nil {
				return err
			}

			crit := board.DefaultCriteria()
			if date != "" {
				crit.Date = board.DateBucket(date)
			}
			crit.Customer = customer
			if origin != "" {
				crit.Origin = board.Origin(origin)
			}
			if state != "" {
				crit.State = state
			}
			svc.SetCriteria(crit)

			renderer := terminal.NewBoardRenderer(os.Stdout)

			if once {
				if err := svc.Refresh(cmd.Context()); err != nil {
					// The banner carries the failure; render it like the
					// live board would.
					renderer.Render(svc.View())
					return err
				}
				renderer.Render(svc.View())
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start board engine: %w", err)
			}
			defer svc.Close()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			renderer.Render(svc.View())
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(os.Stdout)
					return nil
				case <-ticker.C:
					fmt.Fprint(os.Stdout, "\033[H\033[2J")
					renderer.Render(svc.View())
				}
			}
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date bucket: today, yesterday, last_7_days, all")
	cmd.Flags().StringVar(&customer, "customer", "", "case-insensitive customer substring")
	cmd.Flags().StringVar(&origin, "origin", "", "order origin: all, web, pos")
	cmd.Flags().StringVar(&state, "state", "", "quick state filter (e.g. in_preparation)")
	cmd.Flags().BoolVar(&once, "once", false, "render once and exit")

	return cmd
}
