package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/adapters/terminal"
	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/wire"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the notification feeds",
		Long: `Run the notification watcher: the delivery, web-order, and pickup feeds
are polled every 15 seconds (first poll after 3 seconds) and rendered as
indicator lines. Dismissing a delivery or pickup notification marks the
order dispatched on the backend and removes it locally; web-order
notifications can only be viewed and clear when the order is dispatched.

Examples:
  comanda watch                       # live indicators until interrupted
  comanda watch list web              # print one feed's notifications
  comanda watch dismiss delivery pos_5
  comanda watch viewed 12             # acknowledge a web order, show the board`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.NotificationService()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start notification engine: %w", err)
			}
			defer svc.Close()

			renderer := terminal.NewNotificationRenderer(os.Stdout)
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(os.Stdout)
					return nil
				case <-ticker.C:
					fmt.Fprint(os.Stdout, "\033[H\033[2J")
					renderer.RenderIndicators(svc.Indicators())
				}
			}
		},
	}

	cmd.AddCommand(watchListCmd())
	cmd.AddCommand(watchDismissCmd())
	cmd.AddCommand(watchViewedCmd())

	return cmd
}

func parseFeed(arg string) (notify.Feed, error) {
	feed := notify.Feed(arg)
	for _, known := range notify.Feeds {
		if feed == known {
			return feed, nil
		}
	}
	return "", fmt.Errorf("unknown feed %q (want delivery, web, or pickup)", arg)
}

func watchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [feed]",
		Short: "Poll once and print a feed's notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := parseFeed(args[0])
			if err != nil {
				return err
			}
			svc, err := wire.NotificationService()
			if err != nil {
				return err
			}

			svc.PollOnce(cmd.Context())
			terminal.NewNotificationRenderer(os.Stdout).RenderItems(feed, svc.Items(feed))
			return nil
		},
	}
}

func watchDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss [feed] [notification-id]",
		Short: "Dismiss a notification (marks the order dispatched)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := parseFeed(args[0])
			if err != nil {
				return err
			}
			svc, err := wire.NotificationService()
			if err != nil {
				return err
			}

			svc.PollOnce(cmd.Context())
			if err := svc.Dismiss(cmd.Context(), feed, args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ Dismissed %s from %s\n", args[1], feed)
			return nil
		},
	}
}

func watchViewedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "viewed [notification-id]",
		Short: "Mark a web-order notification viewed and show the board",
		Long: `Acknowledge a web-order notification. The notification stays listed
until the order is dispatched; the board is rendered once so the viewed
order can be seen in context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.NotificationService()
			if err != nil {
				return err
			}
			if err := svc.MarkViewed(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Marked %s viewed\n", args[0])

			boardSvc, err := wire.BoardService()
			if err != nil {
				return err
			}
			terminal.NewBoardRenderer(os.Stdout).Render(boardSvc.View())
			return nil
		},
	}
}
