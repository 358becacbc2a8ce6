package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/ports/primary"
	"github.com/example/comanda/internal/ports/secondary"
	"github.com/example/comanda/internal/wire"
)

// OrderCmd returns the order command
func OrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Submit order lifecycle transitions",
		Long: `Submit transitions on orders. Every transition is validated locally,
sent to the backend as a dedicated call, and followed by a full board
refresh; nothing is patched optimistically.`,
	}

	cmd.AddCommand(orderAcceptCmd())
	cmd.AddCommand(orderRejectCmd())
	cmd.AddCommand(orderAdvanceCmd())
	cmd.AddCommand(orderMoveCmd())
	cmd.AddCommand(orderCancelCmd())
	cmd.AddCommand(orderChangesCmd())
	cmd.AddCommand(orderToggleLineCmd())

	return cmd
}

func parseOrderID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", arg)
	}
	return id, nil
}

// transitionService refreshes the board once so snapshot-backed prompts and
// guards see current data, then returns the service.
func transitionService(cmd *cobra.Command) (primary.TransitionService, error) {
	boardSvc, err := wire.BoardService()
	if err != nil {
		return nil, err
	}
	if err := boardSvc.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return wire.TransitionService()
}

func orderAcceptCmd() *cobra.Command {
	var (
		minutes int
		address string
		pickup  bool
		notes   string
	)

	cmd := &cobra.Command{
		Use:   "accept [order-id]",
		Short: "Accept a new order",
		Long: `Accept a new order with an estimated preparation time.

The estimate defaults to 30 minutes; delivery address and pickup flag are
pre-filled from the order when not given.

Examples:
  comanda order accept 7
  comanda order accept 7 --minutes 45 --address "Calle Mayor 1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}

			prompt, err := svc.AcceptPrompt(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := secondary.AcceptRequest{
				OrderID:          id,
				EstimatedMinutes: prompt.EstimatedMinutes,
				DeliveryAddress:  prompt.DeliveryAddress,
				PickupInStore:    prompt.PickupInStore,
				Notes:            notes,
			}
			if cmd.Flags().Changed("minutes") {
				req.EstimatedMinutes = minutes
			}
			if cmd.Flags().Changed("address") {
				req.DeliveryAddress = address
			}
			if cmd.Flags().Changed("pickup") {
				req.PickupInStore = pickup
			}

			if err := svc.Accept(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Printf("✓ Accepted %s (%d min)\n", prompt.OrderName, req.EstimatedMinutes)
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 30, "estimated preparation minutes")
	cmd.Flags().StringVar(&address, "address", "", "delivery address")
	cmd.Flags().BoolVar(&pickup, "pickup", false, "customer picks up in store")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes for the kitchen")

	return cmd
}

func orderRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject [order-id]",
		Short: "Reject an order (reason required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Reject(cmd.Context(), id, reason); err != nil {
				return err
			}
			fmt.Printf("✓ Rejected order %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason (required)")

	return cmd
}

func orderAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance [order-id]",
		Short: "Advance an order to its next state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Advance(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("✓ Advanced order %d\n", id)
			return nil
		},
	}
}

func orderMoveCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move [order-id]",
		Short: "Move an order to an explicit state (drop target)",
		Long: `Move an order straight to a state, like dropping its card on a column.

Examples:
  comanda order move 7 --to in_preparation
  comanda order move 7 --to ready`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Move(cmd.Context(), primary.DropEvent{OrderID: id, TargetState: to}); err != nil {
				return err
			}
			fmt.Printf("✓ Moved order %d to %s\n", id, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target state key (required)")

	return cmd
}

func orderCancelCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "cancel [order-id]",
		Short: "Confirm a customer-requested cancellation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Cancel(cmd.Context(), id, notes); err != nil {
				return err
			}
			fmt.Printf("✓ Cancelled order %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "optional cancellation notes")

	return cmd
}

func orderChangesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Review a customer's pending order changes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [order-id]",
		Short: "Show the pending-changes diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := wire.TransitionService()
			if err != nil {
				return err
			}
			diff, err := svc.ChangeDiff(cmd.Context(), id)
			if err != nil {
				return err
			}
			printDiffSection("Added", diff.Added)
			printDiffSection("Modified", diff.Modified)
			printDiffSection("Removed", diff.Removed)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accept [order-id]",
		Short: "Accept the pending changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.DecideChanges(cmd.Context(), id, true, ""); err != nil {
				return err
			}
			fmt.Printf("✓ Accepted changes on order %d\n", id)
			return nil
		},
	})

	rejectCmd := &cobra.Command{
		Use:   "reject [order-id]",
		Short: "Reject the pending changes (reason required)",
		Args:  cobra.ExactArgs(1),
	}
	var reason string
	rejectCmd.Flags().StringVar(&reason, "reason", "", "reason for rejecting the changes (required)")
	rejectCmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		svc, err := transitionService(cmd)
		if err != nil {
			return err
		}
		if err := svc.DecideChanges(cmd.Context(), id, false, reason); err != nil {
			return err
		}
		fmt.Printf("✓ Rejected changes on order %d\n", id)
		return nil
	}
	cmd.AddCommand(rejectCmd)

	return cmd
}

func printDiffSection(title string, lines []secondary.ChangedLine) {
	fmt.Printf("%s (%d)\n", title, len(lines))
	for _, l := range lines {
		note := ""
		if l.Note != "" {
			note = "  (" + l.Note + ")"
		}
		fmt.Printf("  %dx %s%s\n", l.Qty, l.Name, note)
	}
}

func orderToggleLineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-line [order-id] [line-id]",
		Short: "Flip a line's prepared flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			lineID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || lineID <= 0 {
				return fmt.Errorf("invalid line id %q", args[1])
			}
			svc, err := transitionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.ToggleLine(cmd.Context(), orderID, lineID); err != nil {
				return err
			}
			fmt.Printf("✓ Toggled line %d on order %d\n", lineID, orderID)
			return nil
		},
	}
}
