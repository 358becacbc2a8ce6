package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/comanda/internal/adapters/natshint"
	"github.com/example/comanda/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the comanda environment",
		Long: `Environment health check for comanda.

Validates:
- Configuration (.comanda/config.json or COMANDA_* environment)
- POS backend reachability (board fetch)
- NATS hint channel reachability (only when configured)
- Terminal color support

Examples:
  comanda doctor              # Run full health check
  comanda doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkConfig(),
				checkBackend(cmd),
				checkHints(),
				checkColor(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check          Status")
				fmt.Println("─────────────────────")
				for _, r := range results {
					fmt.Printf("%-14s %s\n", r.Name, r.Status)
				}
				fmt.Println()
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s: %s\n", r.Name, r.Details)
					}
				}
			}

			if hasErrors {
				return fmt.Errorf("environment has issues")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "exit code only, no output")

	return cmd
}

func checkConfig() CheckResult {
	cfg, err := wire.Config()
	if err != nil {
		return CheckResult{Name: "config", Status: "✗", Details: err.Error()}
	}
	if cfg.Token == "" {
		return CheckResult{Name: "config", Status: "⚠", Details: "no auth token set (fine for the dev backend)"}
	}
	return CheckResult{Name: "config", Status: "✓"}
}

func checkBackend(cmd *cobra.Command) CheckResult {
	gw, err := wire.Gateway()
	if err != nil {
		return CheckResult{Name: "backend", Status: "✗", Details: err.Error()}
	}
	if _, err := gw.FetchBoard(cmd.Context()); err != nil {
		return CheckResult{Name: "backend", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "backend", Status: "✓"}
}

func checkHints() CheckResult {
	cfg, err := wire.Config()
	if err != nil {
		return CheckResult{Name: "hints", Status: "✗", Details: err.Error()}
	}
	if cfg.NATSURL == "" {
		return CheckResult{Name: "hints", Status: "⚠", Details: "no NATS URL configured; polling only"}
	}
	l, err := natshint.NewListener(cfg.NATSURL, cfg.HintSubject)
	if err != nil {
		return CheckResult{Name: "hints", Status: "✗", Details: err.Error()}
	}
	l.Close()
	return CheckResult{Name: "hints", Status: "✓"}
}

func checkColor() CheckResult {
	if color.NoColor {
		return CheckResult{Name: "color", Status: "⚠", Details: "color disabled (NO_COLOR or non-tty); time status falls back to labels"}
	}
	return CheckResult{Name: "color", Status: "✓"}
}
