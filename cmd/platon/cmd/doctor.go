package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/preflight"
)

// newDoctorCmd creates the doctor command.
// Runs the environment checks and reports what will and will not work.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check corpus, storage, and backend availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results := preflight.New(cfg).RunAll(cmd.Context())

			out := cmd.OutOrStdout()
			for _, r := range results {
				var marker string
				switch r.Status {
				case preflight.StatusPass:
					marker = color.GreenString("✓")
				case preflight.StatusWarn:
					marker = color.YellowString("!")
				default:
					marker = color.RedString("✗")
				}
				fmt.Fprintf(out, "%s %-18s %s\n", marker, r.Name, r.Message)
			}

			if preflight.HasCriticalFailures(results) {
				return fmt.Errorf("environment is not usable, fix the failed checks above")
			}
			return nil
		},
	}
}
