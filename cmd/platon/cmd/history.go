package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/session"
)

// newHistoryCmd creates the history command with its export subcommand.
func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent question/answer exchanges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := session.Open(historyPath())
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			entries, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s [%s] %s\n",
					color.CyanString(e.CreatedAt.Format(time.RFC3339)), e.Provider, e.Question)
				fmt.Fprintf(out, "  %s\n", e.Answer)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of exchanges to show")
	cmd.AddCommand(newHistoryExportCmd())
	return cmd
}

// newHistoryExportCmd creates the history export subcommand.
func newHistoryExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full history as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := session.Open(historyPath())
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			if out == "" {
				return history.ExportCSV(cmd.Context(), cmd.OutOrStdout())
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer func() { _ = file.Close() }()

			if err := history.ExportCSV(cmd.Context(), file); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s exported history to %s\n",
				color.GreenString("✓"), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
