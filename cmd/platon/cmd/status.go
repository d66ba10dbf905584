package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/provider"
	"github.com/elenchus/platon/internal/session"
	"github.com/elenchus/platon/internal/store"
)

// newStatusCmd creates the status command.
// Reports per-provider index state without touching embedding backends.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider index and history status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			corpusMark := color.GreenString("✓")
			if _, err := os.Stat(cfg.Paths.CorpusPath); err != nil {
				corpusMark = color.RedString("✗ missing")
			}
			fmt.Fprintf(out, "Data directory: %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Corpus:         %s %s\n\n", cfg.Paths.CorpusPath, corpusMark)

			for _, name := range provider.Names() {
				dir := provider.Dir(cfg.Paths.DataDir, name)
				if !store.Exists(dir) {
					fmt.Fprintf(out, "  %s %-12s not indexed\n", color.YellowString("○"), name)
					continue
				}

				dims, err := store.ReadVectorIndexDimensions(filepath.Join(dir, store.VectorFileName))
				if err != nil {
					fmt.Fprintf(out, "  %s %-12s index unreadable: %v\n", color.RedString("✗"), name, err)
					continue
				}

				count := -1
				model := ""
				if docs, derr := store.OpenDocStore(filepath.Join(dir, store.DocsFileName)); derr == nil {
					count, _ = docs.Count(cmd.Context())
					model, _ = docs.GetState(cmd.Context(), store.StateKeyEmbeddingModel)
					_ = docs.Close()
				}

				fmt.Fprintf(out, "  %s %-12s %s: %d entries, %s (%d dimensions)\n",
					color.GreenString("●"), name, provider.CollectionID(name), count, model, dims)
			}

			if _, err := os.Stat(historyPath()); err == nil {
				history, err := session.Open(historyPath())
				if err == nil {
					defer func() { _ = history.Close() }()
					if count, err := history.Count(cmd.Context()); err == nil {
						fmt.Fprintf(out, "\nHistory: %d exchanges\n", count)
					}
				}
			}

			return nil
		},
	}
}
