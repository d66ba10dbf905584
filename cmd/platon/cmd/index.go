package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/extract"
	"github.com/elenchus/platon/internal/index"
	"github.com/elenchus/platon/internal/provider"
)

// newIndexCmd creates the index command.
// Acquires the provider's index, merging the corpus on first use and any
// given files alongside it.
func newIndexCmd() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "index [files...]",
		Short: "Build or update a provider's index, optionally adding documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]extract.Upload, 0, len(args))
			for _, path := range args {
				uploads = append(uploads, extract.FromPath(path))
			}

			manager := index.NewManager(cfg, nil)
			handle, err := manager.GetOrCreate(cmd.Context(), providerName, uploads)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			printHandleWarnings(cmd, handle)

			count, err := handle.Collection.Count(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s collection %s ready: %d entries\n",
				color.GreenString("✓"), handle.Collection.ID(), count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", provider.Gemini,
		"LLM provider (gemini, groq, spanish-llm)")
	return cmd
}

// printHandleWarnings surfaces degradations from index acquisition.
func printHandleWarnings(cmd *cobra.Command, handle *index.Handle) {
	out := cmd.OutOrStdout()
	if handle.EmbedderFallback {
		fmt.Fprintf(out, "%s local embedding model unavailable, using reduced-quality static embeddings\n",
			color.YellowString("!"))
	}
	if handle.Degraded {
		fmt.Fprintf(out, "%s index could not be persisted, serving from memory for this run\n",
			color.YellowString("!"))
	}
	for _, name := range handle.SkippedUploads {
		fmt.Fprintf(out, "%s skipped %s: text extraction failed\n", color.YellowString("!"), name)
	}
}
