package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/extract"
	"github.com/elenchus/platon/internal/index"
	"github.com/elenchus/platon/internal/llm"
	"github.com/elenchus/platon/internal/provider"
	"github.com/elenchus/platon/internal/retrieve"
	"github.com/elenchus/platon/internal/session"
	"github.com/elenchus/platon/internal/store"
)

// newAskCmd creates the ask command: the full retrieval-augmented pipeline
// from question to grounded answer.
func newAskCmd() *cobra.Command {
	var (
		providerName string
		topK         int
		showSources  bool
		withFiles    []string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about Plato's dialogues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))

			uploads := make([]extract.Upload, 0, len(withFiles))
			for _, path := range withFiles {
				uploads = append(uploads, extract.FromPath(path))
			}

			manager := index.NewManager(cfg, nil)
			handle, err := manager.GetOrCreate(cmd.Context(), providerName, uploads)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			printHandleWarnings(cmd, handle)

			if topK <= 0 {
				topK = cfg.Retrieval.TopK
			}
			retriever := retrieve.New(handle.Collection, topK, cfg.Retrieval.FetchK)

			passages, err := retriever.Retrieve(cmd.Context(), question)
			if err != nil {
				return err
			}

			completer, err := llm.ForProvider(cmd.Context(), providerName)
			if err != nil {
				return err
			}
			defer func() { _ = completer.Close() }()

			answer, err := completer.Complete(cmd.Context(), llm.BuildPrompt(question, passages))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)

			if showSources {
				printSources(cmd, passages)
			}

			saveExchange(cmd, question, answer, providerName, completer.ModelName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", provider.Gemini,
		"LLM provider (gemini, groq, spanish-llm)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of passages to retrieve")
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the retrieved passages")
	cmd.Flags().StringSliceVar(&withFiles, "with", nil, "Documents to index alongside the corpus")
	return cmd
}

// printSources lists the passages the answer was grounded on.
func printSources(cmd *cobra.Command, passages []store.SearchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", color.CyanString("Fuentes:"))
	for i, p := range passages {
		label := p.Document.Meta.Dialogue
		if p.Document.Meta.Book != "" {
			label += ", libro " + p.Document.Meta.Book
		}
		if label == "" {
			label = p.Document.Meta.Source
		}
		fmt.Fprintf(out, "  [%d] %s (%.2f)\n", i+1, label, p.Score)
	}
}

// saveExchange appends the exchange to the history database.
// History failures never fail the ask; they are logged and ignored.
func saveExchange(cmd *cobra.Command, question, answer, providerName, model string) {
	history, err := session.Open(historyPath())
	if err != nil {
		slog.Warn("failed to open history", "error", err)
		return
	}
	defer func() { _ = history.Close() }()

	if err := history.Append(cmd.Context(), session.Entry{
		Question: question,
		Answer:   answer,
		Provider: providerName,
		Model:    model,
	}); err != nil {
		slog.Warn("failed to record history entry", "error", err)
	}
}
