package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/index"
	"github.com/elenchus/platon/internal/llm"
	"github.com/elenchus/platon/internal/provider"
	"github.com/elenchus/platon/internal/retrieve"
)

// newChatCmd creates the chat command: an interactive loop over the same
// pipeline as ask, holding the index and completion client open between
// questions.
func newChatCmd() *cobra.Command {
	var (
		providerName string
		showSources  bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			manager := index.NewManager(cfg, nil)
			handle, err := manager.GetOrCreate(cmd.Context(), providerName, nil)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			printHandleWarnings(cmd, handle)

			retriever := retrieve.New(handle.Collection, cfg.Retrieval.TopK, cfg.Retrieval.FetchK)

			completer, err := llm.ForProvider(cmd.Context(), providerName)
			if err != nil {
				return err
			}
			defer func() { _ = completer.Close() }()

			fmt.Fprintf(out, "Pregunta sobre los diálogos de Platón (proveedor %s). Escribe %s para terminar.\n",
				providerName, color.CyanString("salir"))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, color.GreenString("> "))
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}

				question := strings.TrimSpace(scanner.Text())
				switch {
				case question == "":
					continue
				case question == "salir" || question == "exit":
					return nil
				}

				passages, err := retriever.Retrieve(cmd.Context(), question)
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", color.RedString("Error:"), err)
					continue
				}

				answer, err := completer.Complete(cmd.Context(), llm.BuildPrompt(question, passages))
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", color.RedString("Error:"), err)
					continue
				}

				fmt.Fprintf(out, "\n%s\n", answer)
				if showSources {
					printSources(cmd, passages)
				}
				fmt.Fprintln(out)

				saveExchange(cmd, question, answer, providerName, completer.ModelName())
			}
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", provider.Gemini,
		"LLM provider (gemini, groq, spanish-llm)")
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the retrieved passages")
	return cmd
}
