package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/index"
	"github.com/elenchus/platon/internal/provider"
)

// newResetCmd creates the reset command.
// Deletes a provider's persisted collection so the next use rebuilds it.
func newResetCmd() *cobra.Command {
	var (
		providerName string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete a provider's index so it is rebuilt from the corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes",
					provider.CollectionID(providerName))
			}

			manager := index.NewManager(cfg, nil)
			if err := manager.Reset(cmd.Context(), providerName); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s\n",
				color.GreenString("✓"), provider.CollectionID(providerName))
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", provider.Gemini,
		"LLM provider (gemini, groq, spanish-llm)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
