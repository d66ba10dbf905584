package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/config"
	"github.com/elenchus/platon/internal/index"
	"github.com/elenchus/platon/internal/provider"
)

// newInitCmd creates the init command.
// Writes the default configuration and builds the corpus index for every
// registered provider. Per-provider failures (a missing credential, an
// unreachable backend) are reported and skipped so one broken provider does
// not block the others.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration and build the corpus index for all providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); os.IsNotExist(err) || force {
				if err := cfg.WriteYAML(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s wrote %s\n", color.GreenString("✓"), path)
			}
			if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			manager := index.NewManager(cfg, nil)
			built := 0
			for _, name := range provider.Names() {
				if force {
					if err := manager.Reset(cmd.Context(), name); err != nil {
						fmt.Fprintf(out, "%s %-12s reset failed: %v\n", color.RedString("✗"), name, err)
						continue
					}
				}

				handle, err := manager.GetOrCreate(cmd.Context(), name, nil)
				if err != nil {
					fmt.Fprintf(out, "%s %-12s %v\n", color.RedString("✗"), name, err)
					continue
				}

				count, cerr := handle.Collection.Count(cmd.Context())
				_ = handle.Close()
				if cerr != nil {
					fmt.Fprintf(out, "%s %-12s %v\n", color.RedString("✗"), name, cerr)
					continue
				}

				marker := color.GreenString("✓")
				if handle.Degraded || handle.EmbedderFallback {
					marker = color.YellowString("!")
				}
				fmt.Fprintf(out, "%s %-12s %d entries\n", marker, name, count)
				built++
			}

			fmt.Fprintf(out, "\n%d of %d providers indexed\n", built, len(provider.Names()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild existing collections and overwrite the config")
	return cmd
}
