// Package cmd provides the CLI commands for platon.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elenchus/platon/internal/config"
	"github.com/elenchus/platon/internal/logging"
	"github.com/elenchus/platon/internal/session"
	"github.com/elenchus/platon/pkg/version"
)

var (
	configPath string
	debugMode  bool

	cfg            *config.Config
	loggingCleanup func()
)

// NewRootCmd creates the root command for the platon CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platon",
		Short: "Dialogue assistant over the works of Plato",
		Long: `Platon answers questions about Plato's dialogues using retrieval-augmented
generation over a pre-analyzed corpus of Platonic texts.

Each LLM provider keeps its own persisted vector index; the corpus is merged
into a provider's index on first use and your own documents can be indexed
alongside it.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("platon version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.platon/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setup
	cmd.PersistentPostRun = teardown

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and initializes logging before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      filepath.Join(cfg.Paths.DataDir, "logs", "platon.log"),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: debugMode,
	}
	if debugMode {
		logCfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
	}
}

// historyPath returns the chat history database location.
func historyPath() string {
	return filepath.Join(cfg.Paths.DataDir, session.HistoryFileName)
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		return err
	}
	return nil
}
