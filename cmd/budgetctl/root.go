package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/fortuna/fortuna-budget/internal/config"
	"github.com/dafibh/fortuna/fortuna-budget/internal/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Budget recommendation and migration tool",
	Long:          "Compute spend-based budget recommendations and migrate category budgets to subcategories.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("budgetctl failed")
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// openStore loads configuration from the environment and opens the configured store.
func openStore(ctx context.Context) (*repository.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return repository.Open(ctx, cfg)
}
