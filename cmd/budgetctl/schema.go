package main

import (
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/config"
	"github.com/dafibh/fortuna/fortuna-budget/internal/repository"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the store schema",
}

var schemaUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending schema migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := repository.Migrate(cfg); err != nil {
			return err
		}
		fmt.Printf("  Schema up to date (%s)\n", cfg.StoreDriver)
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaUpCmd)
	rootCmd.AddCommand(schemaCmd)
}
