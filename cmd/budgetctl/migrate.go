package main

import (
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/cli"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Distribute category budgets across subcategories by spend share",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewBudgetMigrationService(store.Ledger, store.Budgets)
	stats, err := svc.MigrateCategoryBudgets(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET MIGRATION"))
	fmt.Println()
	fmt.Print(cli.RenderMigrationStats(stats))

	return nil
}
