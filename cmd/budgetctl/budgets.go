package main

import (
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/cli"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagCategory string
	flagAmount   string
	flagInactive bool
	flagOff      bool
)

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Inspect and edit budget templates",
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the subcategory budgets of a category",
	RunE:  runBudgetsList,
}

var budgetsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace a category budget",
	RunE:  runBudgetsSet,
}

var budgetsGroupCmd = &cobra.Command{
	Use:   "group",
	Short: "Budget a category as one pooled group (use --off to split by subcategory)",
	RunE:  runBudgetsGroup,
}

func init() {
	budgetsCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Category name")
	budgetsSetCmd.Flags().StringVar(&flagAmount, "amount", "", "Monthly budget amount")
	budgetsSetCmd.Flags().BoolVar(&flagInactive, "inactive", false, "Store the budget as inactive")
	budgetsGroupCmd.Flags().BoolVar(&flagOff, "off", false, "Budget each subcategory separately")

	budgetsCmd.AddCommand(budgetsListCmd, budgetsSetCmd, budgetsGroupCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	budgets, err := service.NewBudgetTemplateService(store.Budgets).ListSubcategoryBudgets(cmd.Context(), flagCategory)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Printf("\n  No subcategory budgets for %q.\n", flagCategory)
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.SubcategoryBudgetTable(budgets)))
	return nil
}

func runBudgetsSet(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(flagAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q", flagAmount)
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	budget, err := service.NewBudgetTemplateService(store.Budgets).SetCategoryBudget(cmd.Context(), flagCategory, amount, !flagInactive)
	if err != nil {
		return err
	}

	fmt.Printf("  %s budget set to %s\n", budget.Category, cli.FormatMoney(budget.BudgetAmount))
	return nil
}

func runBudgetsGroup(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := service.NewBudgetTemplateService(store.Budgets).SetBudgetByCategory(cmd.Context(), flagCategory, !flagOff); err != nil {
		return err
	}

	if flagOff {
		fmt.Printf("  %s is budgeted per subcategory\n", flagCategory)
	} else {
		fmt.Printf("  %s is budgeted as one group\n", flagCategory)
	}
	return nil
}
