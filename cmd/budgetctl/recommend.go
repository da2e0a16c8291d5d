package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/cli"
	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/spf13/cobra"
)

var (
	flagOwner string
	flagAsOf  string
	flagJSON  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show recommended monthly budgets",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&flagOwner, "owner", "", "Restrict to one owner")
	recommendCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Reference date (YYYY-MM-DD), windows end before it")
	recommendCmd.Flags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(recommendCmd)
}

// parseAsOf returns now when value is blank.
func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

func ownerFilter(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	referenceTime, err := parseAsOf(flagAsOf, time.Now())
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewBudgetRecommendationService(store.Ledger, store.Budgets)
	recs, err := svc.CalculateRecommendations(cmd.Context(), ownerFilter(flagOwner), referenceTime)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if recs == nil {
			recs = []*domain.Recommendation{}
		}
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Println("\n  No spending in the last 6 months.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET RECOMMENDATIONS  as of %s", referenceTime.Format(time.DateOnly))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.RecommendationTable(recs)))

	return nil
}
