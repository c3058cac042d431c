package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/customer-issues/internal/caselist"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases with the same filters as the TUI",
	Long: `List cases from the database in a simple text format.
This command works in any terminal environment and provides an alternative
to the TUI when terminal capabilities are limited.

The year filter, search and sort behave exactly like the TUI pickers: the
year filter is applied first, then the search, then the sort. Without
--sort the store's order (newest first) is kept.

Examples:
  # List all cases
  issues list

  # Cases created in 2024 whose customer name contains "ana"
  issues list --year 2024 --field customer --query ana

  # All open cases, oldest first
  issues list --field status --query New --sort created-asc

  # Push the filter down to SQL instead of filtering in memory
  issues list --field address --query "main st" --store-query`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listYear       string
	listField      string
	listQuery      string
	listSort       string
	listLimit      int
	listJSON       bool
	listStoreQuery bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listYear, "year", caselist.YearAll, "Only cases whose created date starts with this year")
	listCmd.Flags().StringVar(&listField, "field", "all", "Search field: all, customer, subscriber, address, category, status, employee")
	listCmd.Flags().StringVar(&listQuery, "query", "", "Search text (substring, case-insensitive; exact for category and status)")
	listCmd.Flags().StringVar(&listSort, "sort", caselist.DefaultSort.String(), "Sort: created-desc, created-asc, name-asc, name-desc")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of cases to show (0 = all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print cases as JSON")
	listCmd.Flags().BoolVar(&listStoreQuery, "store-query", false, "Filter in SQL rather than in memory")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	field, err := caselist.ParseField(listField)
	if err != nil {
		return err
	}
	key, err := caselist.ParseSortKey(listSort)
	if err != nil {
		return err
	}
	sorted := cmd.Flags().Changed("sort")

	a, err := openApp(GetConfig(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	var cases []store.Case
	total := -1
	if listStoreQuery {
		cases, err = caselist.StoreView(ctx, a.store, listYear, caselist.Criterion{Field: field, Query: listQuery}, key, sorted)
		if err != nil {
			return fmt.Errorf("failed to list cases: %w", err)
		}
	} else {
		ctrl := caselist.NewController(a.store, nil, caselist.WithLogger(a.logger))
		if err := ctrl.LoadAll(ctx); err != nil {
			return fmt.Errorf("failed to list cases: %w", err)
		}
		ctrl.SetYearFilter(listYear)
		ctrl.SetSearch(field, listQuery)
		if sorted {
			ctrl.SetSort(key)
		}
		cases = ctrl.Displayed()
		total = ctrl.Total()
	}

	if listLimit > 0 && len(cases) > listLimit {
		cases = cases[:listLimit]
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cases)
	}
	return printCases(out, cases, total)
}

func printCases(w io.Writer, cases []store.Case, total int) error {
	if len(cases) == 0 {
		fmt.Fprintln(w, "No cases found.")
		return nil
	}

	if total >= 0 {
		fmt.Fprintf(w, "Showing %d of %d cases:\n\n", len(cases), total)
	} else {
		fmt.Fprintf(w, "Found %d cases:\n\n", len(cases))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCUSTOMER\tSUBSCRIBER\tCATEGORY\tSTATUS\tCREATED BY")
	for _, c := range cases {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.CreatedDate, c.CustomerName, c.SubscriberNumber, c.CategoryName, c.Status, c.CreatedByName)
	}
	return tw.Flush()
}
