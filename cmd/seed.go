package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample cases into an empty database",
	Long: `Seed sample cases spread over the last three years, with correspondence
and history, into the SQLite database. This is useful for trying the TUI
filters locally. Nothing is written when cases already exist.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedCase struct {
	daysAgo  int
	author   string
	category string
	c        store.Case
	messages []string
}

func sampleCases() []seedCase {
	return []seedCase{
		{daysAgo: 800, author: "Rana", category: "Billing", c: store.Case{
			CustomerName: "Ana Ruiz", SubscriberNumber: "100234", Phone: "555-0101",
			Address: "12 Main St", Status: store.StatusClosed,
			ProblemDescription: "Invoice charged twice", ActionsTaken: "Refund issued", DebtAmount: "0",
		}, messages: []string{"Refund confirmation sent"}},
		{daysAgo: 420, author: "Omar", category: "Metering", c: store.Case{
			CustomerName: "Bilal Haddad", SubscriberNumber: "100871", Phone: "555-0144",
			Address: "4 Harbour Rd", Status: store.StatusResolved,
			ProblemDescription: "Meter reading stuck", LastMeterReading: "18234", LastReadingDate: "2024-02-11",
		}, messages: []string{"Technician visit scheduled", "Meter replaced on site"}},
		{daysAgo: 300, author: "Rana", category: "Connection", c: store.Case{
			CustomerName: "Carmen Diaz", SubscriberNumber: "101002", Address: "77 Main St",
			Status: store.StatusInProgress, ProblemDescription: "Intermittent supply cuts",
		}},
		{daysAgo: 45, author: "Lea", category: "Billing", c: store.Case{
			CustomerName: "Dmitri Volkov", SubscriberNumber: "101455", Phone: "555-0199",
			Address: "9 Station Sq", Status: store.StatusNew,
			ProblemDescription: "Disputes late payment fee", DebtAmount: "42.50",
		}, messages: []string{"Asked for payment receipts"}},
		{daysAgo: 3, author: "Omar", category: "Metering", c: store.Case{
			CustomerName: "anna kowalski", SubscriberNumber: "101790", Address: "3 Mill Lane",
			Status: store.StatusNew, ProblemDescription: "Estimated reading far above usage",
			LastMeterReading: "9120",
		}},
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	// Every store write stamps the seed clock, so each sample case lands in
	// its own year and the audit entries follow it.
	var now time.Time
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	a, err := openApp(cfg, appOptions{connectBus: true, storeOpts: []store.Option{store.WithClock(clock)}})
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger.Named("seed")
	logger.Info("seeding sample data")

	existing, err := a.store.GetAllCases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	if len(existing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Database already has %d cases, skipping seed\n", len(existing))
		return nil
	}

	created := 0
	for _, s := range sampleCases() {
		now = time.Now().AddDate(0, 0, -s.daysAgo)

		c := s.c
		if c.CategoryID, err = a.svc.CategoryID(ctx, s.category); err != nil {
			return err
		}
		id, err := a.svc.CreateCase(ctx, c, s.author)
		if err != nil {
			logger.Error("failed to create sample case", zap.String("customer", c.CustomerName), zap.Error(err))
			continue
		}
		created++
		for _, m := range s.messages {
			if _, err := a.svc.AddCorrespondence(ctx, id, s.author, m, "", s.author); err != nil {
				logger.Error("failed to add sample correspondence", zap.Int64("case_id", id), zap.Error(err))
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample cases\n", created)
	return nil
}
