package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/intake"
)

var (
	intakeWatch    bool
	intakePatterns string
	intakeMarkDone bool
	intakeActor    string
)

// intakeCmd represents the intake command
var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Load cases from JSON/JSONL files in the intake folder (optionally watch for changes)",
	Long: `Load cases from the intake directory. Supports JSONL (one case per line)
and JSON files (one case object or an array of them).

Fields: customer_name, subscriber_number, phone, address, category, status,
problem_description, actions_taken, last_meter_reading, last_reading_date,
debt_amount. Unknown categories are created.

Examples:
  # One-shot: load existing files and exit
  issues intake --intake-dir ./incoming

  # One-shot and rename processed files to *.done
  issues intake --mark-done

  # Watch mode: tail JSONL appends; new JSON files are read once their
  # writes settle and are then renamed to *.done
  issues intake --watch`,
	Args: cobra.NoArgs,
	RunE: runIntake,
}

func init() {
	rootCmd.AddCommand(intakeCmd)

	intakeCmd.Flags().BoolVar(&intakeWatch, "watch", false, "Watch directory for changes and tail JSONL files")
	intakeCmd.Flags().StringVar(&intakePatterns, "pattern", "*.jsonl,*.json", "Comma-separated glob patterns to match (e.g. \"*.jsonl,*.json\")")
	intakeCmd.Flags().BoolVar(&intakeMarkDone, "mark-done", false, "Rename fully processed files with a .done suffix (one-shot only)")
	intakeCmd.Flags().StringVar(&intakeActor, "as", "intake", "Employee name recorded as author of loaded cases")
}

func runIntake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	a, err := openApp(cfg, appOptions{connectBus: true})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := intake.FolderOptions{
		Dir:      resolvePathRelativeToBase(getWorkingDir(), cfg.Intake.Dir),
		Watch:    intakeWatch,
		Patterns: splitPatterns(intakePatterns),
		Actor:    intakeActor,
		MarkDone: intakeMarkDone,
		Logger:   a.logger,
	}
	a.logger.Info("starting intake",
		zap.String("dir", opts.Dir), zap.Bool("watch", opts.Watch), zap.Strings("patterns", opts.Patterns))

	ingestor := intake.NewFolderIngestor(a.svc, opts)
	if err := ingestor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("intake error: %w", err)
	}

	s := ingestor.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d cases, %d failed\n", s.Ingested, s.Failed)
	return nil
}

func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		patterns = []string{"*.jsonl", "*.json"}
	}
	return patterns
}
