package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Ashfaaq98/customer-issues/internal/report"
	"github.com/Ashfaaq98/customer-issues/internal/service"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Create, edit, show and delete cases",
	Long: `Manage individual cases. Every change is written to the case's audit
history and announced on the change feed so running consoles refresh.

Examples:
  issues case add --customer "Ana Ruiz" --subscriber 100234 --category Billing
  issues case update 12 --status Resolved --solved-by "Omar"
  issues case show 12
  issues case show 12 --report --out ./reports
  issues case delete 12 --yes`,
}

// caseFields holds the editable case flags shared by add and update.
type caseFields struct {
	customer, subscriber, phone, address string
	category, status                     string
	problem, actions                     string
	meter, readingDate, debt             string
	solvedBy                             string
}

func (f *caseFields) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.customer, "customer", "", "Customer name")
	fs.StringVar(&f.subscriber, "subscriber", "", "Subscriber number")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.address, "address", "", "Address")
	fs.StringVar(&f.category, "category", "", "Category name (created when unknown)")
	fs.StringVar(&f.status, "status", "", "Status: New, InProgress, Resolved, Closed")
	fs.StringVar(&f.problem, "problem", "", "Problem description")
	fs.StringVar(&f.actions, "actions", "", "Actions taken")
	fs.StringVar(&f.meter, "meter", "", "Last meter reading")
	fs.StringVar(&f.readingDate, "reading-date", "", "Last meter reading date")
	fs.StringVar(&f.debt, "debt", "", "Debt amount")
	fs.StringVar(&f.solvedBy, "solved-by", "", "Employee who solved the case")
}

// apply copies the flags set on the command line onto c.
func (f *caseFields) apply(cmd *cobra.Command, svc *service.Service, c *store.Case) error {
	ctx := cmd.Context()
	changed := cmd.Flags().Changed
	strs := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"customer", f.customer, &c.CustomerName},
		{"subscriber", f.subscriber, &c.SubscriberNumber},
		{"phone", f.phone, &c.Phone},
		{"address", f.address, &c.Address},
		{"problem", f.problem, &c.ProblemDescription},
		{"actions", f.actions, &c.ActionsTaken},
		{"meter", f.meter, &c.LastMeterReading},
		{"reading-date", f.readingDate, &c.LastReadingDate},
		{"debt", f.debt, &c.DebtAmount},
	}
	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.src
		}
	}

	if changed("status") {
		st, ok := store.ParseStatus(f.status)
		if !ok {
			return fmt.Errorf("unknown status %q", f.status)
		}
		c.Status = st
	}
	if changed("category") {
		id, err := svc.CategoryID(ctx, f.category)
		if err != nil {
			return err
		}
		c.CategoryID = id
	}
	if changed("solved-by") {
		c.SolvedBy = 0
		if f.solvedBy != "" {
			id, err := svc.ResolveActor(ctx, f.solvedBy)
			if err != nil {
				return err
			}
			c.SolvedBy = id
		}
	}
	return nil
}

var (
	addFields    caseFields
	updateFields caseFields

	showJSON      bool
	showReport    bool
	showReportOut string
	deleteConfirm bool
)

var caseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a case",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(GetConfig(), appOptions{connectBus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		var c store.Case
		if err := addFields.apply(cmd, a.svc, &c); err != nil {
			return err
		}
		id, err := a.svc.CreateCase(cmd.Context(), c, a.cfg.Actor)
		if err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created case %d\n", id)
		return nil
	},
}

var caseUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{connectBus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.store.GetCase(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := updateFields.apply(cmd, a.svc, &c); err != nil {
			return err
		}
		if err := a.svc.UpdateCase(cmd.Context(), id, c, a.cfg.Actor); err != nil {
			return fmt.Errorf("failed to update case: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated case %d\n", id)
		return nil
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a case with its attachments, correspondence and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.store.GetCase(ctx, id)
		if err != nil {
			return err
		}
		if showJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}

		atts, err := a.store.GetAttachments(ctx, id)
		if err != nil {
			return err
		}
		corrs, err := a.store.GetCorrespondences(ctx, id)
		if err != nil {
			return err
		}
		audit, err := a.store.GetCaseAuditLog(ctx, id)
		if err != nil {
			return err
		}

		if !showReport {
			return report.WriteCase(cmd.OutOrStdout(), c, atts, corrs, audit)
		}

		dir := showReportOut
		if dir == "" {
			dir = a.cfg.Reports.Dir
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("case_%d_report.txt", id))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.WriteCase(f, c, atts, corrs, audit); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	},
}

var caseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a case with its attachments, correspondence and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !deleteConfirm && !confirm(cmd, fmt.Sprintf("Delete case %d and everything attached to it?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
			return nil
		}

		a, err := openApp(GetConfig(), appOptions{connectBus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.DeleteCase(cmd.Context(), id, a.cfg.Actor); err != nil {
			return fmt.Errorf("failed to delete case: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted case %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(caseCmd)
	caseCmd.AddCommand(caseAddCmd, caseUpdateCmd, caseShowCmd, caseDeleteCmd)

	addFields.register(caseAddCmd.Flags())
	caseAddCmd.MarkFlagRequired("customer")
	updateFields.register(caseUpdateCmd.Flags())

	caseShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the case as JSON")
	caseShowCmd.Flags().BoolVar(&showReport, "report", false, "Write a text report file instead of printing")
	caseShowCmd.Flags().StringVar(&showReportOut, "out", "", "Report directory (default from reports.dir)")

	caseDeleteCmd.Flags().BoolVarP(&deleteConfirm, "yes", "y", false, "Automatically confirm the delete")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
