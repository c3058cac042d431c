package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	attDescription string

	corrSender   string
	corrSentDate string
)

var attachmentCmd = &cobra.Command{
	Use:     "attachment",
	Aliases: []string{"att"},
	Short:   "Manage file attachments of a case",
	Long: `Record, list and delete files attached to a case. Only the path and
metadata are stored; the file itself stays where it is.

Examples:
  issues attachment add 12 ./scans/meter.jpg --description "meter photo"
  issues attachment list 12
  issues attachment delete 7`,
}

var attachmentAddCmd = &cobra.Command{
	Use:   "add <case-id> <path>",
	Short: "Attach a file to a case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{connectBus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.svc.AddAttachment(cmd.Context(), caseID, args[1], attDescription, a.cfg.Actor)
		if err != nil {
			return fmt.Errorf("failed to add attachment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added attachment %d to case %d\n", id, caseID)
		return nil
	},
}

var attachmentListCmd = &cobra.Command{
	Use:   "list <case-id>",
	Short: "List attachments of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		atts, err := a.store.GetAttachments(cmd.Context(), caseID)
		if err != nil {
			return err
		}
		if len(atts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No attachments.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILE\tTYPE\tUPLOADED\tBY\tDESCRIPTION\tPATH")
		for _, att := range atts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				att.ID, att.FileName, att.FileType, att.UploadDate, att.UploadedByName, att.Description, att.FilePath)
		}
		return tw.Flush()
	},
}

var attachmentDeleteCmd = &cobra.Command{
	Use:   "delete <attachment-id>",
	Short: "Delete an attachment record",
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

		if err := a.svc.DeleteAttachment(cmd.Context(), id, a.cfg.Actor); err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted attachment %d\n", id)
		return nil
	},
}

var correspondenceCmd = &cobra.Command{
	Use:     "correspondence",
	Aliases: []string{"corr"},
	Short:   "Manage numbered correspondence of a case",
	Long: `Every message gets a per-case sequence number and a per-year number.
Numbers are never reused, even after a delete.

Examples:
  issues correspondence add 12 "Meter replaced on site" --sender "Field team"
  issues correspondence next 12
  issues correspondence list 12
  issues correspondence delete 31`,
}

var correspondenceAddCmd = &cobra.Command{
	Use:   "add <case-id> <message>",
	Short: "Record a message against a case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{connectBus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		sender := corrSender
		if sender == "" {
			sender = a.cfg.Actor
		}
		c, err := a.svc.AddCorrespondence(cmd.Context(), caseID, sender, args[1], corrSentDate, a.cfg.Actor)
		if err != nil {
			return fmt.Errorf("failed to add correspondence: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added correspondence #%d (%d/%s) to case %d\n",
			c.SequenceNumber, c.YearlySequenceNumber, yearPrefix(c.CreatedDate), caseID)
		return nil
	},
}

var correspondenceListCmd = &cobra.Command{
	Use:   "list <case-id>",
	Short: "List correspondence of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		corrs, err := a.store.GetCorrespondences(cmd.Context(), caseID)
		if err != nil {
			return err
		}
		if len(corrs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No correspondence.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNO.\tYEARLY\tCREATED\tSENT\tFROM\tMESSAGE")
		for _, c := range corrs {
			fmt.Fprintf(tw, "%d\t%d\t%d/%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.SequenceNumber, c.YearlySequenceNumber, yearPrefix(c.CreatedDate),
				c.CreatedDate, c.SentDate, c.Sender, c.MessageContent)
		}
		return tw.Flush()
	},
}

var correspondenceNextCmd = &cobra.Command{
	Use:   "next <case-id>",
	Short: "Show the numbers the next message would get",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		seq, yearly, err := a.store.GetNextCorrespondenceNumbers(cmd.Context(), caseID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Next correspondence for case %d: #%d, yearly %d\n", caseID, seq, yearly)
		return nil
	},
}

var correspondenceDeleteCmd = &cobra.Command{
	Use:   "delete <correspondence-id>",
	Short: "Delete a correspondence (its numbers stay used)",
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

		if err := a.svc.DeleteCorrespondence(cmd.Context(), id, a.cfg.Actor); err != nil {
			return fmt.Errorf("failed to delete correspondence: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted correspondence %d\n", id)
		return nil
	},
}

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage employees recorded as case authors",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.svc.ResolveActor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Employee %q has id %d\n", args[0], id)
		return nil
	},
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		emps, err := a.store.GetEmployees(cmd.Context())
		if err != nil {
			return err
		}
		for _, e := range emps {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Name)
		}
		return nil
	},
}

var employeeDeleteCmd = &cobra.Command{
	Use:   "delete <employee-id>",
	Short: "Delete an employee; records they authored keep no author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.DeleteEmployee(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted employee %d\n", id)
		return nil
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage case categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.store.AddCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category %q has id %d\n", args[0], id)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories and status options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(GetConfig(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		cats, err := a.store.GetCategories(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Categories:")
		for _, c := range cats {
			fmt.Fprintf(out, "  %d\t%s\n", c.ID, c.Name)
		}

		statuses, err := a.store.GetStatusOptions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Statuses:")
		for _, s := range statuses {
			fmt.Fprintf(out, "  %s\t%s\n", s.Name, s.ColorCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attachmentCmd, correspondenceCmd, employeeCmd, categoryCmd)

	attachmentCmd.AddCommand(attachmentAddCmd, attachmentListCmd, attachmentDeleteCmd)
	attachmentAddCmd.Flags().StringVar(&attDescription, "description", "", "Attachment description")

	correspondenceCmd.AddCommand(correspondenceAddCmd, correspondenceListCmd, correspondenceNextCmd, correspondenceDeleteCmd)
	correspondenceAddCmd.Flags().StringVar(&corrSender, "sender", "", "Sender name (default: the actor)")
	correspondenceAddCmd.Flags().StringVar(&corrSentDate, "sent-date", "", "Date the message was sent")

	employeeCmd.AddCommand(employeeAddCmd, employeeListCmd, employeeDeleteCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
}

func yearPrefix(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
