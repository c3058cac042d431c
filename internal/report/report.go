// Package report renders a printable plain-text summary of one case.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// errWriter remembers the first write error so the body can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// WriteCase writes the case fields followed by its attachments,
// correspondences and audit history.
func WriteCase(w io.Writer, c store.Case, atts []store.Attachment, corrs []store.Correspondence, audit []store.AuditEntry) error {
	ew := &errWriter{w: w}

	ew.printf("========== Customer Case Report ==========\n\n")
	ew.printf("--- Case ---\n")
	for _, f := range []struct{ label, value string }{
		{"Case number", strconv.FormatInt(c.ID, 10)},
		{"Customer name", c.CustomerName},
		{"Subscriber number", c.SubscriberNumber},
		{"Phone", c.Phone},
		{"Address", c.Address},
		{"Category", c.CategoryName},
		{"Status", string(c.Status)},
		{"Problem description", c.ProblemDescription},
		{"Actions taken", c.ActionsTaken},
		{"Last meter reading", c.LastMeterReading},
		{"Last reading date", c.LastReadingDate},
		{"Debt amount", c.DebtAmount},
		{"Created", c.CreatedDate},
		{"Modified", c.ModifiedDate},
		{"Created by", c.CreatedByName},
		{"Last modified by", c.ModifiedByName},
		{"Solved by", c.SolvedByName},
	} {
		ew.printf("%s: %s\n", f.label, f.value)
	}

	ew.printf("\n--- Attachments ---\n")
	if len(atts) == 0 {
		ew.printf("No attachments\n")
	}
	for _, a := range atts {
		ew.printf("File: %s | Description: %s | Date: %s\n", a.FileName, a.Description, a.UploadDate)
	}

	ew.printf("\n--- Correspondence ---\n")
	if len(corrs) == 0 {
		ew.printf("No correspondence\n")
	}
	for _, m := range corrs {
		ew.printf("#%d (%d/%s) From: %s | Date: %s\nContent: %s\n---\n",
			m.SequenceNumber, m.YearlySequenceNumber, yearOf(m.CreatedDate), m.Sender, m.CreatedDate, m.MessageContent)
	}

	ew.printf("\n--- Audit log ---\n")
	if len(audit) == 0 {
		ew.printf("No audit entries\n")
	}
	for _, e := range audit {
		ew.printf("%s | %s | %s | %s\n", e.ActionType, e.Description, e.PerformedByName, e.Timestamp)
	}
	return ew.err
}

func yearOf(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}
