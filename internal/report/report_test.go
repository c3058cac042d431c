package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

func TestWriteCase(t *testing.T) {
	var buf bytes.Buffer
	c := store.Case{ID: 7, CustomerName: "Ana Lima", SubscriberNumber: "S-100", Status: store.StatusNew, CategoryName: "Billing"}
	corrs := []store.Correspondence{{SequenceNumber: 2, YearlySequenceNumber: 15, Sender: "Utility", MessageContent: "Meter replaced", CreatedDate: "2024-03-01 10:00:00"}}
	audit := []store.AuditEntry{{ActionType: store.ActionCreate, Description: "Case created", PerformedByName: "Rana", Timestamp: "2024-03-01 09:00:00"}}

	require.NoError(t, WriteCase(&buf, c, nil, corrs, audit))
	out := buf.String()

	assert.Contains(t, out, "Case number: 7\n")
	assert.Contains(t, out, "Customer name: Ana Lima\n")
	assert.Contains(t, out, "Phone: \n")
	assert.Contains(t, out, "No attachments\n")
	assert.Contains(t, out, "#2 (15/2024) From: Utility")
	assert.Contains(t, out, "Content: Meter replaced\n")
	assert.Contains(t, out, "Create | Case created | Rana | 2024-03-01 09:00:00\n")
	assert.NotContains(t, out, "No audit entries")
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	if f.n > 2 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestWriteCaseReportsWriteError(t *testing.T) {
	w := &failingWriter{}
	err := WriteCase(w, store.Case{}, nil, nil, nil)
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 3, w.n)
}
