package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachments(t *testing.T) {
	s := newTestStore(t, WithClock(steppingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Minute)))
	ctx := context.Background()

	emp, err := s.AddEmployee(ctx, "Alice")
	require.NoError(t, err)
	caseID, err := s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1"})
	require.NoError(t, err)

	_, err = s.AddAttachment(ctx, Attachment{CaseID: 999, FilePath: "/x/a.png"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddAttachment(ctx, Attachment{CaseID: caseID})
	assert.ErrorIs(t, err, ErrValidation)

	id, err := s.AddAttachment(ctx, Attachment{CaseID: caseID, FilePath: "/x/photo.JPG", UploadedBy: emp, Description: "meter"})
	require.NoError(t, err)

	atts, err := s.GetAttachments(ctx, caseID)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "photo.JPG", atts[0].FileName)
	assert.Equal(t, "image", atts[0].FileType)
	assert.Equal(t, "Alice", atts[0].UploadedByName)
	assert.NotEmpty(t, atts[0].UploadDate)

	one, err := s.GetAttachment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/x/photo.JPG", one.FilePath)

	require.NoError(t, s.DeleteAttachment(ctx, id))
	assert.ErrorIs(t, s.DeleteAttachment(ctx, id), ErrNotFound)
	_, err = s.GetAttachment(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCorrespondenceNumbering(t *testing.T) {
	s := newTestStore(t, WithClock(steppingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Minute)))
	ctx := context.Background()

	a, err := s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1"})
	require.NoError(t, err)
	b, err := s.AddCase(ctx, Case{CustomerName: "Ben", SubscriberNumber: "S-2"})
	require.NoError(t, err)

	seq, yearly, err := s.GetNextCorrespondenceNumbers(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
	assert.Equal(t, 1, yearly)

	c1, err := s.AddCorrespondence(ctx, Correspondence{CaseID: a, MessageContent: "first"})
	require.NoError(t, err)
	c2, err := s.AddCorrespondence(ctx, Correspondence{CaseID: b, MessageContent: "other case"})
	require.NoError(t, err)
	c3, err := s.AddCorrespondence(ctx, Correspondence{CaseID: a, MessageContent: "second"})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 2}, []int{c1.SequenceNumber, c2.SequenceNumber, c3.SequenceNumber})
	assert.Equal(t, []int{1, 2, 3}, []int{c1.YearlySequenceNumber, c2.YearlySequenceNumber, c3.YearlySequenceNumber})

	owner, err := s.DeleteCorrespondence(ctx, c3.ID)
	require.NoError(t, err)
	assert.Equal(t, a, owner)

	c4, err := s.AddCorrespondence(ctx, Correspondence{CaseID: a, MessageContent: "third"})
	require.NoError(t, err)
	assert.Equal(t, 3, c4.SequenceNumber, "deleted numbers are not reused")
	assert.Equal(t, 4, c4.YearlySequenceNumber)

	list, err := s.GetCorrespondences(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].MessageContent)
	assert.Equal(t, "third", list[1].MessageContent)

	_, err = s.AddCorrespondence(ctx, Correspondence{CaseID: a, MessageContent: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddCorrespondence(ctx, Correspondence{CaseID: 999, MessageContent: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteCorrespondence(ctx, c3.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuditLogOrder(t *testing.T) {
	s := newTestStore(t, WithClock(steppingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Second)))
	ctx := context.Background()

	emp, err := s.AddEmployee(ctx, "Alice")
	require.NoError(t, err)
	id, err := s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1"})
	require.NoError(t, err)

	require.NoError(t, s.LogAction(ctx, id, ActionCreate, "created", emp))
	require.NoError(t, s.LogAction(ctx, id, ActionUpdate, "status changed", 0))

	entries, err := s.GetCaseAuditLog(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionUpdate, entries[0].ActionType)
	assert.Equal(t, ActionCreate, entries[1].ActionType)
	assert.Equal(t, "Alice", entries[1].PerformedByName)
	assert.Zero(t, entries[0].PerformedBy)
}

func TestEmployeesAndCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddEmployee(ctx, "Alice")
	require.NoError(t, err)
	again, err := s.AddEmployee(ctx, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, a, again)

	_, err = s.AddEmployee(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	id, err := s.EmployeeID(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, a, id)
	_, err = s.EmployeeID(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	caseID, err := s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1", CreatedBy: a})
	require.NoError(t, err)
	require.NoError(t, s.DeleteEmployee(ctx, a))
	assert.ErrorIs(t, s.DeleteEmployee(ctx, a), ErrNotFound)

	c, err := s.GetCase(ctx, caseID)
	require.NoError(t, err)
	assert.Zero(t, c.CreatedBy)
	assert.Empty(t, c.CreatedByName)

	_, err = s.AddCategory(ctx, "Meter")
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, "Billing")
	require.NoError(t, err)
	cats, err := s.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Billing", cats[0].Name)
}

func TestParseStatusAndFileType(t *testing.T) {
	st, ok := ParseStatus("In_Progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, st)
	_, ok = ParseStatus("pending")
	assert.False(t, ok)

	assert.Equal(t, "#3498db", StatusColor("New"))
	assert.Equal(t, DefaultStatusColor, StatusColor("Unknown"))
	assert.Equal(t, "pdf", FileTypeFor("bill.PDF"))
	assert.Equal(t, "other", FileTypeFor("noext"))
}
