package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns start, then start+step, and so on.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t)

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 8)

	opts, err := s.GetStatusOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultStatusOptions, opts)
	require.NoError(t, s.Ping(context.Background()))
}

func TestAddCaseValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCase(ctx, Case{SubscriberNumber: "S-1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer_name", verr.Field)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "   "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subscriber_number", verr.Field)

	_, err = s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1", Status: "Archived"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	all, err := s.GetAllCases(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is written on validation failure")
}

func TestAddAndUpdateCaseStampsDates(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(steppingClock(start, time.Hour)))
	ctx := context.Background()

	alice, err := s.AddEmployee(ctx, "Alice")
	require.NoError(t, err)
	bob, err := s.AddEmployee(ctx, "Bob")
	require.NoError(t, err)
	catID, err := s.AddCategory(ctx, "Billing")
	require.NoError(t, err)

	id, err := s.AddCase(ctx, Case{
		CustomerName:     "  Ana Lima ",
		SubscriberNumber: "S-100",
		CategoryID:       catID,
		Status:           "in progress",
		CreatedBy:        alice,
	})
	require.NoError(t, err)

	got, err := s.GetCase(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", got.CustomerName)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, "Billing", got.CategoryName)
	assert.Equal(t, "2024-03-01 09:00:00", got.CreatedDate)
	assert.Equal(t, got.CreatedDate, got.ModifiedDate)
	assert.Equal(t, "Alice", got.CreatedByName)
	assert.Equal(t, "Alice", got.ModifiedByName)
	assert.Equal(t, "2024", got.Year())

	got.Status = StatusResolved
	got.ModifiedBy = bob
	got.SolvedBy = bob
	require.NoError(t, s.UpdateCase(ctx, id, got))

	updated, err := s.GetCase(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 09:00:00", updated.CreatedDate)
	assert.Equal(t, "2024-03-01 10:00:00", updated.ModifiedDate)
	assert.Equal(t, "Alice", updated.CreatedByName)
	assert.Equal(t, "Bob", updated.ModifiedByName)
	assert.Equal(t, "Bob", updated.SolvedByName)
	assert.Equal(t, StatusResolved, updated.Status)
}

func TestMissingCaseIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetCase(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdateCase(ctx, 42, Case{CustomerName: "A", SubscriberNumber: "1"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteCase(ctx, 42)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(42), nf.ID)
	assert.Equal(t, "case 42 not found", nf.Error())

	err = s.LogAction(ctx, 42, ActionUpdate, "x", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCaseRemovesDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddCase(ctx, Case{CustomerName: "Ana", SubscriberNumber: "S-1"})
	require.NoError(t, err)
	other, err := s.AddCase(ctx, Case{CustomerName: "Ben", SubscriberNumber: "S-2"})
	require.NoError(t, err)

	_, err = s.AddAttachment(ctx, Attachment{CaseID: id, FilePath: "/tmp/bill.pdf"})
	require.NoError(t, err)
	_, err = s.AddCorrespondence(ctx, Correspondence{CaseID: id, Sender: "Ana", MessageContent: "hello"})
	require.NoError(t, err)
	require.NoError(t, s.LogAction(ctx, id, ActionCreate, "created", 0))
	require.NoError(t, s.LogAction(ctx, other, ActionCreate, "created", 0))

	require.NoError(t, s.DeleteCase(ctx, id))

	for _, table := range []string{"attachments", "correspondences", "audit_log"} {
		var n int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE case_id = ?", id).Scan(&n))
		assert.Zero(t, n, table)
	}
	entries, err := s.GetCaseAuditLog(ctx, other)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSearchCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.AddEmployee(ctx, "Alice Stone")
	require.NoError(t, err)
	billing, err := s.AddCategory(ctx, "Billing")
	require.NoError(t, err)
	meter, err := s.AddCategory(ctx, "Meter")
	require.NoError(t, err)

	_, err = s.AddCase(ctx, Case{CustomerName: "Ana Lima", SubscriberNumber: "S-100", Address: "12 Oak Road", CategoryID: billing, CreatedBy: alice})
	require.NoError(t, err)
	_, err = s.AddCase(ctx, Case{CustomerName: "Ben Okafor", SubscriberNumber: "S-200", Address: "3 Elm St", CategoryID: meter, Status: StatusClosed})
	require.NoError(t, err)

	tests := []struct {
		field, text string
		want        []string
	}{
		{SearchCustomerName, "ana", []string{"Ana Lima"}},
		{SearchSubscriberNumber, "-200", []string{"Ben Okafor"}},
		{SearchAddress, "OAK", []string{"Ana Lima"}},
		{SearchCategory, "Meter", []string{"Ben Okafor"}},
		{SearchCategory, "met", nil},
		{SearchStatus, "Closed", []string{"Ben Okafor"}},
		{SearchEmployee, "stone", []string{"Ana Lima"}},
		{SearchAll, "b", []string{"Ben Okafor", "Ana Lima"}},
		{SearchAll, "100%", nil},
		{SearchCustomerName, "", []string{"Ben Okafor", "Ana Lima"}},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.text, func(t *testing.T) {
			got, err := s.SearchCases(ctx, tt.field, tt.text)
			require.NoError(t, err)
			var names []string
			for _, c := range got {
				names = append(names, c.CustomerName)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	_, err = s.SearchCases(ctx, "phone", "1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCasesByYearAndYears(t *testing.T) {
	clock := []time.Time{
		time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	i := 0
	s := newTestStore(t, WithClock(func() time.Time { now := clock[i]; i++; return now }))
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := s.AddCase(ctx, Case{CustomerName: name, SubscriberNumber: name})
		require.NoError(t, err)
	}

	got, err := s.GetCasesByYear(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].CustomerName, "newest first")

	years, err := s.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2023"}, years)

	all, err := s.GetAllCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].CustomerName, all[1].CustomerName, all[2].CustomerName})
}

func TestUnavailableWrapsDriverError(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.GetAllCases(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.False(t, errors.Is(err, ErrNotFound))
}
