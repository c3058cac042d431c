package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusFallsBackToNull(t *testing.T) {
	_, ok := NewBus("").(*NullBus)
	assert.True(t, ok)

	_, ok = NewBus("not a url").(*NullBus)
	assert.True(t, ok)
}

func TestNullBus(t *testing.T) {
	b := NewNullBus()
	ctx := context.Background()

	require.NoError(t, b.PublishCaseChange(ctx, CaseChange{CaseID: 1, Action: ActionCreated}))
	require.NoError(t, b.HealthCheck(ctx))

	stats, err := b.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "null", stats["type"])

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	called := false
	err = b.ReadCaseChanges(ctx, "g", "c", func(context.Context, CaseChange) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	assert.NoError(t, b.Close())
}

func TestCaseChangeFieldsRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := CaseChange{CaseID: 42, Action: ActionUpdated, Actor: "Rana"}.complete(now)
	assert.NotEmpty(t, c.MessageID)
	assert.Equal(t, now.Unix(), c.Timestamp)

	fields := c.fields()
	assert.Equal(t, int64(42), fields["case_id"])

	// Redis hands every value back as a string.
	raw := map[string]string{
		"message_id": c.MessageID,
		"case_id":    "42",
		"action":     ActionUpdated,
		"actor":      "Rana",
		"timestamp":  "1700000000",
	}
	got, err := caseChangeFromFields(raw)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = caseChangeFromFields(map[string]string{"case_id": "x"})
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := parseTimestamp("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts)

	ts, err = parseTimestamp("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts)

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}
