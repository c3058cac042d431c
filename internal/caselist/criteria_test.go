package caselist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, err := ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.NotEmpty(t, f.Label())
	}

	got, err := ParseField(" Customer ")
	require.NoError(t, err)
	assert.Equal(t, FieldCustomerName, got)

	got, err = ParseField("")
	require.NoError(t, err)
	assert.Equal(t, FieldAll, got)

	_, err = ParseField("phone")
	assert.Error(t, err)

	assert.Equal(t, store.SearchEmployee, FieldEmployeeName.StoreField())
	assert.True(t, FieldStatus.Exact())
	assert.False(t, FieldAddress.Exact())
}

func TestParseSortKey(t *testing.T) {
	for _, k := range SortKeys() {
		got, err := ParseSortKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, got)

	_, err = ParseSortKey("id")
	assert.Error(t, err)
}

func TestPipelineStagesDoNotMutateInput(t *testing.T) {
	in := []store.Case{mkCase(1, "B", "2024-01-01 00:00:00"), mkCase(2, "A", "2023-01-01 00:00:00")}

	out := FilterYear(in, YearAll)
	SortCases(out, SortNameAsc)
	assert.Equal(t, "B", in[0].CustomerName)

	out = Search(in, Criterion{})
	out[0].CustomerName = "changed"
	assert.Equal(t, "B", in[0].CustomerName)

	assert.Equal(t, []string{"2024", "2023"}, YearsOf(in))
}

func TestLookup(t *testing.T) {
	l := EmployeeLookup([]store.Employee{{ID: 3, Name: "Rana"}})
	assert.Equal(t, "Rana", l.Resolve(3))
	assert.Equal(t, "", l.Resolve(4))
	assert.Equal(t, "", l.Resolve(0))

	c := store.Case{CategoryID: 9, CategoryName: "Kept", CreatedBy: 3}
	fillNames(&c, CategoryLookup([]store.Category{{ID: 9, Name: "Other"}}), l)
	assert.Equal(t, "Kept", c.CategoryName)
	assert.Equal(t, "Rana", c.CreatedByName)
}
