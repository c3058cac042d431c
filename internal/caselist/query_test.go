package caselist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

func TestStoreViewMatchesController(t *testing.T) {
	dates := []time.Time{
		time.Date(2022, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2023, 8, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
	}
	i := 0
	st, err := store.NewStore(":memory:", store.WithClock(func() time.Time {
		now := dates[i%len(dates)]
		i++
		return now
	}))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	emp, err := st.AddEmployee(ctx, "Rana")
	require.NoError(t, err)
	cat, err := st.AddCategory(ctx, "Billing")
	require.NoError(t, err)
	for _, c := range []store.Case{
		{CustomerName: "Ali Hassan", SubscriberNumber: "100", CategoryID: cat},
		{CustomerName: "Sami", SubscriberNumber: "200", CreatedBy: emp},
		{CustomerName: "Alia", SubscriberNumber: "300", Status: store.StatusClosed},
		{CustomerName: "Basel", SubscriberNumber: "410", Address: "Ali Street"},
		{CustomerName: "Özil", SubscriberNumber: "500", Address: "Ölstraße 3"},
		{CustomerName: "İpek", SubscriberNumber: "600"},
	} {
		_, err := st.AddCase(ctx, c)
		require.NoError(t, err)
	}

	ctrl := NewController(st, nil)
	require.NoError(t, ctrl.LoadAll(ctx))

	tests := []struct {
		year string
		crit Criterion
	}{
		{YearAll, Criterion{}},
		{"2023", Criterion{}},
		{"2023", Criterion{Field: FieldCustomerName, Query: "ali"}},
		{YearAll, Criterion{Field: FieldCustomerName, Query: "ALI"}},
		{YearAll, Criterion{Field: FieldAll, Query: "ali"}},
		{YearAll, Criterion{Field: FieldCategory, Query: "Billing"}},
		{YearAll, Criterion{Field: FieldStatus, Query: "Closed"}},
		{YearAll, Criterion{Field: FieldEmployeeName, Query: "ran"}},
		{YearAll, Criterion{Field: FieldSubscriberNumber, Query: "10"}},
		{YearAll, Criterion{Field: FieldCustomerName, Query: "öz"}},
		{YearAll, Criterion{Field: FieldAll, Query: "ÖLSTR"}},
		{YearAll, Criterion{Field: FieldCustomerName, Query: "i"}},
		{"2023", Criterion{Field: FieldCustomerName, Query: "öz"}},
	}
	for _, tt := range tests {
		t.Run(tt.year+"/"+tt.crit.Field.String()+"/"+tt.crit.Query, func(t *testing.T) {
			ctrl.SetYearFilter(tt.year)
			ctrl.SetSearch(tt.crit.Field, tt.crit.Query)
			ctrl.SetSort(SortNameAsc)

			got, err := StoreView(ctx, st, tt.year, tt.crit, SortNameAsc, true)
			require.NoError(t, err)
			assert.Equal(t, names(ctrl.Displayed()), names(got))
		})
	}

	got, err := StoreView(ctx, st, YearAll, Criterion{Field: FieldCustomerName, Query: "öz"}, SortNameAsc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Özil"}, names(got))
}
