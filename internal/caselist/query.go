package caselist

import (
	"context"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// StoreView computes the same view as a Controller with the given criteria,
// but pushes the year or an exact-match search down to the store. The
// remaining stages run in memory so the result matches the in-memory
// pipeline.
//
// Substring searches are not pushed down: SQLite LIKE folds ASCII case only,
// while the in-memory match folds Unicode case ("öz" finds "Özil", "i" finds
// "İ"), so a LIKE prefilter could drop rows the controller keeps.
func StoreView(ctx context.Context, st CaseStore, year string, crit Criterion, key SortKey, sorted bool) ([]store.Case, error) {
	var (
		cases []store.Case
		err   error
	)
	switch {
	case year != "" && year != YearAll:
		cases, err = st.GetCasesByYear(ctx, year)
		if err == nil {
			cases = Search(cases, crit)
		}
	case !crit.Empty() && crit.Field.Exact():
		cases, err = st.SearchCases(ctx, crit.Field.StoreField(), crit.Query)
	default:
		cases, err = st.GetAllCases(ctx)
		if err == nil {
			cases = Search(cases, crit)
		}
	}
	if err != nil {
		return nil, err
	}
	if sorted {
		SortCases(cases, key)
	}
	return cases, nil
}
