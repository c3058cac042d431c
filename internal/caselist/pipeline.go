package caselist

import (
	"sort"
	"strings"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// The pipeline stages are pure: each returns a new slice and leaves its input
// untouched, except SortCases which reorders in place.

// FilterYear keeps cases whose created date starts with year. YearAll and the
// empty string keep everything.
func FilterYear(cases []store.Case, year string) []store.Case {
	out := make([]store.Case, 0, len(cases))
	if year == "" || year == YearAll {
		return append(out, cases...)
	}
	for _, c := range cases {
		if strings.HasPrefix(c.CreatedDate, year) {
			out = append(out, c)
		}
	}
	return out
}

// Search keeps cases matching crit. An empty query keeps everything.
func Search(cases []store.Case, crit Criterion) []store.Case {
	out := make([]store.Case, 0, len(cases))
	if crit.Empty() {
		return append(out, cases...)
	}
	q := strings.ToLower(crit.Query)
	for _, c := range cases {
		if matches(c, crit.Field, crit.Query, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c store.Case, f Field, raw, lower string) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), lower) }

	switch f {
	case FieldCustomerName:
		return contains(c.CustomerName)
	case FieldSubscriberNumber:
		return contains(c.SubscriberNumber)
	case FieldAddress:
		return contains(c.Address)
	case FieldCategory:
		return c.CategoryName == raw
	case FieldStatus:
		return string(c.Status) == raw
	case FieldEmployeeName:
		return contains(c.CreatedByName) || contains(c.ModifiedByName) || contains(c.SolvedByName)
	case FieldAll:
		for _, s := range []string{c.CustomerName, c.SubscriberNumber, c.Address, c.CategoryName,
			string(c.Status), c.CreatedByName, c.ModifiedByName, c.SolvedByName} {
			if contains(s) {
				return true
			}
		}
		return false
	}
	panic("caselist: unknown search field " + f.String())
}

// SortCases stably reorders cases by key. Descending keys invert the
// comparison, so equal keys keep their prior relative order.
func SortCases(cases []store.Case, key SortKey) {
	var less func(a, b store.Case) bool
	switch key {
	case SortCreatedAsc:
		less = func(a, b store.Case) bool { return a.CreatedDate < b.CreatedDate }
	case SortNameAsc:
		less = func(a, b store.Case) bool { return a.CustomerName < b.CustomerName }
	case SortNameDesc:
		less = func(a, b store.Case) bool { return a.CustomerName > b.CustomerName }
	default:
		less = func(a, b store.Case) bool { return a.CreatedDate > b.CreatedDate }
	}
	sort.SliceStable(cases, func(i, j int) bool { return less(cases[i], cases[j]) })
}

// YearsOf returns the distinct created-date years in cases, newest first.
func YearsOf(cases []store.Case) []string {
	seen := make(map[string]struct{})
	var years []string
	for _, c := range cases {
		y := c.Year()
		if y == "" {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
