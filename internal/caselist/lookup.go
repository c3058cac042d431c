package caselist

import "github.com/Ashfaaq98/customer-issues/internal/store"

// Lookup resolves a reference id to its display name.
type Lookup map[int64]string

func CategoryLookup(cats []store.Category) Lookup {
	l := make(Lookup, len(cats))
	for _, c := range cats {
		l[c.ID] = c.Name
	}
	return l
}

func EmployeeLookup(emps []store.Employee) Lookup {
	l := make(Lookup, len(emps))
	for _, e := range emps {
		l[e.ID] = e.Name
	}
	return l
}

// Resolve returns the name for id, or "" for zero or unknown ids.
func (l Lookup) Resolve(id int64) string {
	if id == 0 {
		return ""
	}
	return l[id]
}

// fillNames sets any empty display names on c from the lookups. Stores that
// already join names in are left as they are.
func fillNames(c *store.Case, categories, employees Lookup) {
	if c.CategoryName == "" {
		c.CategoryName = categories.Resolve(c.CategoryID)
	}
	if c.CreatedByName == "" {
		c.CreatedByName = employees.Resolve(c.CreatedBy)
	}
	if c.ModifiedByName == "" {
		c.ModifiedByName = employees.Resolve(c.ModifiedBy)
	}
	if c.SolvedByName == "" {
		c.SolvedByName = employees.Resolve(c.SolvedBy)
	}
}
