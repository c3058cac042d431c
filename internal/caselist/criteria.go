package caselist

import (
	"fmt"
	"strings"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// YearAll disables the year filter.
const YearAll = "All"

// Field selects which case attributes a search query is matched against.
type Field int

const (
	FieldAll Field = iota
	FieldCustomerName
	FieldSubscriberNumber
	FieldAddress
	FieldCategory
	FieldStatus
	FieldEmployeeName
)

var fieldNames = map[Field]string{
	FieldAll:              "all",
	FieldCustomerName:     "customer",
	FieldSubscriberNumber: "subscriber",
	FieldAddress:          "address",
	FieldCategory:         "category",
	FieldStatus:           "status",
	FieldEmployeeName:     "employee",
}

var fieldLabels = map[Field]string{
	FieldAll:              "All fields",
	FieldCustomerName:     "Customer name",
	FieldSubscriberNumber: "Subscriber number",
	FieldAddress:          "Address",
	FieldCategory:         "Category",
	FieldStatus:           "Status",
	FieldEmployeeName:     "Employee",
}

// Fields lists every selector in picker order.
func Fields() []Field {
	return []Field{FieldAll, FieldCustomerName, FieldSubscriberNumber, FieldAddress,
		FieldCategory, FieldStatus, FieldEmployeeName}
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Label is the human-readable name shown in pickers.
func (f Field) Label() string { return fieldLabels[f] }

func (f Field) valid() bool {
	_, ok := fieldNames[f]
	return ok
}

// Exact reports whether the field is a closed-choice picker matched by
// equality rather than substring.
func (f Field) Exact() bool {
	return f == FieldCategory || f == FieldStatus
}

// StoreField maps the selector to the store's search field name.
func (f Field) StoreField() string {
	switch f {
	case FieldCustomerName:
		return store.SearchCustomerName
	case FieldSubscriberNumber:
		return store.SearchSubscriberNumber
	case FieldAddress:
		return store.SearchAddress
	case FieldCategory:
		return store.SearchCategory
	case FieldStatus:
		return store.SearchStatus
	case FieldEmployeeName:
		return store.SearchEmployee
	default:
		return store.SearchAll
	}
}

// ParseField maps a user-supplied selector name to a Field.
func ParseField(s string) (Field, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return FieldAll, nil
	}
	for f, n := range fieldNames {
		if n == norm {
			return f, nil
		}
	}
	return FieldAll, fmt.Errorf("unknown search field %q (want one of all, customer, subscriber, address, category, status, employee)", s)
}

// SortKey orders the displayed list.
type SortKey int

const (
	SortCreatedDesc SortKey = iota
	SortCreatedAsc
	SortNameAsc
	SortNameDesc
)

// DefaultSort is the order a fresh load starts with.
const DefaultSort = SortCreatedDesc

var sortNames = map[SortKey]string{
	SortCreatedDesc: "created-desc",
	SortCreatedAsc:  "created-asc",
	SortNameAsc:     "name-asc",
	SortNameDesc:    "name-desc",
}

var sortLabels = map[SortKey]string{
	SortCreatedDesc: "Newest first",
	SortCreatedAsc:  "Oldest first",
	SortNameAsc:     "Name A-Z",
	SortNameDesc:    "Name Z-A",
}

// SortKeys lists every sort key in picker order.
func SortKeys() []SortKey {
	return []SortKey{SortCreatedDesc, SortCreatedAsc, SortNameAsc, SortNameDesc}
}

func (k SortKey) String() string {
	if n, ok := sortNames[k]; ok {
		return n
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

func (k SortKey) Label() string { return sortLabels[k] }

// ParseSortKey maps a user-supplied sort name to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return DefaultSort, nil
	}
	for k, n := range sortNames {
		if n == norm {
			return k, nil
		}
	}
	return DefaultSort, fmt.Errorf("unknown sort key %q (want one of created-desc, created-asc, name-asc, name-desc)", s)
}

// Criterion is one search: a field selector and the query text.
type Criterion struct {
	Field Field
	Query string
}

// Empty reports whether the criterion passes every case through.
func (c Criterion) Empty() bool {
	return c.Query == ""
}
