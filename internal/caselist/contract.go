package caselist

import (
	"context"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// CaseStore is the slice of the persistence layer the controller reads from.
// *store.Store satisfies it.
type CaseStore interface {
	GetAllCases(ctx context.Context) ([]store.Case, error)
	GetCasesByYear(ctx context.Context, year string) ([]store.Case, error)
	SearchCases(ctx context.Context, field, text string) ([]store.Case, error)
	GetCategories(ctx context.Context) ([]store.Category, error)
	GetEmployees(ctx context.Context) ([]store.Employee, error)
	GetStatusOptions(ctx context.Context) ([]store.StatusOption, error)
}

// Presenter renders the controller's state. Both calls happen synchronously
// on the goroutine that invoked the controller.
type Presenter interface {
	// ViewChanged receives a copy of the displayed list.
	ViewChanged(cases []store.Case)
	// SelectionChanged reports the selected case id, or ok=false when the
	// displayed list is empty.
	SelectionChanged(id int64, ok bool)
}

// Observer is told about every recompute of the displayed list.
type Observer interface {
	ViewRecomputed(size int)
}

type nopPresenter struct{}

func (nopPresenter) ViewChanged([]store.Case)     {}
func (nopPresenter) SelectionChanged(int64, bool) {}
