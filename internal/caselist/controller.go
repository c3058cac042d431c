package caselist

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

const noSelection = -1

// Controller owns the loaded case collection, the year/search/sort criteria
// and the selection cursor, and keeps the displayed list consistent with
// them. It is not safe for concurrent use.
type Controller struct {
	store     CaseStore
	presenter Presenter
	observer  Observer
	logger    *zap.Logger

	all       []store.Case
	displayed []store.Case
	years     []string

	categories Lookup
	employees  Lookup
	statuses   map[string]string

	year   string
	search Criterion
	sort   SortKey
	// sorted is set once SetSort has been called since the last LoadAll.
	// Until then the view keeps the store's order.
	sorted bool

	selected int
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.Named("caselist")
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// NewController creates a controller over st. A nil presenter is allowed for
// headless use.
func NewController(st CaseStore, presenter Presenter, opts ...Option) *Controller {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	c := &Controller{
		store:      st,
		presenter:  presenter,
		logger:     zap.NewNop(),
		categories: Lookup{},
		employees:  Lookup{},
		statuses:   map[string]string{},
		year:       YearAll,
		sort:       DefaultSort,
		selected:   noSelection,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAll fetches every case, resets all criteria to their defaults and
// selects the first case. On a store failure the view is emptied and the
// error returned.
func (c *Controller) LoadAll(ctx context.Context) error {
	err := c.fetch(ctx)
	c.year = YearAll
	c.search = Criterion{}
	c.sort = DefaultSort
	c.sorted = false
	c.recompute()
	c.resetSelection()
	c.notify()
	return err
}

// Reload refetches while keeping the current criteria. The selection stays on
// the same case when it is still displayed.
func (c *Controller) Reload(ctx context.Context) error {
	prev, hadSel := c.selectedID()
	err := c.fetch(ctx)
	c.recompute()
	c.resetSelection()
	if hadSel {
		for i, cs := range c.displayed {
			if cs.ID == prev {
				c.selected = i
				break
			}
		}
	}
	c.notify()
	return err
}

// SetYearFilter restricts the view to cases created in year. YearAll or ""
// clears the filter.
func (c *Controller) SetYearFilter(year string) {
	if year == "" {
		year = YearAll
	}
	c.year = year
	c.recompute()
	c.resetSelection()
	c.notify()
}

// SetSearch applies a search criterion. Passing a Field outside the declared
// constants panics.
func (c *Controller) SetSearch(field Field, query string) {
	if !field.valid() {
		panic(fmt.Sprintf("caselist: SetSearch with unknown field %d", int(field)))
	}
	c.search = Criterion{Field: field, Query: query}
	c.recompute()
	c.resetSelection()
	c.notify()
}

// SetSort stably reorders the displayed list. The selection index is kept,
// clamped to the list.
func (c *Controller) SetSort(key SortKey) {
	c.sort = key
	c.sorted = true
	SortCases(c.displayed, key)
	c.selected = c.clamp(c.selected)
	c.observe()
	c.notify()
}

// MoveSelection moves the cursor by delta, clamped. It does nothing on an
// empty list.
func (c *Controller) MoveSelection(delta int) {
	if len(c.displayed) == 0 {
		return
	}
	c.selected = c.clamp(c.selected + delta)
	c.notifySelection()
}

// SelectByIndex jumps to index i, clamped.
func (c *Controller) SelectByIndex(i int) {
	if len(c.displayed) == 0 {
		return
	}
	c.selected = c.clamp(i)
	c.notifySelection()
}

// Displayed returns a copy of the current view.
func (c *Controller) Displayed() []store.Case {
	out := make([]store.Case, len(c.displayed))
	copy(out, c.displayed)
	return out
}

// Selected returns the selected case.
func (c *Controller) Selected() (store.Case, bool) {
	if c.selected == noSelection {
		return store.Case{}, false
	}
	return c.displayed[c.selected], true
}

// SelectedIndex returns the cursor position, or ok=false when the view is empty.
func (c *Controller) SelectedIndex() (int, bool) {
	return c.selected, c.selected != noSelection
}

func (c *Controller) YearFilter() string           { return c.year }
func (c *Controller) Search() Criterion            { return c.search }
func (c *Controller) SortKey() SortKey             { return c.sort }
func (c *Controller) Years() []string              { return append([]string(nil), c.years...) }
func (c *Controller) Total() int                   { return len(c.all) }
func (c *Controller) CategoryName(id int64) string { return c.categories.Resolve(id) }
func (c *Controller) EmployeeName(id int64) string { return c.employees.Resolve(id) }

// Categories returns the category names known at the last load.
func (c *Controller) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, n := range c.categories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StatusColor returns the configured colour for a status name.
func (c *Controller) StatusColor(status string) string {
	if col, ok := c.statuses[status]; ok {
		return col
	}
	return store.StatusColor(status)
}

// fetch refreshes the collection and the lookups. Lookup failures are logged
// and leave names unresolved; a case fetch failure empties the collection.
func (c *Controller) fetch(ctx context.Context) error {
	if cats, err := c.store.GetCategories(ctx); err != nil {
		c.logger.Warn("failed to load categories", zap.Error(err))
	} else {
		c.categories = CategoryLookup(cats)
	}
	if emps, err := c.store.GetEmployees(ctx); err != nil {
		c.logger.Warn("failed to load employees", zap.Error(err))
	} else {
		c.employees = EmployeeLookup(emps)
	}
	if opts, err := c.store.GetStatusOptions(ctx); err != nil {
		c.logger.Warn("failed to load status options", zap.Error(err))
	} else {
		c.statuses = make(map[string]string, len(opts))
		for _, o := range opts {
			c.statuses[o.Name] = o.ColorCode
		}
	}

	cases, err := c.store.GetAllCases(ctx)
	if err != nil {
		c.logger.Error("failed to load cases", zap.Error(err))
		c.all = nil
		c.years = nil
		return fmt.Errorf("load cases: %w", err)
	}
	for i := range cases {
		fillNames(&cases[i], c.categories, c.employees)
	}
	c.all = cases
	c.years = YearsOf(cases)
	c.logger.Debug("cases loaded", zap.Int("count", len(cases)), zap.Strings("years", c.years))
	return nil
}

// recompute derives the view as year, then search, then sort.
func (c *Controller) recompute() {
	v := FilterYear(c.all, c.year)
	v = Search(v, c.search)
	if c.sorted {
		SortCases(v, c.sort)
	}
	c.displayed = v
	c.observe()
}

func (c *Controller) observe() {
	if c.observer != nil {
		c.observer.ViewRecomputed(len(c.displayed))
	}
}

func (c *Controller) resetSelection() {
	if len(c.displayed) == 0 {
		c.selected = noSelection
		return
	}
	c.selected = 0
}

func (c *Controller) clamp(i int) int {
	n := len(c.displayed)
	if n == 0 {
		return noSelection
	}
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func (c *Controller) selectedID() (int64, bool) {
	cs, ok := c.Selected()
	return cs.ID, ok
}

func (c *Controller) notify() {
	c.presenter.ViewChanged(c.Displayed())
	c.notifySelection()
}

func (c *Controller) notifySelection() {
	id, ok := c.selectedID()
	c.presenter.SelectionChanged(id, ok)
}
