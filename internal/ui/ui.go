package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/caselist"
	"github.com/Ashfaaq98/customer-issues/internal/metrics"
	"github.com/Ashfaaq98/customer-issues/internal/report"
	"github.com/Ashfaaq98/customer-issues/internal/service"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// UI is the terminal case browser. It renders the controller's view and
// forwards key presses and picker changes back to it. Every controller call
// happens on the tview event goroutine.
type UI struct {
	app    *tview.Application
	svc    *service.Service
	ctrl   *caselist.Controller
	logger *zap.Logger

	actor     string
	reportDir string

	// Layout components
	root        *tview.Flex
	appTitle    *tview.TextView
	yearDrop    *tview.DropDown
	fieldDrop   *tview.DropDown
	searchInput *tview.InputField
	sortDrop    *tview.DropDown
	caseList    *tview.List
	detail      *tview.TextView
	statusBar   *tview.TextView
	focusRing   []tview.Primitive

	// Theme state
	theme     Theme
	themeName string

	// syncing is set while widgets are updated from controller state so the
	// widget callbacks do not feed the change back.
	syncing bool
	dialog  bool

	// reloads holds at most one pending reload request.
	reloads chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures the UI.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	actor     string
	reportDir string
	theme     string
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithActor sets the employee name recorded for deletes made from the UI.
func WithActor(name string) Option { return func(o *options) { o.actor = name } }

// WithReportDir sets where printed case reports are written.
func WithReportDir(dir string) Option { return func(o *options) { o.reportDir = dir } }

func WithTheme(name string) Option { return func(o *options) { o.theme = name } }

// NewUI builds the UI and its case list controller. Nothing is loaded until
// Start.
func NewUI(ctx context.Context, svc *service.Service, opts ...Option) *UI {
	o := options{logger: zap.NewNop(), reportDir: ".", theme: "dark"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	uiCtx, cancel := context.WithCancel(ctx)
	ui := &UI{
		app:       tview.NewApplication(),
		svc:       svc,
		logger:    o.logger.Named("ui"),
		actor:     o.actor,
		reportDir: o.reportDir,
		themeName: o.theme,
		reloads:   make(chan struct{}, 1),
		ctx:       uiCtx,
		cancel:    cancel,
	}
	ui.theme = themeByName(ui.themeName)

	ctrlOpts := []caselist.Option{caselist.WithLogger(o.logger)}
	if o.metrics != nil {
		ctrlOpts = append(ctrlOpts, caselist.WithObserver(o.metrics))
	}
	ui.ctrl = caselist.NewController(svc.Store(), ui, ctrlOpts...)

	ui.setupLayout()
	ui.applyTheme()
	return ui
}

// Controller exposes the case list controller.
func (ui *UI) Controller() *caselist.Controller { return ui.ctrl }

// Start loads the cases and runs the TUI until Stop or ctx is cancelled.
// Reload requests made before the event loop runs are held and applied once
// it does.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Info("starting TUI application")
	ui.load()

	go func() {
		select {
		case <-ctx.Done():
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()
	go ui.pumpReloads()

	err := ui.app.EnableMouse(true).Run()
	ui.cancel()
	ui.logger.Info("TUI stopped", zap.Error(err))
	return err
}

// Stop stops the TUI application
func (ui *UI) Stop() {
	ui.cancel()
	ui.app.Stop()
}

// QueueReload asks for the cases to be refetched with the current criteria.
// It never blocks and requests made while one is pending are merged. Safe to
// call from any goroutine.
func (ui *UI) QueueReload() {
	select {
	case ui.reloads <- struct{}{}:
	default:
	}
}

// pumpReloads hands reload requests to the event goroutine until the UI
// context ends.
func (ui *UI) pumpReloads() {
	for {
		select {
		case <-ui.ctx.Done():
			return
		case <-ui.reloads:
		}

		// QueueUpdateDraw waits for the event loop, which never runs the
		// update once Run has returned.
		done := make(chan struct{})
		go func() {
			ui.app.QueueUpdateDraw(ui.reload)
			close(done)
		}()
		select {
		case <-done:
		case <-ui.ctx.Done():
			return
		}
	}
}

// ViewChanged re-renders the case list.
func (ui *UI) ViewChanged(cases []store.Case) {
	ui.syncing = true
	defer func() { ui.syncing = false }()

	ui.caseList.Clear()
	for _, c := range cases {
		main := fmt.Sprintf("[%s]●[-] #%d %s", ui.statusTag(c.Status), c.ID, tview.Escape(c.CustomerName))
		secondary := fmt.Sprintf("  %s | %s | %s", tview.Escape(c.SubscriberNumber), c.Status, c.CreatedDate)
		ui.caseList.AddItem(main, secondary, 0, nil)
	}
	ui.caseList.SetTitle(fmt.Sprintf(" Cases (%d/%d) ", len(cases), ui.ctrl.Total()))
}

// SelectionChanged highlights the selected case and loads its details.
func (ui *UI) SelectionChanged(id int64, ok bool) {
	ui.syncing = true
	defer func() { ui.syncing = false }()

	if !ok {
		ui.detail.SetText(fmt.Sprintf("[%s]No case selected[-]", ui.theme.TagMuted))
		return
	}
	if idx, ok := ui.ctrl.SelectedIndex(); ok {
		ui.caseList.SetCurrentItem(idx)
	}
	ui.renderDetail(id)
}

func (ui *UI) statusTag(s store.Status) string {
	return ui.theme.StatusTag(s, ui.ctrl.StatusColor(string(s)))
}

func (ui *UI) load() {
	if err := ui.ctrl.LoadAll(ui.ctx); err != nil {
		ui.setStatus("[%s]Error loading cases: %v[-]", ui.theme.TagError, err)
	} else {
		ui.setStatus("Loaded %d cases", ui.ctrl.Total())
	}
	ui.syncPickers()
}

func (ui *UI) reload() {
	if err := ui.ctrl.Reload(ui.ctx); err != nil {
		ui.setStatus("[%s]Error reloading cases: %v[-]", ui.theme.TagError, err)
	} else {
		ui.setStatus("Reloaded %d cases", ui.ctrl.Total())
	}
	ui.syncPickers()
}

// setupLayout creates the main layout
func (ui *UI) setupLayout() {
	ui.appTitle = tview.NewTextView()
	ui.appTitle.SetDynamicColors(true)

	ui.yearDrop = tview.NewDropDown()
	ui.yearDrop.SetLabel("Year   ")
	ui.yearDrop.SetOptions([]string{caselist.YearAll}, ui.onYearSelected)

	fieldLabels := make([]string, 0, len(caselist.Fields()))
	for _, f := range caselist.Fields() {
		fieldLabels = append(fieldLabels, f.Label())
	}
	ui.fieldDrop = tview.NewDropDown()
	ui.fieldDrop.SetLabel("Field  ")
	ui.fieldDrop.SetOptions(fieldLabels, func(string, int) { ui.onSearchChanged() })

	ui.searchInput = tview.NewInputField()
	ui.searchInput.SetLabel("Search ")
	ui.searchInput.SetChangedFunc(func(string) { ui.onSearchChanged() })
	ui.searchInput.SetDoneFunc(func(tcell.Key) { ui.setFocus(ui.caseList) })

	sortLabels := make([]string, 0, len(caselist.SortKeys()))
	for _, k := range caselist.SortKeys() {
		sortLabels = append(sortLabels, k.Label())
	}
	ui.sortDrop = tview.NewDropDown()
	ui.sortDrop.SetLabel("Sort   ")
	ui.sortDrop.SetOptions(sortLabels, func(_ string, index int) {
		if ui.syncing || index < 0 {
			return
		}
		ui.ctrl.SetSort(caselist.SortKeys()[index])
	})

	filters := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.yearDrop, 1, 0, false).
		AddItem(ui.fieldDrop, 1, 0, false).
		AddItem(ui.searchInput, 1, 0, false).
		AddItem(ui.sortDrop, 1, 0, false)
	filters.SetBorder(true)
	filters.SetTitle(" Filters ")
	filters.SetTitleAlign(tview.AlignLeft)

	ui.caseList = tview.NewList()
	ui.caseList.SetTitle(" Cases ")
	ui.caseList.SetBorder(true)
	ui.caseList.SetTitleAlign(tview.AlignLeft)
	ui.caseList.SetHighlightFullLine(true)
	ui.caseList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if ui.syncing {
			return
		}
		ui.ctrl.SelectByIndex(index)
	})
	ui.caseList.SetInputCapture(ui.listKeys)

	ui.detail = tview.NewTextView()
	ui.detail.SetTitle(" Case ")
	ui.detail.SetBorder(true)
	ui.detail.SetTitleAlign(tview.AlignLeft)
	ui.detail.SetDynamicColors(true)
	ui.detail.SetWrap(true)
	ui.detail.SetScrollable(true)

	ui.statusBar = tview.NewTextView()
	ui.statusBar.SetDynamicColors(true)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(filters, 6, 0, false).
		AddItem(ui.caseList, 0, 1, true)
	main := tview.NewFlex().
		AddItem(left, 0, 2, true).
		AddItem(ui.detail, 0, 3, false)
	ui.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.appTitle, 1, 0, false).
		AddItem(main, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.focusRing = []tview.Primitive{ui.caseList, ui.detail, ui.yearDrop, ui.fieldDrop, ui.searchInput, ui.sortDrop}
	ui.app.SetRoot(ui.root, true)
	ui.app.SetInputCapture(ui.globalKeys)
	ui.setFocus(ui.caseList)
}

func (ui *UI) onYearSelected(text string, _ int) {
	if ui.syncing {
		return
	}
	ui.ctrl.SetYearFilter(text)
}

func (ui *UI) onSearchChanged() {
	if ui.syncing {
		return
	}
	idx, _ := ui.fieldDrop.GetCurrentOption()
	if idx < 0 {
		idx = 0
	}
	ui.ctrl.SetSearch(caselist.Fields()[idx], ui.searchInput.GetText())
}

// syncPickers makes the pickers show the controller's criteria.
func (ui *UI) syncPickers() {
	ui.syncing = true
	defer func() { ui.syncing = false }()

	years := append([]string{caselist.YearAll}, ui.ctrl.Years()...)
	current := 0
	for i, y := range years {
		if y == ui.ctrl.YearFilter() {
			current = i
		}
	}
	if ui.ctrl.YearFilter() != caselist.YearAll && current == 0 {
		years = append(years, ui.ctrl.YearFilter())
		current = len(years) - 1
	}
	ui.yearDrop.SetOptions(years, ui.onYearSelected)
	ui.yearDrop.SetCurrentOption(current)

	crit := ui.ctrl.Search()
	ui.fieldDrop.SetCurrentOption(int(crit.Field))
	ui.searchInput.SetText(crit.Query)
	ui.sortDrop.SetCurrentOption(int(ui.ctrl.SortKey()))
}

// listKeys drives the selection cursor through the controller instead of
// letting the list move itself.
func (ui *UI) listKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		ui.ctrl.MoveSelection(-1)
		return nil
	case tcell.KeyDown:
		ui.ctrl.MoveSelection(1)
		return nil
	case tcell.KeyHome:
		ui.ctrl.SelectByIndex(0)
		return nil
	case tcell.KeyEnd:
		ui.ctrl.SelectByIndex(len(ui.ctrl.Displayed()) - 1)
		return nil
	case tcell.KeyPgUp:
		ui.ctrl.MoveSelection(-10)
		return nil
	case tcell.KeyPgDn:
		ui.ctrl.MoveSelection(10)
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			ui.ctrl.MoveSelection(-1)
			return nil
		case 'j':
			ui.ctrl.MoveSelection(1)
			return nil
		case 'g':
			ui.ctrl.SelectByIndex(0)
			return nil
		case 'G':
			ui.ctrl.SelectByIndex(len(ui.ctrl.Displayed()) - 1)
			return nil
		}
	}
	return event
}

func (ui *UI) globalKeys(event *tcell.EventKey) *tcell.EventKey {
	if ui.dialog {
		return event
	}
	if ui.app.GetFocus() == ui.searchInput {
		if event.Key() == tcell.KeyEsc {
			ui.setFocus(ui.caseList)
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		ui.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		ui.cycleFocus(-1)
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'q':
		ui.Stop()
	case 'r':
		ui.reload()
	case 'd':
		ui.confirmDelete()
	case 'p':
		ui.printReport()
	case '/':
		ui.setFocus(ui.searchInput)
	case 't':
		ui.setTheme(nextTheme(ui.themeName))
	case '?':
		ui.showModal("Help", helpText)
	case 'j', 'k':
		if ui.app.GetFocus() == ui.caseList {
			return event
		}
		if event.Rune() == 'j' {
			ui.ctrl.MoveSelection(1)
		} else {
			ui.ctrl.MoveSelection(-1)
		}
	default:
		return event
	}
	return nil
}

const helpText = `Up/Down, j/k   move selection
Home/End, g/G  first / last case
Tab            next pane
/              search
r              reload
d              delete selected case
p              print selected case to a text file
t              cycle theme
q              quit`

func (ui *UI) cycleFocus(step int) {
	current := ui.app.GetFocus()
	idx := 0
	for i, p := range ui.focusRing {
		if p == current {
			idx = i
			break
		}
	}
	n := len(ui.focusRing)
	ui.setFocus(ui.focusRing[((idx+step)%n+n)%n])
}

func (ui *UI) setFocus(p tview.Primitive) {
	ui.app.SetFocus(p)
	ui.highlightFocus(p)
}

func (ui *UI) highlightFocus(focused tview.Primitive) {
	ui.caseList.SetBorderColor(ui.theme.Border)
	ui.detail.SetBorderColor(ui.theme.Border)

	switch focused {
	case ui.caseList:
		ui.caseList.SetBorderColor(ui.theme.FocusBorder)
	case ui.detail:
		ui.detail.SetBorderColor(ui.theme.FocusBorder)
	}
}

func (ui *UI) renderDetail(id int64) {
	c, ok := ui.ctrl.Selected()
	if !ok || c.ID != id {
		return
	}
	st := ui.svc.Store()
	var b strings.Builder
	label := func(name, value string) {
		fmt.Fprintf(&b, "[%s]%-20s[-] %s\n", ui.theme.TagMuted, name, tview.Escape(value))
	}

	fmt.Fprintf(&b, "[%s]#%d %s[-]  [%s]%s[-]\n\n", ui.theme.TagAccent, c.ID, tview.Escape(c.CustomerName),
		ui.statusTag(c.Status), c.Status)
	label("Subscriber number", c.SubscriberNumber)
	label("Phone", c.Phone)
	label("Address", c.Address)
	label("Category", c.CategoryName)
	label("Problem", c.ProblemDescription)
	label("Actions taken", c.ActionsTaken)
	label("Last meter reading", c.LastMeterReading)
	label("Last reading date", c.LastReadingDate)
	label("Debt amount", c.DebtAmount)
	label("Created", c.CreatedDate+" by "+c.CreatedByName)
	label("Modified", c.ModifiedDate+" by "+c.ModifiedByName)
	label("Solved by", c.SolvedByName)

	fmt.Fprintf(&b, "\n[%s]Attachments[-]\n", ui.theme.TagAccent)
	if atts, err := st.GetAttachments(ui.ctx, id); err != nil {
		fmt.Fprintf(&b, "[%s]%v[-]\n", ui.theme.TagError, err)
	} else if len(atts) == 0 {
		fmt.Fprintf(&b, "[%s]none[-]\n", ui.theme.TagMuted)
	} else {
		for _, a := range atts {
			fmt.Fprintf(&b, "  %s (%s) %s  %s\n", tview.Escape(a.FileName), a.FileType, a.UploadDate, tview.Escape(a.Description))
		}
	}

	fmt.Fprintf(&b, "\n[%s]Correspondence[-]\n", ui.theme.TagAccent)
	if corrs, err := st.GetCorrespondences(ui.ctx, id); err != nil {
		fmt.Fprintf(&b, "[%s]%v[-]\n", ui.theme.TagError, err)
	} else {
		for _, m := range corrs {
			fmt.Fprintf(&b, "  #%d (%d) %s from %s: %s\n", m.SequenceNumber, m.YearlySequenceNumber,
				m.CreatedDate, tview.Escape(m.Sender), tview.Escape(m.MessageContent))
		}
		if seq, yearly, err := st.GetNextCorrespondenceNumbers(ui.ctx, id); err == nil {
			fmt.Fprintf(&b, "[%s]  next: #%d (%d)[-]\n", ui.theme.TagMuted, seq, yearly)
		}
	}

	fmt.Fprintf(&b, "\n[%s]History[-]\n", ui.theme.TagAccent)
	if entries, err := st.GetCaseAuditLog(ui.ctx, id); err != nil {
		fmt.Fprintf(&b, "[%s]%v[-]\n", ui.theme.TagError, err)
	} else {
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n", e.Timestamp, e.ActionType, tview.Escape(e.Description), tview.Escape(e.PerformedByName))
		}
	}

	ui.detail.SetText(b.String())
	ui.detail.ScrollToBeginning()
}

func (ui *UI) confirmDelete() {
	c, ok := ui.ctrl.Selected()
	if !ok {
		ui.setStatus("[%s]No case selected[-]", ui.theme.TagWarning)
		return
	}

	msg := fmt.Sprintf("Delete case #%d %s?\n\nIts attachments, correspondence and history are removed too.", c.ID, tview.Escape(c.CustomerName))
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"Delete", "Cancel"})
	modal.SetTitle(" Confirm Delete Case ")
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetButtonBackgroundColor(ui.theme.SelectionBg)
	modal.SetButtonTextColor(ui.theme.SelectionFg)

	modal.SetDoneFunc(func(_ int, buttonLabel string) {
		if buttonLabel != "Delete" {
			ui.restoreMainLayout()
			return
		}
		ui.setStatus("[%s]Deleting case...[-]", ui.theme.TagWarning)
		// Run DB ops off the UI goroutine
		go func(id int64) {
			err := ui.svc.DeleteCase(ui.ctx, id, ui.actor)
			ui.app.QueueUpdateDraw(func() {
				ui.restoreMainLayout()
				if err != nil {
					ui.setStatus("[%s]Error deleting case: %v[-]", ui.theme.TagError, err)
					return
				}
				ui.reload()
				ui.setStatus("[%s]Case #%d deleted[-]", ui.theme.TagSuccess, id)
			})
		}(c.ID)
	})
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			ui.restoreMainLayout()
			return nil
		}
		return event
	})

	ui.dialog = true
	ui.app.SetRoot(modal, true)
	ui.app.SetFocus(modal)
}

// printReport writes the selected case to a text file in the report dir.
func (ui *UI) printReport() {
	c, ok := ui.ctrl.Selected()
	if !ok {
		ui.setStatus("[%s]No case selected[-]", ui.theme.TagWarning)
		return
	}
	path, err := ui.writeReport(c)
	if err != nil {
		ui.setStatus("[%s]Error writing report: %v[-]", ui.theme.TagError, err)
		return
	}
	ui.setStatus("[%s]Report written to %s[-]", ui.theme.TagSuccess, path)
}

func (ui *UI) writeReport(c store.Case) (string, error) {
	st := ui.svc.Store()
	atts, err := st.GetAttachments(ui.ctx, c.ID)
	if err != nil {
		return "", err
	}
	corrs, err := st.GetCorrespondences(ui.ctx, c.ID)
	if err != nil {
		return "", err
	}
	audit, err := st.GetCaseAuditLog(ui.ctx, c.ID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(ui.reportDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(ui.reportDir, fmt.Sprintf("case_%d_report.txt", c.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := report.WriteCase(f, c, atts, corrs, audit); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func (ui *UI) showModal(title, text string) {
	modal := tview.NewModal()
	modal.SetText(text)
	modal.SetTitle(fmt.Sprintf(" %s ", title))
	modal.AddButtons([]string{"Close"})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetButtonBackgroundColor(ui.theme.SelectionBg)
	modal.SetButtonTextColor(ui.theme.SelectionFg)
	modal.SetDoneFunc(func(int, string) { ui.restoreMainLayout() })

	ui.dialog = true
	ui.app.SetRoot(modal, true)
	ui.app.SetFocus(modal)
}

// restoreMainLayout restores the main layout after closing a modal
func (ui *UI) restoreMainLayout() {
	ui.dialog = false
	ui.app.SetRoot(ui.root, true)
	ui.setFocus(ui.caseList)
}

// setStatus updates the status bar. UI goroutine only.
func (ui *UI) setStatus(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")

	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s [%s]|[-] [%s]?:help q:quit[-]",
		ui.theme.TagMuted, timestamp,
		ui.theme.TagMuted, message,
		ui.theme.TagMuted,
		ui.theme.TagMuted))
}

func (ui *UI) applyTheme() {
	ui.appTitle.SetBackgroundColor(ui.theme.Surface)
	ui.appTitle.SetText(fmt.Sprintf(" [%s]Customer Issues[-]", ui.theme.TagAccent))

	ui.caseList.SetMainTextColor(ui.theme.TextPrimary)
	ui.caseList.SetSecondaryTextColor(ui.theme.TextMuted)
	ui.caseList.SetSelectedTextColor(ui.theme.SelectionFg)
	ui.caseList.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	ui.caseList.SetBackgroundColor(ui.theme.Surface)

	for _, d := range []*tview.DropDown{ui.yearDrop, ui.fieldDrop, ui.sortDrop} {
		d.SetBackgroundColor(ui.theme.Surface)
		d.SetLabelColor(ui.theme.TextMuted)
		d.SetFieldBackgroundColor(ui.theme.SelectionBg)
		d.SetFieldTextColor(ui.theme.TextPrimary)
	}
	ui.searchInput.SetBackgroundColor(ui.theme.Surface)
	ui.searchInput.SetLabelColor(ui.theme.TextMuted)
	ui.searchInput.SetFieldBackgroundColor(ui.theme.SelectionBg)
	ui.searchInput.SetFieldTextColor(ui.theme.TextPrimary)

	ui.detail.SetTextColor(ui.theme.TextPrimary)
	ui.detail.SetBackgroundColor(ui.theme.Surface)

	ui.statusBar.SetTextColor(ui.theme.TextPrimary)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)

	ui.highlightFocus(ui.app.GetFocus())
}

func (ui *UI) setTheme(name string) {
	ui.themeName = name
	ui.theme = themeByName(name)
	ui.applyTheme()
	// Re-render so inline colour tags pick up the new palette.
	ui.ViewChanged(ui.ctrl.Displayed())
	c, ok := ui.ctrl.Selected()
	ui.SelectionChanged(c.ID, ok)
	ui.setStatus("[%s]Theme: %s[-]", ui.theme.TagAccent, name)
}
