package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/datatable"
	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
	"github.com/Ruturaj2003/r-L-Tech/internal/session"
	"github.com/Ruturaj2003/r-L-Tech/internal/validation"
)

const (
	pageTitle     = "Other Master"
	submitTimeout = 30 * time.Second
	toastDuration = 4 * time.Second
	errorDuration = 6 * time.Second
)

var pageSizes = []int{5, 10, 20, 50}

type focusArea int

const (
	focusTable focusArea = iota
	focusSearch
	focusFilter
)

type pageLoadedMsg struct {
	page othermaster.Page
	err  error
}

type searchDebounceMsg struct {
	seq   int
	value string
}

type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	search      key.Binding
	clearSearch key.Binding
	prevColumn  key.Binding
	nextColumn  key.Binding
	sort        key.Binding
	filter      key.Binding
	clearFilter key.Binding
	prevPage    key.Binding
	nextPage    key.Binding
	pageSize    key.Binding
	add         key.Binding
	view        key.Binding
	edit        key.Binding
	remove      key.Binding
	reload      key.Binding
	copyRow     key.Binding
	preview     key.Binding
	scroll      key.Binding
	theme       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		clearSearch: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "clear search"),
		),
		prevColumn: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		nextColumn: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter column"),
		),
		clearFilter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "prev page"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "next page"),
		),
		pageSize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "page size"),
		),
		add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		view: key.NewBinding(
			key.WithKeys("v", "enter"),
			key.WithHelp("v", "view"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		copyRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy record"),
		),
		preview: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle preview"),
		),
		scroll: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll preview"),
		),
		theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "preview theme"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.search,
		k.sort,
		k.filter,
		k.add,
		k.view,
		k.edit,
		k.remove,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.clearSearch, k.prevColumn, k.nextColumn},
		{k.sort, k.filter, k.clearFilter},
		{k.prevPage, k.nextPage, k.pageSize},
		{k.add, k.view, k.edit, k.remove},
		{k.reload, k.copyRow, k.preview, k.scroll, k.theme},
		{k.toggleHelp, k.quit},
	}
}

// deps are the collaborators the page is built from.
type deps struct {
	ctx      context.Context
	service  *othermaster.Service
	session  session.Session
	logger   *slog.Logger
	events   *eventTrail
	ui       *uiConfig
	uiPath   string
	pageSize int
	debounce time.Duration
	theme    markdownTheme
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	service *othermaster.Service
	session session.Session
	logger  *slog.Logger
	events  *eventTrail

	engine  *datatable.Engine[othermaster.Master]
	table   *recordTable[othermaster.Master]
	orch    *crud.Orchestrator[othermaster.Master]
	form    *formView[othermaster.Master]
	preview *previewPane
	jobs    *jobManager

	boundary faultBoundary

	focus       focusArea
	search      textinput.Model
	searchSeq   int
	debounce    time.Duration
	filterInput textinput.Model
	editorTop   int
	editorRows  int

	spinner        spinner.Model
	loading        bool
	loadErr        error
	referenceReady bool
	pendingMode    crud.Mode
	pendingRow     *othermaster.Master
	formPending    bool

	showPreview   bool
	markdownTheme markdownTheme
	uiConfig      *uiConfig
	uiConfigPath  string

	toastMessage string
	toastExpires time.Time
}

func newModel(d deps) (*model, error) {
	if err := d.session.Validate(); err != nil {
		return nil, err
	}
	if d.ctx == nil {
		d.ctx = context.Background()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.ui == nil {
		d.ui = &uiConfig{}
	}
	if d.pageSize < 1 {
		d.pageSize = datatable.DefaultPageSize
	}
	if d.ui.PageSize > 0 {
		d.pageSize = d.ui.PageSize
	}

	s := newStyles()
	m := &model{
		styles:        s,
		keys:          newKeyMap(),
		help:          help.New(),
		service:       d.service,
		session:       d.session,
		logger:        d.logger.With("component", "page"),
		events:        d.events,
		jobs:          newJobManager(d.ctx),
		debounce:      d.debounce,
		showPreview:   d.ui.Preview,
		markdownTheme: d.theme,
		uiConfig:      d.ui,
		uiConfigPath:  d.uiPath,
		width:         100,
		height:        30,
	}
	m.boundary = faultBoundary{logger: m.logger, events: m.events}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusHint.Copy()
	m.help.Styles.FullKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.FullDesc = m.styles.statusHint.Copy()
	m.help.Styles.FullSeparator = m.styles.statusHint.Copy()

	if err := m.buildEngine(d.pageSize); err != nil {
		return nil, err
	}
	m.table = newRecordTable[othermaster.Master](s)
	m.table.decorate = statusBadge
	m.preview = newPreviewPane()

	m.orch = crud.New(crud.Config[othermaster.Master]{
		Form:         othermaster.Form,
		ActingUserID: d.session.UserID,
		OnSubmit: func(ctx context.Context, req crud.Request[othermaster.Master]) error {
			return m.service.Submit(ctx, m.session, req)
		},
		OnClose: func() {
			m.form.SetNotice(nil)
			m.table.Focus()
		},
		SameTarget: func(a, b *othermaster.Master) bool { return a.TransNo == b.TransNo },
	})
	m.orch.SetOptions(othermaster.FieldLockStatus, othermaster.LockStatusOptions)
	m.form = newFormView(m.orch)

	m.search = textinput.New()
	m.search.Placeholder = "Search…"
	m.search.Prompt = "⌕ "
	m.search.CharLimit = 128
	m.search.Width = 28
	if last := strings.TrimSpace(d.ui.LastSearch); last != "" {
		m.search.SetValue(last)
		m.engine.SetGlobalFilter(last)
	}

	m.filterInput = textinput.New()
	m.filterInput.Prompt = ""
	m.filterInput.CharLimit = 128
	m.filterInput.Width = 24

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.engine.SetLoading(true)
	m.loading = true
	m.applyLayout()
	return m, nil
}

// buildEngine creates the table engine with fresh sort, filter and page
// state.
func (m *model) buildEngine(pageSize int) error {
	engine, err := datatable.New(othermaster.Columns(othermaster.RowActions{
		OnView:   func(r othermaster.Master) { m.openForm(crud.View, &r) },
		OnEdit:   func(r othermaster.Master) { m.openForm(crud.Edit, &r) },
		OnDelete: func(r othermaster.Master) { m.openForm(crud.Delete, &r) },
	}), datatable.WithPageSize(pageSize))
	if err != nil {
		return fmt.Errorf("build table: %w", err)
	}
	m.engine = engine
	return nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPageCmd())
}

func (m *model) loadPageCmd() tea.Cmd {
	m.loading = true
	m.loadErr = nil
	m.engine.SetLoading(true)
	m.sync()
	ctx, svc, sess := m.jobs.ctx, m.service, m.session
	return func() tea.Msg {
		page, err := svc.LoadPage(ctx, sess)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if !m.boundary.Run("update", func() { cmd = m.update(msg) }) {
		return m, nil
	}
	return m, cmd
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case pageLoadedMsg:
		return m.handlePageLoaded(msg)
	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.applySearch(msg.value)
		}
		return nil
	case jobMsg:
		return m.jobs.Handle(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *model) handlePageLoaded(msg pageLoadedMsg) tea.Cmd {
	m.loading = false
	m.engine.SetLoading(false)
	if msg.err != nil {
		m.loadErr = msg.err
		m.logger.Error("load page failed", "scope", m.session.ScopeID, "err", msg.err)
		if m.formPending {
			m.formPending = false
			m.pendingRow = nil
		}
		m.sync()
		return nil
	}
	m.loadErr = nil
	m.engine.SetRows(msg.page.Rows)
	m.orch.SetOptions(othermaster.FieldMasterType, msg.page.MasterTypes)
	m.orch.SetOptions(othermaster.FieldDeleteReason, msg.page.DeleteReasons)
	m.referenceReady = true
	m.logger.Debug("page loaded", "rows", len(msg.page.Rows), "types", len(msg.page.MasterTypes), "reasons", len(msg.page.DeleteReasons))

	if m.orch.IsOpen() && m.orch.Mode() != crud.Create && !m.orch.Dirty() {
		if t := m.orch.Target(); t != nil {
			for _, r := range msg.page.Rows {
				if r.TransNo == t.TransNo {
					row := r
					m.orch.SetDefaults(&row, othermaster.Defaults(m.orch.Mode(), &row))
					m.form.syncInputs()
					break
				}
			}
		}
	}
	if m.formPending {
		m.formPending = false
		mode, row := m.pendingMode, m.pendingRow
		m.pendingRow = nil
		m.openForm(mode, row)
	}
	m.sync()
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.boundary.Tripped() {
		switch msg.String() {
		case "t":
			m.tryAgain()
		case "R":
			return m.reloadAll()
		case "q":
			return tea.Quit
		}
		return nil
	}

	if m.formPending {
		if msg.String() == "esc" {
			m.formPending = false
			m.pendingRow = nil
		}
		return nil
	}
	if m.orch.IsOpen() {
		action, cmd := m.form.Update(msg)
		switch action {
		case formSubmit:
			return tea.Batch(cmd, m.submit())
		case formClose:
			m.requestClose()
		case formConfirmDelete:
			return tea.Batch(cmd, m.confirmDelete())
		case formSwitchToEdit:
			m.orch.SetMode(crud.Edit)
			m.form.Reload()
			m.emitForm(crud.Edit, m.orch.Target())
		}
		return cmd
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusFilter:
		m.handleFilterKey(msg)
		return nil
	}
	return m.handleTableKey(msg)
}

func (m *model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.focus = focusTable
		m.search.Blur()
		m.table.Focus()
		return nil
	case "ctrl+x":
		m.clearSearch()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		return tea.Batch(cmd, m.debounceSearch(value))
	}
	return cmd
}

// debounceSearch applies value after the debounce delay unless another
// keystroke arrives first.
func (m *model) debounceSearch(value string) tea.Cmd {
	m.searchSeq++
	if m.debounce <= 0 {
		m.applySearch(value)
		return nil
	}
	seq := m.searchSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq, value: value}
	})
}

func (m *model) applySearch(value string) {
	m.engine.SetGlobalFilter(strings.TrimSpace(value))
	m.uiConfig.LastSearch = strings.TrimSpace(value)
	m.savePrefs()
	m.sync()
}

func (m *model) clearSearch() {
	m.searchSeq++
	m.search.SetValue("")
	m.applySearch("")
}

func (m *model) searchActive() bool {
	return m.search.Value() != "" || m.engine.GlobalFilter() != ""
}

func (m *model) handleFilterKey(msg tea.KeyMsg) {
	col := m.engine.OpenEditor()
	switch msg.String() {
	case "esc":
		m.engine.Escape()
	case "enter":
		if err := m.engine.SetColumnFilter(col, m.filterInput.Value()); err != nil {
			m.setToast(err.Error(), errorDuration)
		}
		m.engine.CloseFilterEditor()
	default:
		before := m.filterInput.Value()
		m.filterInput, _ = m.filterInput.Update(msg)
		if value := m.filterInput.Value(); value != before {
			if err := m.engine.SetColumnFilter(col, value); err != nil {
				m.setToast(err.Error(), errorDuration)
			}
		}
	}
	if m.engine.OpenEditor() == "" {
		m.closeFilterFocus()
	}
	m.sync()
}

func (m *model) closeFilterFocus() {
	m.focus = focusTable
	m.filterInput.Blur()
	m.table.Focus()
	m.applyLayout()
}

func (m *model) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	defer m.sync()
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.applyLayout()
	case key.Matches(msg, m.keys.search):
		m.engine.CloseFilterEditor()
		m.focus = focusSearch
		m.table.Blur()
		return m.search.Focus()
	case key.Matches(msg, m.keys.clearSearch):
		if m.searchActive() {
			m.clearSearch()
		}
	case key.Matches(msg, m.keys.prevColumn):
		m.table.MoveHeader(-1)
	case key.Matches(msg, m.keys.nextColumn):
		m.table.MoveHeader(1)
	case key.Matches(msg, m.keys.sort):
		if h, ok := m.table.SelectedHeader(); ok {
			if err := m.engine.ToggleSort(h.ID); err != nil {
				m.setToast(h.Title+" cannot be sorted", toastDuration)
			}
		}
	case key.Matches(msg, m.keys.filter):
		return m.toggleFilter()
	case key.Matches(msg, m.keys.clearFilter):
		m.engine.ClearFilters()
		m.applyLayout()
	case key.Matches(msg, m.keys.prevPage):
		if m.engine.PrevPage() {
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.nextPage):
		if m.engine.NextPage() {
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.pageSize):
		m.cyclePageSize()
	case key.Matches(msg, m.keys.add):
		m.openForm(crud.Create, nil)
	case key.Matches(msg, m.keys.view):
		m.activate("v")
	case key.Matches(msg, m.keys.edit):
		m.activate("e")
	case key.Matches(msg, m.keys.remove):
		m.activate("d")
	case key.Matches(msg, m.keys.reload):
		m.service.Cache().Invalidate(othermaster.KeyList(m.session.ScopeID))
		return m.loadPageCmd()
	case key.Matches(msg, m.keys.copyRow):
		m.copySelected()
	case key.Matches(msg, m.keys.preview):
		m.showPreview = !m.showPreview
		m.uiConfig.Preview = m.showPreview
		m.savePrefs()
		m.applyLayout()
	case m.showPreview && key.Matches(msg, m.keys.scroll):
		return m.preview.Update(msg)
	case key.Matches(msg, m.keys.theme):
		m.markdownTheme = nextMarkdownTheme(m.markdownTheme)
		setMarkdownTheme(m.markdownTheme)
		m.uiConfig.Theme = string(m.markdownTheme)
		m.savePrefs()
		m.preview.Invalidate()
		m.setToast("Preview theme: "+m.markdownTheme.Label(), toastDuration)
	case msg.String() == "esc":
		m.engine.Escape()
	default:
		return m.table.Update(msg)
	}
	return nil
}

func (m *model) toggleFilter() tea.Cmd {
	h, ok := m.table.SelectedHeader()
	if !ok {
		return nil
	}
	if err := m.engine.ToggleFilterEditor(h.ID); err != nil {
		m.setToast(h.Title+" has no filter", toastDuration)
		return nil
	}
	if m.engine.OpenEditor() == "" {
		m.closeFilterFocus()
		return nil
	}
	m.focus = focusFilter
	m.table.Blur()
	m.filterInput.SetValue(m.engine.ColumnFilter(h.ID))
	m.filterInput.CursorEnd()
	m.applyLayout()
	return m.filterInput.Focus()
}

func (m *model) cyclePageSize() {
	next := pageSizes[0]
	for i, n := range pageSizes {
		if n == m.engine.PageSize() && i+1 < len(pageSizes) {
			next = pageSizes[i+1]
		}
	}
	m.engine.SetPageSize(next)
	m.uiConfig.PageSize = next
	m.savePrefs()
	m.setToast(fmt.Sprintf("%d rows per page", next), toastDuration)
}

// activate runs a row action of the highlighted row.
func (m *model) activate(actionKey string) {
	if !m.engine.Activate(m.table.Cursor(), actionKey) {
		m.setToast(crud.ErrNoSelection.Error(), toastDuration)
	}
}

func (m *model) openForm(mode crud.Mode, row *othermaster.Master) {
	if m.loadErr != nil && !m.referenceReady {
		m.setToast("Failed to load data. Press r to retry.", errorDuration)
		return
	}
	if mode != crud.Create && row == nil {
		m.setToast(crud.ErrNoSelection.Error(), toastDuration)
		return
	}
	if !m.referenceReady {
		m.formPending = true
		m.pendingMode = mode
		m.pendingRow = row
		return
	}
	m.engine.CloseFilterEditor()
	if m.focus == focusFilter {
		m.closeFilterFocus()
	}
	m.orch.Open(mode, row, othermaster.Defaults(mode, row))
	m.form.Reload()
	m.table.Blur()
	m.emitForm(mode, row)
}

func (m *model) emitForm(mode crud.Mode, row *othermaster.Master) {
	ev := uiEvent{Event: eventFormOpened, Mode: mode.String()}
	if row != nil {
		ev.RecordID = row.TransNo
	}
	m.events.Emit(ev)
}

func (m *model) submit() tea.Cmd {
	req, ok, err := m.orch.Submit()
	switch {
	case err != nil:
		if !validation.IsValidationError(err) {
			m.setToast(err.Error(), errorDuration)
		}
		return nil
	case !ok:
		return nil
	}
	return m.runSubmit(req)
}

func (m *model) confirmDelete() tea.Cmd {
	req, err := m.orch.ConfirmDelete()
	if err != nil {
		if !errors.Is(err, crud.ErrReasonRequired) {
			m.setToast(err.Error(), errorDuration)
		}
		return nil
	}
	return m.runSubmit(req)
}

// runSubmit executes req off the UI loop and refetches the scope's list in
// the same job, so the form closes only once fresh rows are at hand.
func (m *model) runSubmit(req crud.Request[othermaster.Master]) tea.Cmd {
	rule := crud.RuleFor(req.Mode)
	var (
		rows      []othermaster.Master
		refetched bool
	)
	return m.jobs.Enqueue(jobRequest{
		title:   rule.SubmitLabel + " " + m.orch.Form().Noun,
		timeout: submitTimeout,
		run: func(ctx context.Context) error {
			if err := m.orch.Execute(ctx, req); err != nil {
				return err
			}
			fresh, err := m.service.List(ctx, m.session)
			if err != nil {
				m.logger.Warn("refetch after submit failed", "err", err)
				return nil
			}
			rows, refetched = fresh, true
			return nil
		},
		onFinish: func(err error) tea.Cmd {
			return m.finishSubmit(req, rows, refetched, err)
		},
	})
}

func (m *model) finishSubmit(req crud.Request[othermaster.Master], rows []othermaster.Master, refetched bool, err error) tea.Cmd {
	notice := m.orch.Finish(err)
	ev := uiEvent{Mode: req.Mode.String()}
	if req.Target != nil {
		ev.RecordID = req.Target.TransNo
	}
	if notice.Kind == crud.NoticeFailure {
		m.form.SetNotice(&notice)
		m.setToast(notice.Title+": "+notice.Detail, errorDuration)
		m.logger.Warn("submit failed", "operation", notice.Operation, "err", err)
		ev.Event = eventSubmitFailed
		ev.Extra = map[string]string{"operation": notice.Operation, "error": notice.Detail}
		m.events.Emit(ev)
		return nil
	}

	m.setToast(notice.Title, toastDuration)
	m.logger.Info(notice.Title, "operation", notice.Operation, "record", ev.RecordID)
	ev.Event = eventRecordSaved
	if req.Action == crud.ActionDelete {
		ev.Event = eventRecordDeleted
		ev.Extra = map[string]string{"reason": req.Reason}
	}
	m.events.Emit(ev)

	if !refetched {
		return m.loadPageCmd()
	}
	m.engine.SetRows(rows)
	m.sync()
	return nil
}

func (m *model) requestClose() {
	if _, err := m.orch.RequestClose(); err != nil {
		m.setToast("Please wait for the current request to finish", toastDuration)
	}
}

func (m *model) copySelected() {
	row, ok := m.table.SelectedRow()
	if !ok {
		m.setToast(crud.ErrNoSelection.Error(), toastDuration)
		return
	}
	data, err := recordJSON(row)
	if err == nil {
		err = clipboard.WriteAll(data)
	}
	if err != nil {
		m.setToast(fmt.Sprintf("Copy failed: %v", err), errorDuration)
		return
	}
	m.setToast("Record copied to clipboard", toastDuration)
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	switch msg.Type {
	case tea.MouseWheelUp:
		if !m.orch.IsOpen() {
			m.table.table.MoveUp(1)
			m.sync()
		}
	case tea.MouseWheelDown:
		if !m.orch.IsOpen() {
			m.table.table.MoveDown(1)
			m.sync()
		}
	case tea.MouseLeft:
		if m.engine.OpenEditor() == "" {
			return
		}
		inside := msg.Y >= m.editorTop && msg.Y < m.editorTop+m.editorRows
		m.engine.PointerDown(inside)
		if m.engine.OpenEditor() == "" {
			m.closeFilterFocus()
		}
		m.sync()
	}
}

// tryAgain clears a fault and resets local UI state, keeping loaded data.
func (m *model) tryAgain() {
	m.boundary.Reset()
	if m.orch.IsOpen() && !m.orch.Submitting() {
		if closed, _ := m.orch.RequestClose(); !closed {
			_ = m.orch.ConfirmDiscard()
		}
	}
	m.formPending = false
	m.engine.CloseFilterEditor()
	m.focus = focusTable
	m.search.Blur()
	m.filterInput.Blur()
	m.table.Focus()
	m.applyLayout()
}

// reloadAll clears a fault, rebuilds the table state and refetches
// everything.
func (m *model) reloadAll() tea.Cmd {
	m.tryAgain()
	if err := m.buildEngine(m.engine.PageSize()); err != nil {
		m.logger.Error("rebuild table", "err", err)
	}
	m.searchSeq++
	m.search.SetValue("")
	m.referenceReady = false
	m.service.Cache().Remove(othermaster.KeyAll())
	return m.loadPageCmd()
}

func (m *model) savePrefs() {
	if err := saveUIConfig(m.uiConfig, m.uiConfigPath); err != nil {
		m.logger.Warn("save ui config", "path", m.uiConfigPath, "err", err)
	}
}

// sync pushes the engine's view into the table and preview.
func (m *model) sync() {
	m.table.Sync(m.engine.View())
	if m.showPreview {
		row, ok := m.table.SelectedRow()
		m.preview.Show(row, ok)
	}
}

func (m *model) applyLayout() {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 6
	}
	editorLines := 0
	if m.engine.OpenEditor() != "" {
		editorLines = 3
	}
	// header box, status bar, help, table panel border, footer, table header
	tableHeight := m.height - 3 - 1 - helpLines - 2 - 1 - 2 - editorLines
	if tableHeight < 3 {
		tableHeight = 3
	}
	tableWidth := m.width - 2
	if m.showPreview {
		pw := m.width * 2 / 5
		tableWidth = m.width - pw - 4
		m.preview.SetSize(pw, tableHeight+3)
	}
	m.help.Width = m.width - 4
	m.table.SetSize(tableWidth, tableHeight)
	m.sync()
}

func (m *model) View() string {
	out := m.boundary.Render("view", m.render)
	if m.boundary.Tripped() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.boundary.View(m.styles, m.width))
	}
	return out
}

func (m *model) render() string {
	var builder strings.Builder

	header := m.renderHeader()
	builder.WriteString(header)
	builder.WriteRune('\n')
	lines := lipgloss.Height(header)

	m.editorTop, m.editorRows = -1, 0
	if col := m.engine.OpenEditor(); col != "" {
		editor := m.renderFilterEditor(col)
		m.editorTop = lines
		m.editorRows = lipgloss.Height(editor)
		builder.WriteString(editor)
		builder.WriteRune('\n')
		lines += m.editorRows
	}

	modal := m.orch.IsOpen() || m.formPending
	bodyHeight := m.height - lines - 2
	switch {
	case modal:
		var overlay string
		if m.formPending {
			overlay = loadingView(m.styles, m.width, m.spinner.View())
		} else {
			overlay = m.form.View(m.styles, m.width, m.spinner.View())
		}
		builder.WriteString(lipgloss.Place(m.width, max(bodyHeight, lipgloss.Height(overlay)), lipgloss.Center, lipgloss.Center, overlay))
	case m.loadErr != nil:
		builder.WriteString(m.renderLoadError())
	default:
		body := m.table.View(m.styles, m.focus == focusTable)
		if m.showPreview {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.preview.View(m.styles))
		}
		builder.WriteString(body)
	}
	builder.WriteRune('\n')

	if helpView := m.help.View(m.keys); helpView != "" && !modal {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}
	builder.WriteString(m.renderStatus())
	return m.styles.app.Render(builder.String())
}

func (m *model) renderHeader() string {
	title := m.styles.title.Render(pageTitle)
	box := m.styles.searchBox
	if m.focus == focusSearch {
		box = m.styles.searchActive
	}
	parts := []string{title, "  ", box.Render(m.search.View())}
	if m.searchActive() {
		parts = append(parts, m.styles.secondaryAction.Render("✕ Clear (ctrl+x)"))
	}
	parts = append(parts, m.styles.primaryAction.Render("Add + (a)"))
	return m.styles.topBar.Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

func (m *model) renderFilterEditor(columnID string) string {
	label := columnID
	if col, ok := m.engine.Column(columnID); ok {
		label = col.Header
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.fieldLabel.Render("Filter "+label),
		m.filterInput.View(),
		m.styles.hint.Render("  enter apply • esc close"),
	)
	return m.styles.filterEditor.Render(content)
}

func (m *model) renderLoadError() string {
	var sb strings.Builder
	sb.WriteString(m.styles.noticeErr.Render("Failed to load data"))
	sb.WriteRune('\n')
	sb.WriteString(m.loadErr.Error())
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.hint.Render("Press r to retry"))
	return m.styles.panel.Width(m.width - 2).Padding(1, 2).Render(sb.String())
}

func (m *model) renderStatus() string {
	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("Scope %s • User %d", m.session.Scope(), m.session.UserID)),
	}
	if srt := m.engine.Sort(); srt.ColumnID != "" {
		label := srt.ColumnID
		if col, ok := m.engine.Column(srt.ColumnID); ok {
			label = col.Header
		}
		segments = append(segments, m.styles.statusSeg.Render("Sort: "+label+" "+srt.Direction.Indicator()))
	}
	if n := len(m.engine.ActiveFilters()); n > 0 {
		segments = append(segments, m.styles.statusSeg.Render("Filters: "+strconv.Itoa(n)))
	}
	if g := m.engine.GlobalFilter(); g != "" {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Search: %q", g)))
	}
	switch {
	case m.jobs.Running():
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" "+m.jobs.Title()+"..."))
	case m.loading:
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" Loading..."))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, lipgloss.NewStyle().Render("│"))
	return m.styles.statusBar.Width(m.width).Render(content)
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}
