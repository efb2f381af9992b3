package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruturaj2003/r-L-Tech/internal/api"
	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/datatable"
	"github.com/Ruturaj2003/r-L-Tech/internal/logger"
	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
	"github.com/Ruturaj2003/r-L-Tech/internal/querycache"
	"github.com/Ruturaj2003/r-L-Tech/internal/session"
)

type fakeBackend struct {
	mu      sync.Mutex
	rows    []othermaster.Master
	nextID  int
	listErr error
	saveErr error
	lists   int
	saves   []othermaster.UpsertRequest
	deletes []url.Values
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID: 100,
		rows: []othermaster.Master{
			{TransNo: 7, MasterType: "Logistics", MasterName: "Freight", Status: othermaster.StatusActive},
			{TransNo: 8, MasterType: "Finance", MasterName: "Billing", Status: othermaster.StatusInactive},
			{TransNo: 9, MasterType: "Logistics", MasterName: "Courier", Status: othermaster.StatusActive},
		},
	}
}

func (b *fakeBackend) Get(_ context.Context, path string, _ url.Values) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case strings.HasSuffix(path, "/GetData/list"):
		b.lists++
		if b.listErr != nil {
			return nil, b.listErr
		}
		return json.Marshal(map[string]any{"data": b.rows})
	case strings.HasSuffix(path, "/GetMasterType"):
		return []byte(`[{"masterType":"Logistics"},{"masterType":"Finance"}]`), nil
	case strings.HasSuffix(path, "/GetData/Load"):
		return []byte(`[{"mTransNo":1,"masterName":"Duplicate"},{"mTransNo":2,"masterName":"Obsolete"}]`), nil
	}
	return nil, &api.Error{Status: 404, Code: "NOT_FOUND", Message: "Record not found"}
}

func (b *fakeBackend) Post(_ context.Context, _ string, body any) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req := body.(othermaster.UpsertRequest)
	b.saves = append(b.saves, req)
	if b.saveErr != nil {
		return nil, b.saveErr
	}
	row := othermaster.Master{TransNo: req.TransNo, MasterType: req.MasterType, MasterName: req.MasterName, Status: req.LockStatus}
	if req.TransNo == 0 {
		b.nextID++
		row.TransNo = b.nextID
		b.rows = append(b.rows, row)
		return []byte(strconv.Quote(strconv.Itoa(row.TransNo))), nil
	}
	for i := range b.rows {
		if b.rows[i].TransNo == req.TransNo {
			b.rows[i] = row
		}
	}
	return []byte(strconv.Quote(strconv.Itoa(row.TransNo))), nil
}

func (b *fakeBackend) Delete(_ context.Context, path string, query url.Values) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, query)
	id, err := strconv.Atoi(path[strings.LastIndex(path, "/")+1:])
	if err != nil {
		return nil, err
	}
	kept := b.rows[:0]
	for _, r := range b.rows {
		if r.TransNo != id {
			kept = append(kept, r)
		}
	}
	b.rows = kept
	return []byte(`"Deleted"`), nil
}

func (b *fakeBackend) setListErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
}

type harness struct {
	t   *testing.T
	m   *model
	b   *fakeBackend
	dir string
}

func newHarness(t *testing.T, b *fakeBackend) *harness {
	t.Helper()
	dir := t.TempDir()
	ui, path := loadUIConfig(dir)
	m, err := newModel(deps{
		service:  othermaster.NewService(b, querycache.New(), logger.Discard()),
		session:  session.Session{ScopeID: 3, UserID: 11},
		logger:   logger.Discard(),
		events:   newEventTrail(filepath.Join(dir, eventsFile), 11, 3),
		ui:       ui,
		uiPath:   path,
		pageSize: 2,
		theme:    markdownThemeDark,
	})
	require.NoError(t, err)
	h := &harness{t: t, m: m, b: b, dir: dir}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.settle(m.Init())
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	_, cmd := h.m.Update(msg)
	h.settle(cmd)
}

// press sends keys one at a time and runs whatever page work they start.
func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// settle runs cmd and feeds back the messages the page reacts to. Timer and
// cursor blink commands are dropped.
func (h *harness) settle(cmd tea.Cmd) {
	h.t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case pageLoadedMsg, jobMsg, searchDebounceMsg:
			_, next := h.m.Update(msg)
			h.settle(next)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) events() []uiEvent {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, eventsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(h.t, err)
	var out []uiEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev uiEvent
		require.NoError(h.t, json.Unmarshal([]byte(line), &ev))
		out = append(out, ev)
	}
	return out
}

func eventNames(evs []uiEvent) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Event
	}
	return out
}

func TestInitialLoadFillsTableAndLookups(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	assert.False(t, m.loading)
	assert.NoError(t, m.loadErr)
	assert.True(t, m.referenceReady)
	assert.Len(t, m.engine.Filtered(), 3)
	assert.Len(t, m.engine.Visible(), 2)
	assert.Len(t, m.orch.Options(othermaster.FieldMasterType), 2)
	assert.Len(t, m.orch.Options(othermaster.FieldDeleteReason), 2)

	view := m.View()
	assert.Contains(t, view, pageTitle)
	assert.Contains(t, view, "Freight")
	assert.Contains(t, view, "Add + (a)")
	assert.Contains(t, view, "Page 1 of 2")
}

func TestLoadFailureShowsRetryAndBlocksForms(t *testing.T) {
	b := newFakeBackend()
	b.setListErr(&api.Error{Status: 500, Code: "INTERNAL", Message: "database unavailable"})
	h := newHarness(t, b)
	m := h.m

	require.Error(t, m.loadErr)
	view := m.View()
	assert.Contains(t, view, "Failed to load data")
	assert.Contains(t, view, "database unavailable")
	assert.Contains(t, view, "Press r to retry")

	h.press("a")
	assert.False(t, m.orch.IsOpen())
	assert.Contains(t, m.toastMessage, "retry")

	b.setListErr(nil)
	h.press("r")
	assert.NoError(t, m.loadErr)
	assert.Len(t, m.engine.Filtered(), 3)
}

func TestCreateSavesAndRefreshesRows(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, b)
	m := h.m

	h.press("a")
	require.True(t, m.orch.IsOpen())
	assert.Equal(t, crud.Create, m.orch.Mode())
	assert.Contains(t, m.View(), "Add Master")

	h.press("l", "tab", "Warehouse", "ctrl+s")

	require.Len(t, b.saves, 1)
	saved := b.saves[0]
	assert.Equal(t, 0, saved.TransNo)
	assert.Equal(t, "Insert", saved.Status)
	assert.Equal(t, "Logistics", saved.MasterType)
	assert.Equal(t, "Warehouse", saved.MasterName)
	assert.Equal(t, 3, saved.SubscID)
	assert.Equal(t, 11, saved.CreatedBy)

	assert.False(t, m.orch.IsOpen())
	assert.False(t, m.jobs.Running())
	assert.Len(t, m.engine.Filtered(), 4)
	assert.Equal(t, "Master created successfully", m.toastMessage)
	assert.Equal(t, []string{eventFormOpened, eventRecordSaved}, eventNames(h.events()))
}

func TestCreateWithMissingFieldsStaysOpen(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, b)
	m := h.m

	h.press("a", "ctrl+s")

	assert.Empty(t, b.saves)
	assert.True(t, m.orch.IsOpen())
	assert.NotEmpty(t, m.orch.FieldError(othermaster.FieldMasterType))
	assert.NotEmpty(t, m.orch.FieldError(othermaster.FieldMasterName))
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	b := newFakeBackend()
	b.saveErr = &api.Error{Status: 409, Code: "DUPLICATE", Message: "Master already exists"}
	h := newHarness(t, b)
	m := h.m

	h.press("a", "l", "tab", "Freight", "ctrl+s")

	require.Len(t, b.saves, 1)
	assert.True(t, m.orch.IsOpen())
	assert.False(t, m.orch.Submitting())
	assert.Equal(t, crud.Create, m.orch.Mode())
	assert.Equal(t, "Freight", m.orch.Value(othermaster.FieldMasterName))
	require.NotNil(t, m.form.notice)
	assert.Equal(t, "Master already exists", m.form.notice.Detail)
	assert.Contains(t, m.toastMessage, "Failed to create master")
	assert.Len(t, m.engine.Filtered(), 3)

	evs := h.events()
	require.NotEmpty(t, evs)
	assert.Equal(t, eventSubmitFailed, evs[len(evs)-1].Event)
}

func TestDeleteNeedsReasonThenRemovesRow(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, b)
	m := h.m

	h.press("d")
	require.True(t, m.orch.IsOpen())
	assert.Equal(t, crud.Delete, m.orch.Mode())
	require.NotNil(t, m.orch.Target())
	assert.Equal(t, 7, m.orch.Target().TransNo)

	h.press("enter")
	assert.Equal(t, crud.ConfirmingDelete, m.orch.Phase())
	assert.False(t, m.orch.CanConfirmDelete())

	h.press("enter")
	assert.Empty(t, b.deletes)
	assert.Equal(t, crud.ConfirmingDelete, m.orch.Phase())

	h.press("right", "enter")
	require.Len(t, b.deletes, 1)
	assert.Equal(t, "Duplicate", b.deletes[0].Get("reason"))
	assert.Equal(t, "11", b.deletes[0].Get("userNo"))
	assert.False(t, m.orch.IsOpen())
	assert.Len(t, m.engine.Filtered(), 2)
	assert.Equal(t, "Master deleted successfully", m.toastMessage)
}

func TestCancelDeleteReturnsToForm(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("d", "enter")
	require.Equal(t, crud.ConfirmingDelete, m.orch.Phase())
	h.press("esc")
	assert.Equal(t, crud.Editing, m.orch.Phase())
	assert.True(t, m.orch.IsOpen())
}

func TestViewCanSwitchToEdit(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, b)
	m := h.m

	h.press("v")
	require.True(t, m.orch.IsOpen())
	assert.Equal(t, crud.View, m.orch.Mode())
	assert.Contains(t, m.View(), "Master Details")

	h.press("e")
	assert.Equal(t, crud.Edit, m.orch.Mode())
	assert.Equal(t, "Freight", m.orch.Value(othermaster.FieldMasterName))

	h.press("tab", "backspace", "backspace", "ctrl+s")
	require.Len(t, b.saves, 1)
	assert.Equal(t, "Update", b.saves[0].Status)
	assert.Equal(t, 7, b.saves[0].TransNo)
	assert.Equal(t, "Freig", b.saves[0].MasterName)
}

func TestDirtyCloseAsksFirst(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("a", "l", "esc")
	assert.Equal(t, crud.ConfirmingClose, m.orch.Phase())
	assert.Contains(t, m.View(), "Discard")

	h.press("n")
	assert.Equal(t, crud.Editing, m.orch.Phase())
	assert.Equal(t, "Logistics", m.orch.Value(othermaster.FieldMasterType))

	h.press("esc", "enter")
	assert.True(t, m.orch.IsOpen(), "enter keeps editing")
	assert.Equal(t, crud.Editing, m.orch.Phase())
	assert.Equal(t, "Logistics", m.orch.Value(othermaster.FieldMasterType))

	h.press("esc", "y")
	assert.False(t, m.orch.IsOpen())
}

func TestCleanCloseIsImmediate(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	h.press("a", "esc")
	assert.False(t, h.m.orch.IsOpen())
}

func TestSortAndColumnFilterKeys(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("s")
	assert.Equal(t, "SL cannot be sorted", m.toastMessage)

	h.press("l", "l", "s")
	assert.Equal(t, othermaster.ColumnName, m.engine.Sort().ColumnID)
	first, ok := m.table.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "Billing", first.MasterName)

	h.press("f")
	assert.Equal(t, focusFilter, m.focus)
	assert.Equal(t, othermaster.ColumnName, m.engine.OpenEditor())

	h.press("fre")
	assert.Equal(t, "fre", m.engine.ColumnFilter(othermaster.ColumnName))
	assert.Len(t, m.engine.Filtered(), 1)
	assert.Contains(t, m.View(), "Filter Name")

	h.press("esc")
	assert.Equal(t, focusTable, m.focus)
	assert.Empty(t, m.engine.OpenEditor())
	assert.Len(t, m.engine.Filtered(), 1)

	h.press("c")
	assert.Len(t, m.engine.Filtered(), 3)
}

func TestClearingFilterClosesEditor(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("l", "l", "f", "x")
	require.Equal(t, "x", m.engine.ColumnFilter(othermaster.ColumnName))
	assert.Contains(t, m.View(), datatable.DefaultEmptyText)

	h.press("backspace")
	assert.Empty(t, m.engine.ColumnFilter(othermaster.ColumnName))
	assert.Empty(t, m.engine.OpenEditor())
	assert.Equal(t, focusTable, m.focus)
}

func TestClickOutsideEditorClosesIt(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("l", "l", "f")
	_ = m.View()
	require.GreaterOrEqual(t, m.editorTop, 0)

	h.send(tea.MouseMsg{Type: tea.MouseLeft, Y: m.editorTop})
	assert.Equal(t, othermaster.ColumnName, m.engine.OpenEditor())

	h.send(tea.MouseMsg{Type: tea.MouseLeft, Y: m.height - 1})
	assert.Empty(t, m.engine.OpenEditor())
	assert.Equal(t, focusTable, m.focus)
}

func TestUnfilterableColumn(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	h.press("l", "f")
	assert.Equal(t, "Type has no filter", h.m.toastMessage)
	assert.Equal(t, focusTable, h.m.focus)
}

func TestSearchIsDebounced(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m
	m.debounce = 5 * time.Millisecond

	h.press("/")
	require.Equal(t, focusSearch, m.focus)

	_, cmd := m.Update(keyMsg("fin"))
	assert.Empty(t, m.engine.GlobalFilter())
	h.settle(cmd)
	assert.Equal(t, "fin", m.engine.GlobalFilter())
	assert.Len(t, m.engine.Filtered(), 1)
	assert.Contains(t, m.View(), "Clear (ctrl+x)")

	h.send(searchDebounceMsg{seq: m.searchSeq - 1, value: "stale"})
	assert.Equal(t, "fin", m.engine.GlobalFilter())

	saved, _ := loadUIConfig(h.dir)
	assert.Equal(t, "fin", saved.LastSearch)

	h.press("ctrl+x")
	assert.Empty(t, m.engine.GlobalFilter())
	assert.Empty(t, m.search.Value())
	assert.Len(t, m.engine.Filtered(), 3)
}

func TestSearchMatchesType(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	h.press("/", "logistics", "enter")
	assert.Equal(t, focusTable, h.m.focus)
	assert.Len(t, h.m.engine.Filtered(), 2)
}

func TestPagingKeys(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m

	h.press("n")
	assert.Equal(t, 1, m.engine.PageIndex())
	h.press("n")
	assert.Equal(t, 1, m.engine.PageIndex())
	h.press("p")
	assert.Equal(t, 0, m.engine.PageIndex())

	h.press("z")
	assert.Equal(t, 5, m.engine.PageSize())
	assert.Len(t, m.engine.Visible(), 3)
	saved, _ := loadUIConfig(h.dir)
	assert.Equal(t, 5, saved.PageSize)
}

func TestFormWaitsForReferenceData(t *testing.T) {
	b := newFakeBackend()
	dir := t.TempDir()
	m, err := newModel(deps{
		service:  othermaster.NewService(b, querycache.New(), logger.Discard()),
		session:  session.Session{ScopeID: 3, UserID: 11},
		logger:   logger.Discard(),
		uiPath:   filepath.Join(dir, "ui.yaml"),
		pageSize: 10,
	})
	require.NoError(t, err)
	h := &harness{t: t, m: m, b: b, dir: dir}

	h.press("a")
	assert.True(t, m.formPending)
	assert.False(t, m.orch.IsOpen())
	assert.Contains(t, m.View(), "Loading form data...")

	h.settle(m.loadPageCmd())
	assert.False(t, m.formPending)
	assert.True(t, m.orch.IsOpen())
	assert.Equal(t, crud.Create, m.orch.Mode())
}

func TestFaultBoundaryOffersRecovery(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, b)
	m := h.m

	h.press("a")
	m.boundary.Run("update", func() { panic("boom") })
	require.True(t, m.boundary.Tripped())
	view := m.View()
	assert.Contains(t, view, "Something went wrong")
	assert.Contains(t, view, "boom")

	h.press("d")
	assert.True(t, m.boundary.Tripped())

	h.press("t")
	assert.False(t, m.boundary.Tripped())
	assert.False(t, m.orch.IsOpen())
	assert.Len(t, m.engine.Filtered(), 3)

	h.press("l", "l", "s")
	m.boundary.Run("update", func() { panic("again") })
	listsBefore := b.lists
	h.press("R")
	assert.False(t, m.boundary.Tripped())
	assert.Empty(t, m.engine.Sort().ColumnID)
	assert.Greater(t, b.lists, listsBefore)
	assert.Len(t, m.engine.Filtered(), 3)

	assert.Contains(t, eventNames(h.events()), eventRenderFault)
}

func TestPreviewToggleIsRemembered(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	h.press("tab")
	assert.True(t, h.m.showPreview)
	assert.Contains(t, h.m.View(), "Preview")

	saved, _ := loadUIConfig(h.dir)
	assert.True(t, saved.Preview)
}

func TestPageKeysScrollPreview(t *testing.T) {
	h := newHarness(t, newFakeBackend())
	m := h.m
	h.press("tab")
	require.True(t, m.showPreview)
	m.preview.SetSize(40, 3)
	m.sync()
	cursor := m.table.Cursor()

	h.press("pgdown")
	assert.Positive(t, m.preview.viewport.YOffset)
	assert.Equal(t, cursor, m.table.Cursor())

	h.press("pgup")
	assert.Zero(t, m.preview.viewport.YOffset)
}

func TestNewModelRejectsBadSession(t *testing.T) {
	_, err := newModel(deps{session: session.Session{ScopeID: 0, UserID: 1}})
	assert.ErrorIs(t, err, session.ErrNoScope)
}
