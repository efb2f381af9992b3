// Package datatable implements a generic in-memory table browser: per-column
// filters, a global filter, single-column sort, client-side pagination and a
// single-open filter editor.
package datatable

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultPageSize     = 10
	DefaultSkeletonRows = 5
	DefaultEmptyText    = "No results found"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNotSortable     = errors.New("column is not sortable")
	ErrNotFilterable   = errors.New("column is not filterable")
)

// Entry is a row together with its position in the data set.
type Entry[T any] struct {
	Index int
	Row   T
}

type settings struct {
	pageSize     int
	skeletonRows int
	emptyText    string
}

type Option func(*settings)

func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithSkeletonRows(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.skeletonRows = n
		}
	}
}

func WithEmptyText(text string) Option {
	return func(s *settings) {
		if strings.TrimSpace(text) != "" {
			s.emptyText = text
		}
	}
}

// Engine owns the filter, sort, pagination and global-filter state of one
// table instance. Rows handed to SetRows are never modified.
type Engine[T any] struct {
	columns []Column[T]
	byID    map[string]int
	opts    settings

	rows    []T
	loading bool

	filters map[string]string
	global  string
	sort    Sort
	editor  string

	pageIndex int
	pageSize  int

	filtered []Entry[T]
}

func New[T any](columns []Column[T], opts ...Option) (*Engine[T], error) {
	s := settings{
		pageSize:     DefaultPageSize,
		skeletonRows: DefaultSkeletonRows,
		emptyText:    DefaultEmptyText,
	}
	for _, opt := range opts {
		opt(&s)
	}
	byID := make(map[string]int, len(columns))
	for i, col := range columns {
		if strings.TrimSpace(col.ID) == "" {
			return nil, fmt.Errorf("column %d: empty id", i)
		}
		if _, ok := byID[col.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.ID)
		}
		byID[col.ID] = i
	}
	e := &Engine[T]{
		columns:  slices.Clone(columns),
		byID:     byID,
		opts:     s,
		filters:  make(map[string]string),
		pageSize: s.pageSize,
	}
	e.recompute()
	return e, nil
}

func (e *Engine[T]) Columns() []Column[T] {
	return slices.Clone(e.columns)
}

func (e *Engine[T]) Column(id string) (Column[T], bool) {
	i, ok := e.byID[id]
	if !ok {
		return Column[T]{}, false
	}
	return e.columns[i], true
}

// SetRows replaces the data set. The slice is retained but never written to.
func (e *Engine[T]) SetRows(rows []T) {
	e.rows = rows
	e.recompute()
}

func (e *Engine[T]) Rows() []T { return e.rows }

func (e *Engine[T]) SetLoading(loading bool) { e.loading = loading }

func (e *Engine[T]) Loading() bool { return e.loading }

// ToggleSort cycles the sort of a column none → asc → desc → none. Sorting a
// different column drops the previous column's sort.
func (e *Engine[T]) ToggleSort(columnID string) error {
	col, ok := e.Column(columnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, columnID)
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %s", ErrNotSortable, columnID)
	}
	current := SortNone
	if e.sort.ColumnID == columnID {
		current = e.sort.Direction
	}
	next := current.next()
	if next == SortNone {
		e.sort = Sort{}
	} else {
		e.sort = Sort{ColumnID: columnID, Direction: next}
	}
	e.recompute()
	return nil
}

func (e *Engine[T]) Sort() Sort { return e.sort }

func (e *Engine[T]) SortDirection(columnID string) Direction {
	if e.sort.ColumnID == columnID {
		return e.sort.Direction
	}
	return SortNone
}

// SetColumnFilter sets the containment filter of a column. A blank value
// clears the filter and closes the column's editor.
func (e *Engine[T]) SetColumnFilter(columnID, value string) error {
	col, ok := e.Column(columnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, columnID)
	}
	if !col.Filterable {
		return fmt.Errorf("%w: %s", ErrNotFilterable, columnID)
	}
	if strings.TrimSpace(value) == "" {
		delete(e.filters, columnID)
		if e.editor == columnID {
			e.editor = ""
		}
	} else {
		e.filters[columnID] = value
	}
	e.recompute()
	return nil
}

func (e *Engine[T]) ColumnFilter(columnID string) string {
	return e.filters[columnID]
}

// ActiveFilters returns a copy of the active column filters.
func (e *Engine[T]) ActiveFilters() map[string]string {
	out := make(map[string]string, len(e.filters))
	for k, v := range e.filters {
		out[k] = v
	}
	return out
}

func (e *Engine[T]) ClearFilters() {
	clear(e.filters)
	e.editor = ""
	e.recompute()
}

func (e *Engine[T]) SetGlobalFilter(value string) {
	if e.global == value {
		return
	}
	e.global = value
	e.recompute()
}

func (e *Engine[T]) GlobalFilter() string { return e.global }

// OpenFilterEditor opens the editor of a column, closing any other.
func (e *Engine[T]) OpenFilterEditor(columnID string) error {
	col, ok := e.Column(columnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, columnID)
	}
	if !col.Filterable {
		return fmt.Errorf("%w: %s", ErrNotFilterable, columnID)
	}
	e.editor = columnID
	return nil
}

// ToggleFilterEditor behaves like the filter icon of a header.
func (e *Engine[T]) ToggleFilterEditor(columnID string) error {
	if e.editor == columnID {
		e.editor = ""
		return nil
	}
	return e.OpenFilterEditor(columnID)
}

func (e *Engine[T]) CloseFilterEditor() { e.editor = "" }

// OpenEditor returns the column whose filter editor is open, or "".
func (e *Engine[T]) OpenEditor() string { return e.editor }

func (e *Engine[T]) EditorOpen(columnID string) bool {
	return e.editor != "" && e.editor == columnID
}

// PointerDown routes a click. Clicks inside the open editor are consumed;
// anything else closes it.
func (e *Engine[T]) PointerDown(insideEditor bool) {
	if insideEditor {
		return
	}
	e.editor = ""
}

// Escape closes the open editor and reports whether one was open.
func (e *Engine[T]) Escape() bool {
	if e.editor == "" {
		return false
	}
	e.editor = ""
	return true
}

// ChangePage moves to pageIndex. Requests outside [0, totalPages) are
// ignored.
func (e *Engine[T]) ChangePage(pageIndex int) bool {
	if pageIndex < 0 || pageIndex >= totalPages(len(e.filtered), e.pageSize) {
		return false
	}
	e.pageIndex = pageIndex
	return true
}

func (e *Engine[T]) NextPage() bool {
	next, ok := e.Footer().Next()
	if !ok {
		return false
	}
	return e.ChangePage(next)
}

func (e *Engine[T]) PrevPage() bool {
	prev, ok := e.Footer().Prev()
	if !ok {
		return false
	}
	return e.ChangePage(prev)
}

func (e *Engine[T]) SetPageSize(size int) {
	if size < 1 {
		size = 1
	}
	e.pageSize = size
	e.clampPage()
}

func (e *Engine[T]) PageIndex() int { return e.pageIndex }

func (e *Engine[T]) PageSize() int { return e.pageSize }

// Footer reports pagination over the filtered row count.
func (e *Engine[T]) Footer() Footer {
	return Footer{PageIndex: e.pageIndex, PageSize: e.pageSize, TotalItems: len(e.filtered)}
}

// Filtered returns every row that passes the filters, in sorted order.
func (e *Engine[T]) Filtered() []Entry[T] {
	return slices.Clone(e.filtered)
}

// Visible returns the rows of the current page.
func (e *Engine[T]) Visible() []Entry[T] {
	start := e.pageIndex * e.pageSize
	if start >= len(e.filtered) {
		return nil
	}
	end := min(start+e.pageSize, len(e.filtered))
	return slices.Clone(e.filtered[start:end])
}

// Activate invokes the action bound to key on the visible row at position
// pos of the current page.
func (e *Engine[T]) Activate(pos int, key string) bool {
	visible := e.Visible()
	if pos < 0 || pos >= len(visible) {
		return false
	}
	for _, col := range e.columns {
		action, ok := col.Action(key)
		if !ok || action.Invoke == nil {
			continue
		}
		action.Invoke(visible[pos].Row)
		return true
	}
	return false
}

func (e *Engine[T]) recompute() {
	e.filtered = e.pipeline()
	e.clampPage()
}

func (e *Engine[T]) clampPage() {
	last := totalPages(len(e.filtered), e.pageSize) - 1
	if e.pageIndex > last {
		e.pageIndex = last
	}
	if e.pageIndex < 0 {
		e.pageIndex = 0
	}
}

// pipeline runs column filters, then the global filter, then the sort.
func (e *Engine[T]) pipeline() []Entry[T] {
	out := make([]Entry[T], 0, len(e.rows))
	for i, row := range e.rows {
		out = append(out, Entry[T]{Index: i, Row: row})
	}
	out = e.applyColumnFilters(out)
	out = e.applyGlobalFilter(out)
	e.applySort(out)
	return out
}

func (e *Engine[T]) applyColumnFilters(in []Entry[T]) []Entry[T] {
	if len(e.filters) == 0 {
		return in
	}
	out := in[:0:0]
	for _, entry := range in {
		keep := true
		for id, needle := range e.filters {
			col := e.columns[e.byID[id]]
			if !contains(col.value(entry.Row, entry.Index), needle) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, entry)
		}
	}
	return out
}

func (e *Engine[T]) applyGlobalFilter(in []Entry[T]) []Entry[T] {
	if strings.TrimSpace(e.global) == "" {
		return in
	}
	out := in[:0:0]
	for _, entry := range in {
		for _, col := range e.columns {
			if !col.searchable() || col.Value == nil {
				continue
			}
			if contains(col.value(entry.Row, entry.Index), e.global) ||
				(col.Cell != nil && contains(col.Cell(entry.Row, entry.Index), e.global)) {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func (e *Engine[T]) applySort(entries []Entry[T]) {
	if !e.sort.active() {
		return
	}
	col := e.columns[e.byID[e.sort.ColumnID]]
	slices.SortStableFunc(entries, func(a, b Entry[T]) int {
		c := compareValues(col.value(a.Row, a.Index), col.value(b.Row, b.Index))
		if e.sort.Direction == SortDesc {
			return -c
		}
		return c
	})
}

func contains(value any, needle string) bool {
	return strings.Contains(strings.ToLower(stringify(value)), strings.ToLower(strings.TrimSpace(needle)))
}
