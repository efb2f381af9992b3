package datatable

// HeaderView is the render state of one header cell.
type HeaderView struct {
	ID          string
	Title       string
	Width       int
	Sortable    bool
	Filterable  bool
	Sort        Direction
	FilterValue string
	EditorOpen  bool
}

// RowView is one rendered body row.
type RowView[T any] struct {
	Entry Entry[T]
	Cells []string
}

// View is the render-ready state of the table. Exactly one of Skeleton,
// Empty or a non-empty Rows is meaningful at a time.
type View[T any] struct {
	Headers      []HeaderView
	Rows         []RowView[T]
	Skeleton     bool
	SkeletonRows int
	Empty        bool
	EmptyText    string
	Footer       Footer
}

func (e *Engine[T]) View() View[T] {
	v := View[T]{
		Headers:   make([]HeaderView, 0, len(e.columns)),
		EmptyText: e.opts.emptyText,
		Footer:    e.Footer(),
	}
	for _, col := range e.columns {
		v.Headers = append(v.Headers, HeaderView{
			ID:          col.ID,
			Title:       col.Header,
			Width:       col.Width,
			Sortable:    col.Sortable,
			Filterable:  col.Filterable,
			Sort:        e.SortDirection(col.ID),
			FilterValue: e.filters[col.ID],
			EditorOpen:  e.EditorOpen(col.ID),
		})
	}
	if e.loading {
		v.Skeleton = true
		v.SkeletonRows = e.opts.skeletonRows
		return v
	}
	if len(e.filtered) == 0 {
		v.Empty = true
		return v
	}
	for _, entry := range e.Visible() {
		cells := make([]string, 0, len(e.columns))
		for _, col := range e.columns {
			cells = append(cells, col.render(entry.Row, entry.Index))
		}
		v.Rows = append(v.Rows, RowView[T]{Entry: entry, Cells: cells})
	}
	return v
}
