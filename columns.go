package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ruturaj2003/r-L-Tech/internal/datatable"
	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
)

const (
	minColumnWidth = 4
	skeletonGlyph  = "░"
)

// recordTable draws a datatable view with a bubbles table. The engine owns
// filtering, sorting and paging; the bubbles table only draws the current
// page and tracks the row cursor.
type recordTable[T any] struct {
	table     table.Model
	width     int
	height    int
	headerSel int
	view      datatable.View[T]
	decorate  func(columnID, cell string) string
}

func newRecordTable[T any](s styles) *recordTable[T] {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = s.header
	tStyles.Cell = s.cell
	tStyles.Selected = s.selected
	t.SetStyles(tStyles)
	return &recordTable[T]{table: t}
}

func (c *recordTable[T]) SetSize(width, height int) {
	if width < 30 {
		width = 30
	}
	if height < 4 {
		height = 4
	}
	c.width = width
	c.height = height
	c.table.SetWidth(width)
	c.table.SetHeight(height)
	c.layout()
}

// Sync loads the engine's current view into the bubbles table.
func (c *recordTable[T]) Sync(v datatable.View[T]) {
	c.view = v
	if c.headerSel >= len(v.Headers) {
		c.headerSel = len(v.Headers) - 1
	}
	if c.headerSel < 0 {
		c.headerSel = 0
	}
	c.layout()

	var rows []table.Row
	switch {
	case v.Skeleton:
		widths := c.widths()
		for i := 0; i < v.SkeletonRows; i++ {
			row := make(table.Row, len(widths))
			for j, w := range widths {
				row[j] = strings.Repeat(skeletonGlyph, max(1, w-2))
			}
			rows = append(rows, row)
		}
	case v.Empty:
	default:
		for _, r := range v.Rows {
			row := make(table.Row, len(r.Cells))
			for i, cell := range r.Cells {
				if c.decorate != nil && i < len(v.Headers) {
					cell = c.decorate(v.Headers[i].ID, cell)
				}
				row[i] = cell
			}
			rows = append(rows, row)
		}
	}
	c.table.SetRows(rows)
	if cur := c.table.Cursor(); cur >= len(rows) || cur < 0 {
		c.table.SetCursor(max(0, len(rows)-1))
	}
}

func (c *recordTable[T]) layout() {
	widths := c.widths()
	cols := make([]table.Column, len(c.view.Headers))
	for i, h := range c.view.Headers {
		cols[i] = table.Column{Title: c.headerTitle(i, h), Width: widths[i]}
	}
	c.table.SetColumns(cols)
}

// widths spreads spare room onto the widest column.
func (c *recordTable[T]) widths() []int {
	out := make([]int, len(c.view.Headers))
	total, widest := 0, 0
	for i, h := range c.view.Headers {
		w := h.Width
		if w < minColumnWidth {
			w = max(minColumnWidth, lipgloss.Width(h.Title)+3)
		}
		out[i] = w
		total += w + 2
		if w > out[widest] {
			widest = i
		}
	}
	if len(out) > 0 && c.width > total {
		out[widest] += c.width - total
	}
	return out
}

func (c *recordTable[T]) headerTitle(i int, h datatable.HeaderView) string {
	title := h.Title
	if ind := h.Sort.Indicator(); ind != "" {
		title += " " + ind
	}
	if h.FilterValue != "" {
		title += " ⚲"
	}
	if i == c.headerSel {
		title = "▸" + title
	}
	return title
}

// MoveHeader moves the header cursor used by sort and filter keys.
func (c *recordTable[T]) MoveHeader(delta int) {
	n := len(c.view.Headers)
	if n == 0 {
		return
	}
	c.headerSel = (c.headerSel + delta + n) % n
	c.layout()
}

func (c *recordTable[T]) SelectedHeader() (datatable.HeaderView, bool) {
	if c.headerSel < 0 || c.headerSel >= len(c.view.Headers) {
		return datatable.HeaderView{}, false
	}
	return c.view.Headers[c.headerSel], true
}

// Cursor is the highlighted position within the current page.
func (c *recordTable[T]) Cursor() int { return c.table.Cursor() }

func (c *recordTable[T]) SetCursor(pos int) { c.table.SetCursor(pos) }

// SelectedRow returns the highlighted row, if the page shows data.
func (c *recordTable[T]) SelectedRow() (T, bool) {
	var zero T
	if c.view.Skeleton || c.view.Empty {
		return zero, false
	}
	pos := c.table.Cursor()
	if pos < 0 || pos >= len(c.view.Rows) {
		return zero, false
	}
	return c.view.Rows[pos].Entry.Row, true
}

func (c *recordTable[T]) Focus() { c.table.Focus() }

func (c *recordTable[T]) Blur() { c.table.Blur() }

func (c *recordTable[T]) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.table, cmd = c.table.Update(msg)
	return cmd
}

func (c *recordTable[T]) View(s styles, focused bool) string {
	body := c.table.View()
	if c.view.Empty {
		empty := s.empty.Width(max(c.width-2, 10)).Render(c.view.EmptyText)
		body = lipgloss.JoinVertical(lipgloss.Left, body, empty)
	}
	body = lipgloss.JoinVertical(lipgloss.Left, body, c.footerView(s))
	if focused {
		return s.panelFocused.Width(c.width).Render(body)
	}
	return s.panel.Width(c.width).Render(body)
}

func (c *recordTable[T]) footerView(s styles) string {
	f := c.view.Footer
	prev := s.footer.Render("‹ Prev (p)")
	if f.PrevDisabled() {
		prev = s.footerDisabled.Render("‹ Prev (p)")
	}
	next := s.footer.Render("Next (n) ›")
	if f.NextDisabled() {
		next = s.footerDisabled.Render("Next (n) ›")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, s.footer.Render(f.Label()), prev, next)
}

// statusBadge marks the two-valued status column.
func statusBadge(columnID, cell string) string {
	if columnID != othermaster.ColumnStatus {
		return cell
	}
	switch cell {
	case "Active":
		return "● " + cell
	case "Inactive":
		return "○ " + cell
	}
	return cell
}
