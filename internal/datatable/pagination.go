package datatable

import "fmt"

// Footer is the pagination footer state. It is a pure value: the label and
// the disabled flags are derived from the three fields and nothing else.
type Footer struct {
	PageIndex  int
	PageSize   int
	TotalItems int
}

// TotalPages is ceil(TotalItems/PageSize) with a minimum of one page.
func (f Footer) TotalPages() int {
	return totalPages(f.TotalItems, f.PageSize)
}

func (f Footer) Label() string {
	return fmt.Sprintf("Page %d of %d • %d items", f.PageIndex+1, f.TotalPages(), f.TotalItems)
}

func (f Footer) PrevDisabled() bool {
	return f.PageIndex == 0
}

func (f Footer) NextDisabled() bool {
	return f.PageIndex+1 >= f.TotalPages()
}

// Prev returns the page index the Prev button requests. ok is false when the
// button is disabled.
func (f Footer) Prev() (int, bool) {
	if f.PrevDisabled() {
		return f.PageIndex, false
	}
	return f.PageIndex - 1, true
}

// Next returns the page index the Next button requests. ok is false when the
// button is disabled.
func (f Footer) Next() (int, bool) {
	if f.NextDisabled() {
		return f.PageIndex, false
	}
	return f.PageIndex + 1, true
}

func totalPages(items, size int) int {
	if size < 1 {
		size = 1
	}
	if items <= 0 {
		return 1
	}
	return (items + size - 1) / size
}
