package datatable

import (
	"fmt"
	"strings"
	"time"
)

// Action is a per-row trigger rendered inside an actions column.
type Action[T any] struct {
	Name        string
	Label       string
	Key         string
	Destructive bool
	Invoke      func(row T)
}

// Column describes one column of a table instance. ID must be unique within
// the table and the descriptor is not modified after the engine is built.
type Column[T any] struct {
	ID     string
	Header string

	// Value is the accessor used for filtering and sorting. index is the
	// row's position in the data set handed to SetRows.
	Value func(row T, index int) any
	// Cell renders the value for display. When nil the accessor value is
	// printed.
	Cell func(row T, index int) string

	Sortable   bool
	Filterable bool
	// Searchable overrides Filterable for the global filter when set.
	Searchable *bool
	Width      int

	Actions []Action[T]
}

func (c Column[T]) searchable() bool {
	if c.Searchable != nil {
		return *c.Searchable
	}
	return c.Filterable
}

func (c Column[T]) value(row T, index int) any {
	if c.Value == nil {
		return nil
	}
	return c.Value(row, index)
}

func (c Column[T]) render(row T, index int) string {
	if c.Cell != nil {
		return c.Cell(row, index)
	}
	if len(c.Actions) > 0 {
		labels := make([]string, 0, len(c.Actions))
		for _, action := range c.Actions {
			label := action.Label
			if action.Key != "" {
				label = fmt.Sprintf("[%s] %s", action.Key, action.Label)
			}
			labels = append(labels, label)
		}
		return strings.Join(labels, " ")
	}
	return stringify(c.value(row, index))
}

// Action returns the action bound to key, if the column carries one.
func (c Column[T]) Action(key string) (Action[T], bool) {
	for _, action := range c.Actions {
		if action.Key == key || action.Name == key {
			return action, true
		}
	}
	return Action[T]{}, false
}

// Bool is a helper for Column.Searchable.
func Bool(v bool) *bool { return &v }

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
