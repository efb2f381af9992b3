package othermaster

import (
	"strconv"

	"github.com/Ruturaj2003/r-L-Tech/internal/datatable"
)

// RowActions are the callbacks behind the View, Edit and Delete triggers.
// Each receives the full row.
type RowActions struct {
	OnView   func(Master)
	OnEdit   func(Master)
	OnDelete func(Master)
}

const (
	ColumnSL      = "sl"
	ColumnType    = "masterType"
	ColumnName    = "masterName"
	ColumnStatus  = "status"
	ColumnActions = "actions"
)

// Columns builds the table columns: an ordinal, the data columns, the status
// badge and the row actions.
func Columns(actions RowActions) []datatable.Column[Master] {
	return []datatable.Column[Master]{
		{
			ID:     ColumnSL,
			Header: "SL",
			Value:  func(_ Master, index int) any { return index + 1 },
			Cell:   func(_ Master, index int) string { return strconv.Itoa(index + 1) },
			Width:  4,
		},
		{
			ID:         ColumnType,
			Header:     "Type",
			Value:      func(m Master, _ int) any { return m.MasterType },
			Sortable:   true,
			Searchable: datatable.Bool(true),
			Width:      18,
		},
		{
			ID:         ColumnName,
			Header:     "Name",
			Value:      func(m Master, _ int) any { return m.MasterName },
			Sortable:   true,
			Filterable: true,
			Width:      28,
		},
		{
			ID:       ColumnStatus,
			Header:   "Status",
			Value:    func(m Master, _ int) any { return m.Status },
			Cell:     func(m Master, _ int) string { return m.StatusLabel() },
			Sortable: true,
			Width:    10,
		},
		{
			ID:     ColumnActions,
			Header: "Actions",
			Width:  30,
			Actions: []datatable.Action[Master]{
				{Name: "view", Label: "View", Key: "v", Invoke: guard(actions.OnView)},
				{Name: "edit", Label: "Edit", Key: "e", Invoke: guard(actions.OnEdit)},
				{Name: "delete", Label: "Delete", Key: "d", Destructive: true, Invoke: guard(actions.OnDelete)},
			},
		},
	}
}

func guard(fn func(Master)) func(Master) {
	return func(m Master) {
		if fn != nil {
			fn(m)
		}
	}
}
