// Package crud drives a mode-aware record form: Create, View, Edit and
// Delete, with close and delete confirmation layered on top.
package crud

import (
	"fmt"
	"strings"
)

type Mode int

const (
	Create Mode = iota
	View
	Edit
	Delete
)

func (m Mode) String() string {
	switch m {
	case Create:
		return "Create"
	case View:
		return "View"
	case Edit:
		return "Edit"
	case Delete:
		return "Delete"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Create, View, Edit, Delete} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown form mode %q", s)
}

// Action is the request discriminator a submit produces.
type Action int

const (
	ActionNone Action = iota
	ActionInsert
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "Insert"
	case ActionUpdate:
		return "Update"
	case ActionDelete:
		return "Delete"
	default:
		return ""
	}
}

// Rule is everything a mode decides.
type Rule struct {
	Editable       bool
	RequiresReason bool
	Action         Action
	SubmitLabel    string
	Destructive    bool
	// Operation names the operation in notices: create, update or delete.
	Operation string
	Past      string
}

var rules = map[Mode]Rule{
	Create: {Editable: true, Action: ActionInsert, SubmitLabel: "Save", Operation: "create", Past: "created"},
	View:   {},
	Edit:   {Editable: true, Action: ActionUpdate, SubmitLabel: "Update", Operation: "update", Past: "updated"},
	Delete: {RequiresReason: true, Action: ActionDelete, SubmitLabel: "Delete", Destructive: true, Operation: "delete", Past: "deleted"},
}

func RuleFor(m Mode) Rule {
	return rules[m]
}

// CanSubmit reports whether the mode has a submit action at all.
func (r Rule) CanSubmit() bool {
	return r.Action != ActionNone
}
