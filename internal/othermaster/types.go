// Package othermaster is the Other Master screen: lookup values grouped by
// master type, browsed in a table and edited through the record form.
package othermaster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/validation"
)

const (
	StatusActive   = "Y"
	StatusInactive = "N"

	DeleteReasonType = "Delete Reason"
)

// Master is one row as returned by the list and detail endpoints.
type Master struct {
	TransNo    int    `json:"mTransNo"`
	MasterType string `json:"masterType"`
	MasterName string `json:"masterName"`
	Status     string `json:"status"`
}

func (m Master) Validate() error {
	switch {
	case strings.TrimSpace(m.MasterType) == "":
		return errors.New("masterType is empty")
	case strings.TrimSpace(m.MasterName) == "":
		return errors.New("masterName is empty")
	case m.Status != StatusActive && m.Status != StatusInactive:
		return fmt.Errorf("status %q is not Y or N", m.Status)
	}
	return nil
}

func (m Master) Active() bool { return m.Status == StatusActive }

// StatusLabel is the badge copy for the status column.
func (m Master) StatusLabel() string {
	if m.Active() {
		return "Active"
	}
	return "Inactive"
}

// MasterTypeOption is an item of the master type lookup.
type MasterTypeOption struct {
	MasterType string `json:"masterType"`
}

// DeleteReasonOption is an item of the delete reason lookup.
type DeleteReasonOption struct {
	TransNo    int    `json:"mTransNo"`
	MasterName string `json:"masterName"`
}

func MasterTypeOptions(in []MasterTypeOption) []crud.Option {
	out := make([]crud.Option, 0, len(in))
	for _, o := range in {
		out = append(out, crud.Option{Label: o.MasterType, Value: o.MasterType})
	}
	return out
}

// DeleteReasonOptions maps reasons to select options. The reason text is
// the value sent to the delete endpoint.
func DeleteReasonOptions(in []DeleteReasonOption) []crud.Option {
	out := make([]crud.Option, 0, len(in))
	for _, o := range in {
		out = append(out, crud.Option{Label: o.MasterName, Value: o.MasterName})
	}
	return out
}

// UpsertRequest is the SaveData payload. Status carries the Insert/Update
// discriminator.
type UpsertRequest struct {
	TransNo    int    `json:"mTransNo"`
	Count      int    `json:"mCount"`
	MasterType string `json:"masterType"`
	MasterName string `json:"masterName"`
	SystemIP   string `json:"systemIP"`
	LockStatus string `json:"lockStatus"`
	CreatedBy  int    `json:"createdBy"`
	CreatedOn  string `json:"createdOn"`
	SubscID    int    `json:"subscID"`
	Status     string `json:"status"`
}

type DeleteRequest struct {
	TransNo int    `json:"mTransNo"`
	UserNo  int    `json:"userNo"`
	Reason  string `json:"reason"`
}

var (
	upsertSchema = validation.Schema{
		"type": "object",
		"properties": map[string]any{
			"mTransNo":   map[string]any{"type": "integer", "minimum": 0},
			"mCount":     map[string]any{"type": "integer"},
			"masterType": map[string]any{"type": "string", "minLength": 1},
			"masterName": map[string]any{"type": "string", "minLength": 1, "maxLength": 50},
			"systemIP":   map[string]any{"type": "string"},
			"lockStatus": map[string]any{"enum": []string{StatusActive, StatusInactive}},
			"createdBy":  map[string]any{"type": "integer", "minimum": 1},
			"createdOn":  map[string]any{"type": "string", "format": "date-time"},
			"subscID":    map[string]any{"type": "integer", "minimum": 1},
			"status":     map[string]any{"enum": []string{"Insert", "Update"}},
		},
		"required": []string{"mTransNo", "mCount", "masterType", "masterName", "systemIP", "lockStatus", "createdBy", "createdOn", "subscID", "status"},
	}
	deleteSchema = validation.Schema{
		"type": "object",
		"properties": map[string]any{
			"mTransNo": map[string]any{"type": "integer", "minimum": 1},
			"userNo":   map[string]any{"type": "integer", "minimum": 1},
			"reason":   map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
		},
		"required": []string{"mTransNo", "userNo", "reason"},
	}

	payloadValidator = validation.NewValidator(func(fe validation.FieldError) string {
		if fe.Field == "reason" {
			return "Delete reason is required"
		}
		return ""
	})
)

func (r UpsertRequest) Validate() error {
	return payloadValidator.Validate(r, upsertSchema)
}

func (r DeleteRequest) Validate() error {
	return payloadValidator.Validate(r, deleteSchema)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
