package crud

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ruturaj2003/r-L-Tech/internal/validation"
)

type FieldKind int

const (
	Text FieldKind = iota
	Select
)

// Option is one entry of a select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// RequiredMessage defaults to "<Label> is required".
	RequiredMessage string
	MaxLength       int
	// Enum restricts the value to a fixed set.
	Enum []string
	// Constrained restricts the value to the loaded options of the field.
	Constrained bool
}

func (f Field) requiredMessage() string {
	if f.RequiredMessage != "" {
		return f.RequiredMessage
	}
	return f.Label + " is required"
}

// Form describes the fields of one record type.
type Form struct {
	// Noun names the record in notices, e.g. "Master".
	Noun   string
	Fields []Field
	// ReasonField is the delete reason field. It is only part of the draft
	// schema in Delete mode.
	ReasonField string
}

func (f Form) field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Schema returns the draft schema for mode. options feeds constrained
// select fields.
func (f Form) Schema(mode Mode, options map[string][]Option) validation.Schema {
	props := map[string]any{}
	var required []string
	rule := RuleFor(mode)
	for _, fd := range f.Fields {
		isReason := fd.Name == f.ReasonField
		if isReason && !rule.RequiresReason {
			continue
		}
		prop := map[string]any{"type": "string"}
		if fd.Required || isReason {
			prop["minLength"] = 1
			required = append(required, fd.Name)
		}
		if isReason {
			prop["pattern"] = `\S`
		}
		if fd.MaxLength > 0 {
			prop["maxLength"] = fd.MaxLength
		}
		if len(fd.Enum) > 0 {
			prop["enum"] = fd.Enum
		} else if fd.Constrained && len(options[fd.Name]) > 0 {
			values := make([]string, 0, len(options[fd.Name]))
			for _, o := range options[fd.Name] {
				values = append(values, o.Value)
			}
			prop["enum"] = values
		}
		props[fd.Name] = prop
	}
	schema := validation.Schema{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// messages maps schema failures onto the copy shown next to a field.
func (f Form) messages(fe validation.FieldError) string {
	fd, ok := f.field(fe.Field)
	if !ok {
		return ""
	}
	switch fe.Type {
	case "required", "string_gte", "pattern":
		return fd.requiredMessage()
	case "string_lte":
		limit := fd.MaxLength
		if v, ok := fe.Details["max"]; ok {
			if n, err := strconv.Atoi(fmt.Sprint(v)); err == nil {
				limit = n
			}
		}
		return fmt.Sprintf("Maximum %d characters allowed", limit)
	case "enum":
		if v, ok := fe.Value.(string); ok && strings.TrimSpace(v) == "" {
			return fd.requiredMessage()
		}
		return "Select a valid " + strings.ToLower(fd.Label)
	}
	return ""
}

// Values is a form draft keyed by field name.
type Values map[string]string

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v Values) Equal(other Values) bool {
	for k, val := range v {
		if other[k] != val {
			return false
		}
	}
	for k, val := range other {
		if v[k] != val {
			return false
		}
	}
	return true
}
