// Package validation checks documents against JSON schemas and reports
// per-field failures.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a JSON schema expressed as nested maps.
type Schema map[string]any

type FieldError struct {
	Field   string         `json:"field"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Value   any            `json:"-"`
	Details map[string]any `json:"-"`
}

type Errors struct {
	Errors []FieldError `json:"errors"`
}

func (e *Errors) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// ByField returns the first message recorded for each field.
func (e *Errors) ByField() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

// MessageFunc rewrites the message of a failure. Returning "" keeps the
// validator's description.
type MessageFunc func(FieldError) string

type Validator struct {
	messages MessageFunc
}

func NewValidator(messages MessageFunc) *Validator {
	return &Validator{messages: messages}
}

// Validate checks data against schema. Any Go value that marshals to JSON is
// accepted as data.
func (v *Validator) Validate(data any, schema Schema) error {
	if len(schema) == 0 {
		return nil
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var fieldErrors []FieldError
	for _, desc := range result.Errors() {
		fe := FieldError{
			Field:   fieldName(desc),
			Type:    desc.Type(),
			Message: desc.Description(),
			Value:   desc.Value(),
			Details: desc.Details(),
		}
		if v.messages != nil {
			if msg := v.messages(fe); msg != "" {
				fe.Message = msg
			}
		}
		fieldErrors = append(fieldErrors, fe)
	}
	return &Errors{Errors: fieldErrors}
}

// fieldName reports the offending property. Missing required properties are
// reported by gojsonschema against the parent object.
func fieldName(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if parent := desc.Field(); parent != "" && parent != "(root)" {
				return parent + "." + prop
			}
			return prop
		}
	}
	return desc.Field()
}

func IsValidationError(err error) bool {
	var ve *Errors
	return errors.As(err, &ve)
}

func GetValidationErrors(err error) *Errors {
	var ve *Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
