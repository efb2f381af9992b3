package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personSchema = Schema{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1, "maxLength": 5},
		"age":  map[string]any{"type": "integer"},
	},
	"required": []string{"name"},
}

func TestValidate(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name      string
		data      any
		wantField string
		wantType  string
	}{
		{name: "valid", data: map[string]any{"name": "Ann", "age": 3}},
		{name: "missing required", data: map[string]any{"age": 3}, wantField: "name", wantType: "required"},
		{name: "too long", data: map[string]any{"name": "Annabelle"}, wantField: "name", wantType: "string_lte"},
		{name: "wrong type", data: map[string]any{"name": "Ann", "age": "x"}, wantField: "age", wantType: "invalid_type"},
		{name: "struct document", data: struct {
			Name string `json:"name"`
		}{Name: ""}, wantField: "name", wantType: "string_gte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data, personSchema)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, IsValidationError(err))
			ve := GetValidationErrors(err)
			require.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.wantField, ve.Errors[0].Field)
			assert.Equal(t, tt.wantType, ve.Errors[0].Type)
		})
	}
}

func TestValidateEmptySchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, NewValidator(nil).Validate(map[string]any{"x": 1}, nil))
}

func TestMessageFunc(t *testing.T) {
	v := NewValidator(func(fe FieldError) string {
		if fe.Type == "required" {
			return fmt.Sprintf("%s is required", fe.Field)
		}
		return ""
	})

	err := v.Validate(map[string]any{}, personSchema)
	ve := GetValidationErrors(err)
	require.NotNil(t, ve)
	assert.Equal(t, map[string]string{"name": "name is required"}, ve.ByField())
	assert.Equal(t, "name: name is required", err.Error())
}

func TestGetValidationErrorsOnOtherErrors(t *testing.T) {
	err := errors.New("boom")
	assert.False(t, IsValidationError(err))
	assert.Nil(t, GetValidationErrors(err))
	assert.True(t, IsValidationError(fmt.Errorf("wrap: %w", &Errors{})))
}
