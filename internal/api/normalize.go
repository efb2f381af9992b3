package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrNotArray = errors.New("Invalid list response from server")

// ExtractArray accepts either a bare JSON array or an object carrying the
// array under "data" and returns the raw array elements.
func ExtractArray(body []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrNotArray)
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		parsed = parsed.Get("data")
	}
	if !parsed.IsArray() {
		return nil, ErrNotArray
	}
	items := parsed.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out, nil
}

// DecodeList unwraps body with ExtractArray and decodes every element into
// T. check, when given, validates each decoded element.
func DecodeList[T any](body []byte, check func(T) error) ([]T, error) {
	raw, err := ExtractArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		if check != nil {
			if err := check(v); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeString decodes a JSON string body, the acknowledgement some write
// endpoints return.
func DecodeString(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	parsed := gjson.ParseBytes(body)
	if parsed.Type != gjson.String {
		return "", false
	}
	return parsed.String(), true
}
