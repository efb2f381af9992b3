package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: 2},
		{name: "data envelope", body: `{"success":true,"data":[{"id":1}]}`, want: 1},
		{name: "empty array", body: `[]`, want: 0},
		{name: "object without data", body: `{"items":[]}`, wantErr: true},
		{name: "data not array", body: `{"data":{"id":1}}`, wantErr: true},
		{name: "string", body: `"hello"`, wantErr: true},
		{name: "malformed", body: `[{"id":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ExtractArray([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotArray)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestDecodeList(t *testing.T) {
	got, err := DecodeList[thing]([]byte(`{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, []thing{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, got)

	_, err = DecodeList[thing]([]byte(`[{"id":"x"}]`), nil)
	assert.Error(t, err)

	check := func(v thing) error {
		if v.Name == "" {
			return errors.New("name missing")
		}
		return nil
	}
	_, err = DecodeList([]byte(`[{"id":1}]`), check)
	assert.ErrorContains(t, err, "item 0: name missing")
}

func TestDecodeString(t *testing.T) {
	ack, ok := DecodeString([]byte(`"Saved"`))
	assert.True(t, ok)
	assert.Equal(t, "Saved", ack)

	_, ok = DecodeString([]byte(`{"id":1}`))
	assert.False(t, ok)
}
