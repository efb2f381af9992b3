package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		err  error
	}{
		{name: "ok", s: Session{ScopeID: 1, UserID: 2}},
		{name: "no scope", s: Session{UserID: 2}, err: ErrNoScope},
		{name: "negative user", s: Session{ScopeID: 1, UserID: -1}, err: ErrNoUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestScopeAndString(t *testing.T) {
	s := Session{ScopeID: 42, UserID: 7, Token: "t"}
	assert.Equal(t, "42", s.Scope())
	assert.Equal(t, "scope=42 user=7", s.String())
}
