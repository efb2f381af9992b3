// Package session carries the identity the console acts under.
package session

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNoScope = errors.New("session scope id must be positive")
	ErrNoUser  = errors.New("session user id must be positive")
)

// Session is passed explicitly to every entry point that reads or writes
// scoped data. ScopeID is the subscription (tenant) id; UserID is recorded
// as the acting user on writes.
type Session struct {
	ScopeID int
	UserID  int
	Token   string
}

func (s Session) Validate() error {
	if s.ScopeID <= 0 {
		return fmt.Errorf("%w: %d", ErrNoScope, s.ScopeID)
	}
	if s.UserID <= 0 {
		return fmt.Errorf("%w: %d", ErrNoUser, s.UserID)
	}
	return nil
}

// Scope renders the scope id as a cache key part.
func (s Session) Scope() string {
	return strconv.Itoa(s.ScopeID)
}

func (s Session) String() string {
	return fmt.Sprintf("scope=%d user=%d", s.ScopeID, s.UserID)
}
