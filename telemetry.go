package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// uiEvent is one line of ui-events.ndjson.
type uiEvent struct {
	SessionID string            `json:"session_id"`
	UserID    int               `json:"user_id,omitempty"`
	ScopeID   int               `json:"scope_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Mode      string            `json:"mode,omitempty"`
	RecordID  int               `json:"record_id,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

const (
	eventFormOpened    = "form_opened"
	eventRecordSaved   = "record_saved"
	eventRecordDeleted = "record_deleted"
	eventSubmitFailed  = "submit_failed"
	eventRenderFault   = "render_fault"
)

type eventTrail struct {
	path      string
	sessionID string
	userID    int
	scopeID   int
	now       func() time.Time
	mu        sync.Mutex
}

// newEventTrail appends to path. An empty path disables the trail.
func newEventTrail(path string, userID, scopeID int) *eventTrail {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &eventTrail{
		path:      path,
		sessionID: uuid.NewString(),
		userID:    userID,
		scopeID:   scopeID,
		now:       time.Now,
	}
}

func (t *eventTrail) Emit(event uiEvent) {
	if t == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	if event.SessionID == "" {
		event.SessionID = t.sessionID
	}
	if event.UserID == 0 {
		event.UserID = t.userID
	}
	if event.ScopeID == 0 {
		event.ScopeID = t.scopeID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now().UTC()
	}
	if len(event.Extra) == 0 {
		event.Extra = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}
