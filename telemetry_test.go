package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []uiEvent {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []uiEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev uiEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		out = append(out, ev)
	}
	return out
}

func TestEventTrailFillsSessionFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.ndjson")
	trail := newEventTrail(path, 11, 3)
	require.NotNil(t, trail)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	trail.now = func() time.Time { return at }

	trail.Emit(uiEvent{Event: eventFormOpened, Mode: "Create"})
	trail.Emit(uiEvent{Event: eventRecordDeleted, RecordID: 7, Extra: map[string]string{"reason": "Duplicate"}})
	trail.Emit(uiEvent{})

	evs := readEvents(t, path)
	require.Len(t, evs, 2)
	for _, ev := range evs {
		assert.Equal(t, trail.sessionID, ev.SessionID)
		assert.Equal(t, 11, ev.UserID)
		assert.Equal(t, 3, ev.ScopeID)
		assert.True(t, at.Equal(ev.Timestamp))
	}
	assert.Equal(t, "Create", evs[0].Mode)
	assert.Equal(t, 7, evs[1].RecordID)
	assert.Equal(t, "Duplicate", evs[1].Extra["reason"])
}

func TestNilEventTrailIsSafe(t *testing.T) {
	trail := newEventTrail("  ", 1, 1)
	assert.Nil(t, trail)
	assert.NotPanics(t, func() { trail.Emit(uiEvent{Event: eventRecordSaved}) })
}
