package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(New(dir), filepath.Join(dir, ".env"))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 1, cfg.Session.ScopeID)
	assert.Equal(t, filepath.Join(dir, "erp-console.log"), cfg.LogFile)
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	yaml := "api:\n  base_url: http://erp.internal\n  timeout: 5s\nui:\n  page_size: 25\nsession:\n  scope_id: 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	env := "ERPC_SESSION_USER_ID=77\nERPC_AUTH_TOKEN=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Setenv("ERPC_UI_PAGE_SIZE", "50")
	t.Cleanup(func() {
		os.Unsetenv("ERPC_SESSION_USER_ID")
		os.Unsetenv("ERPC_AUTH_TOKEN")
	})

	cfg, err := Load(New(dir), filepath.Join(dir, ".env"))
	require.NoError(t, err)

	assert.Equal(t, "http://erp.internal", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 4, cfg.Session.ScopeID)
	assert.Equal(t, 77, cfg.Session.UserID)
	assert.Equal(t, "from-dotenv", cfg.Session.Token)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "page size", key: KeyPageSize, val: 0},
		{name: "scope", key: KeyScopeID, val: 0},
		{name: "base url", key: KeyBaseURL, val: " "},
		{name: "timeout", key: KeyTimeout, val: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(t.TempDir())
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [\n"), 0o644))
	_, err := Load(New(dir))
	assert.Error(t, err)
}
