package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultServerURL, cfg.AgentBaseURL())
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.DatabasePath())
	assert.Equal(t, DefaultGoogleList, cfg.GoogleList)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultReloadAttempts, cfg.ReloadAttempts)
	assert.NotNil(t, cfg.Logger())
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `backend: local
server_url: https://todo.example.com/
agent_url: https://agent.example.com
database: /tmp/evotodo-test.db
timeout: 3s
reload_attempts: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0600))

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "https://todo.example.com", cfg.ServerURL)
	assert.Equal(t, "https://agent.example.com", cfg.AgentBaseURL())
	assert.Equal(t, "/tmp/evotodo-test.db", cfg.DatabasePath())
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.ReloadAttempts, "attempts are at least 1")
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("backend: local\n"), 0600))
	t.Setenv("EVOTODO_BACKEND", "googletasks")
	t.Setenv("EVOTODO_GOOGLE_LIST", "work")

	cfg, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendGoogleTasks, cfg.Backend)
	assert.Equal(t, "work", cfg.GoogleList)
}

func TestNew_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("backend: carrier-pigeon\n"), 0600))

	_, err := New(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend: carrier-pigeon")
}

func TestNew_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("backend: [\n"), 0600))

	_, err := New(dir)
	assert.Error(t, err)
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}

func TestToken_SaveLoadRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := &Config{Dir: dir}

	_, err := cfg.LoadToken()
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
	assert.False(t, cfg.HasToken())

	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "abc", TokenType: "bearer"}))
	assert.True(t, cfg.HasToken())

	info, err := os.Stat(cfg.TokenPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	tok, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)

	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}

func TestLoadToken_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Dir: dir}
	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("not json"), 0600))

	_, err := cfg.LoadToken()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotLoggedIn))

	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600))
	_, err = cfg.LoadToken()
	assert.Error(t, err)
}
