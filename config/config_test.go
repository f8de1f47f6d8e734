package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTESYNC_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.DestructiveMigrationFallback)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, filepath.Join(cfg.DataDir, "notesync.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "prefs.json"), cfg.PrefsPath)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notesync.yaml")
	err := os.WriteFile(path, []byte(`
api_url: http://files.example/api/
destructive_migration_fallback: true
sync_interval: 30s
platform: headless
`), 0o600)
	require.NoError(t, err)

	t.Setenv("NOTESYNC_CONFIG", path)
	t.Setenv("NOTESYNC_DATA_DIR", dir)
	t.Setenv("NOTESYNC_PLATFORM", "desktop")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://files.example/api", cfg.APIURL)
	assert.True(t, cfg.DestructiveMigrationFallback)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, 5*time.Minute, cfg.SyncMaxInterval)
	assert.Equal(t, "desktop", cfg.Platform)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("NOTESYNC_DATA_DIR", t.TempDir())
	t.Setenv("NOTESYNC_HTTP_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTESYNC_HTTP_TIMEOUT")
}

func TestLoad_Whisper(t *testing.T) {
	t.Setenv("NOTESYNC_DATA_DIR", t.TempDir())
	t.Setenv("WHISPER_BINARY", "/opt/whisper/whisper-server")
	t.Setenv("WHISPER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/whisper/whisper-server", cfg.WhisperBinary)
	assert.Equal(t, 9090, cfg.WhisperPort)

	t.Setenv("WHISPER_PORT", "ninety")
	_, err = Load()
	assert.ErrorContains(t, err, "WHISPER_PORT")
}
