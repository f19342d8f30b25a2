package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", cfg.ServerBaseURL)
	assert.Equal(t, "guest", cfg.GuestName)
	assert.Equal(t, "uploads.db", cfg.DatabasePath)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.EventID)
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd",
		"-a", "https://gallery.example.com", "-e", "evt1", "-n", "Alice",
		"-d", "/tmp/uploads.db", "-b", "3", "-r", "30",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NotPanics(t, func() { parseFlags(cfg) })

	assert.Equal(t, "https://gallery.example.com", cfg.ServerBaseURL)
	assert.Equal(t, "evt1", cfg.EventID)
	assert.Equal(t, "Alice", cfg.GuestName)
	assert.Equal(t, "/tmp/uploads.db", cfg.DatabasePath)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func writeTempJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_base_url": "https://json.example.com",
		"event_id":        "evt-json",
		"batch_size":      2,
		"request_timeout": "15s",
	})

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://json.example.com", cfg.ServerBaseURL)
	assert.Equal(t, "evt-json", cfg.EventID)
	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	// untouched default survives
	assert.Equal(t, "uploads.db", cfg.DatabasePath)
}

func TestParseJson_NoFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://localhost:8080", cfg.ServerBaseURL)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.Panics(t, func() { parseJson(cfg) })
}
