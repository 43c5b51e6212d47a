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

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"identity_endpoint_addr": "http://id.example:9000",
		"refresh_threshold":      "10m",
		"request_timeout":        "3s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "http://id.example:9000", cfg.IdentityEndpointAddr)
		assert.Equal(t, 10*time.Minute, cfg.RefreshThreshold)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://127.0.0.1:8080", cfg.IdentityEndpointAddr)
		assert.Equal(t, 5*time.Minute, cfg.RefreshThreshold)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"database_dsn": "other.db"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other.db", cfg.DatabaseDSN)
		assert.Equal(t, "http://127.0.0.1:8080", cfg.IdentityEndpointAddr)
	})
}
