package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhpenta/imageedit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "IMAGEEDIT_API_KEY", "IMAGEEDIT_PORT", "IMAGEEDIT_MODEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load(New(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, imageedit.ErrMissingAPIKey)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("IMAGEEDIT_PORT", "9090")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, string(imageedit.ModelDefault), cfg.Model)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, int64(imageedit.MaxImageSize), cfg.MaxUploadBytes)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAGEEDIT_API_KEY", "prefixed")
	t.Setenv("GEMINI_API_KEY", "plain")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "imageedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
model: nano-banana-2
session_ttl: 5m
request_timeout: 90s
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "nano-banana-2", cfg.Model)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")

	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_ClampsUploadLimit(t *testing.T) {
	c := &Config{APIKey: "k", Port: 1, SessionTTL: time.Minute, MaxUploadBytes: 1 << 40}
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(imageedit.MaxImageSize), c.MaxUploadBytes)

	c.Port = 0
	assert.Error(t, c.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=dotenv-key\n"), 0o600))
	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
}
