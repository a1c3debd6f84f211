package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", c.Provider)
	assert.Equal(t, 0.2, c.Temperature)
	assert.Equal(t, 512, c.MaxTokens)
	assert.Equal(t, 5, c.SampleRows)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, filepath.Join(home, ".chartloom", "history"), c.HistoryDir)
	assert.Equal(t, filepath.Join(home, ".chartloom", "maps"), c.MapsDir)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: ollama\nmax_tokens: 900\ntemperature: 0.5\n"), 0o644))
	t.Setenv("CHARTLOOM_MAX_TOKENS", "1200")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, 0.5, c.Temperature)
	assert.Equal(t, 1200, c.MaxTokens)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: watson\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "invalid provider")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	c := Default()
	require.NoError(t, c.Set("provider", "Gemini"))
	require.NoError(t, c.Set("stream", "true"))
	require.NoError(t, c.Set("redis_db", "2"))
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", got.Provider)
	assert.True(t, got.Stream)
	assert.Equal(t, 2, got.RedisDB)
}

func TestSetRejects(t *testing.T) {
	c := Default()
	assert.ErrorContains(t, c.Set("nope", "1"), "unknown key")
	assert.ErrorContains(t, c.Set("max_tokens", "many"), "invalid int")
	assert.ErrorContains(t, c.Set("temperature", "warm"), "invalid float")
	assert.ErrorContains(t, c.Set("stream", "maybe"), "invalid bool")

	require.NoError(t, c.Set("sample_rows", "9"))
	assert.Error(t, c.Validate())
}

func TestMasked(t *testing.T) {
	c := Default()
	c.APIKey = "sk-1234567890"
	c.RedisPassword = "pw"
	m := c.Masked()
	assert.Equal(t, "sk-****890", m.APIKey)
	assert.Equal(t, "******", m.RedisPassword)
	assert.Equal(t, "sk-1234567890", c.APIKey)
}

func TestKeysAndAPIKeyFor(t *testing.T) {
	keys := Keys()
	assert.Equal(t, "api_key", keys[0])
	assert.Contains(t, keys, "listen_addr")

	c := Default()
	c.APIKey = "a"
	assert.Equal(t, "a", c.APIKeyFor("gemini"))
	c.GeminiAPIKey = "g"
	assert.Equal(t, "g", c.APIKeyFor("gemini"))
	assert.Equal(t, "", c.APIKeyFor("ollama"))
	assert.Equal(t, "a", c.APIKeyFor("deepseek"))
}
