package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "gpt-5.2", cfg.Model)
	assert.Equal(t, 20, cfg.MaxTurns)
	assert.Equal(t, 60*time.Second, cfg.ShellTimeout)
	assert.Equal(t, int64(1024*1024), cfg.MaxReadBytes)
	assert.DirExists(t, cfg.SkillsDir())
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	// godotenv never overrides variables already present in the environment,
	// so the key must be fully unset for the file value to take effect.
	t.Setenv("OPENAI_API_KEY", "placeholder")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("OPENAI_API_KEY=sk-from-file\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.APIKey)
}

func TestEnvOverridesModel(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
}

func TestSaveAPIKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.SaveAPIKey("sk-test-123"))
	assert.Equal(t, "sk-test-123", cfg.APIKey)
	assert.Equal(t, "sk-test-123", os.Getenv("OPENAI_API_KEY"))

	data, err := os.ReadFile(cfg.EnvFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "OPENAI_API_KEY=sk-test-123")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(cfg.EnvFile())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	// Re-saving replaces the existing line instead of appending.
	require.NoError(t, cfg.SaveAPIKey("sk-test-456"))
	data, err = os.ReadFile(cfg.EnvFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "sk-test-456")
	assert.NotContains(t, string(data), "sk-test-123")
}

func TestSaveAPIKeyRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Error(t, cfg.SaveAPIKey("   "))
}

func TestSaveAPIKeyPreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("OPENAI_BASE_URL=https://example.test/v1\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveAPIKey("sk-keep"))

	data, err := os.ReadFile(cfg.EnvFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "OPENAI_BASE_URL=https://example.test/v1")
	assert.Contains(t, string(data), "OPENAI_API_KEY=sk-keep")
}
