package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://ehub.alxafrica.com/login", cfg.Auth.URLs.Login)
	assert.Equal(t, "https://ehub.alxafrica.com", cfg.Auth.URLs.Dashboard)
	assert.Equal(t, "https://savannah.alxafrica.com", cfg.Auth.URLs.SavannahBase)
	assert.Equal(t, 10*time.Second, cfg.Auth.Timeouts.ElementWait.Std())
	assert.Equal(t, 3*time.Second, cfg.Auth.Timeouts.PostLoginWait.Std())
	assert.Equal(t, ".flex.gap-6.my-4", cfg.Courses.Container)
	assert.Equal(t, "Professional Foundations", cfg.Courses.SavannahEntryName)
	assert.Equal(t, "Completed", cfg.Courses.StatusBadge.CompletedText)
	assert.False(t, cfg.Debug.Enabled)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Auth.URLs.Login, cfg.Auth.URLs.Login)
}

func TestLoad_EmptyPathKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Courses.Container, cfg.Courses.Container)
}

func TestLoad_OverridesMergeWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
auth:
  timeouts:
    element_wait: 15s
  urls:
    login: https://staging.example.com/login
courses:
  savannah_entry_name: Foundations Track
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden fields take effect.
	assert.Equal(t, 15*time.Second, cfg.Auth.Timeouts.ElementWait.Std())
	assert.Equal(t, "https://staging.example.com/login", cfg.Auth.URLs.Login)
	assert.Equal(t, "Foundations Track", cfg.Courses.SavannahEntryName)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Auth.URLs.Dashboard, cfg.Auth.URLs.Dashboard)
	assert.Equal(t, Default().Auth.Timeouts.PostLoginWait, cfg.Auth.Timeouts.PostLoginWait)
	assert.Equal(t, Default().Courses.Container, cfg.Courses.Container)
}

func TestLoad_NumericDurationIsSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
auth:
  timeouts:
    page_load: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.Auth.Timeouts.PageLoad.Std())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  timeouts:\n    element_wait: soon\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
