package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
facebook:
  browser: selenium
  auth:
    cookies_file: configs/cookies.json
database:
  host: localhost
  port: 5432
  name: facebook_extractor
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "selenium", cfg.Facebook.Browser)
	assert.Equal(t, "https://www.facebook.com", cfg.Facebook.BaseURL)
	assert.Equal(t, 5, cfg.Screenshot.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Screenshot.DelayDuration())
	assert.Equal(t, "tmp/forki", cfg.Media.TempDir)
	assert.Equal(t, 6*time.Second, cfg.Facebook.LookupInterval())
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("FACEBOOK_EMAIL", "someone@example.com")
	t.Setenv("FACEBOOK_PASSWORD", "hunter2")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MEDIA_TEMP_DIR", "/var/tmp/media")

	path := writeFile(t, "config.yaml", "database:\n  host: localhost\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "/var/tmp/media", cfg.Media.TempDir)

	email, password, err := cfg.Facebook.Auth.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", email)
	assert.Equal(t, "hunter2", password)
}

func TestCredentialsMissing(t *testing.T) {
	_, _, err := AuthConfig{Email: "only@example.com"}.Credentials()
	assert.ErrorIs(t, err, types.ErrMissingCredentials)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "facebook: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTargets(t *testing.T) {
	path := writeFile(t, "targets.yaml", `
posts:
  - https://www.facebook.com/reel/809749953859034
  - https://www.facebook.com/watch/live/?v=394367115960503
users:
  - https://www.facebook.com/naturephotos
`)
	targets, err := LoadTargets(path)
	require.NoError(t, err)
	assert.Len(t, targets.Posts, 2)
	assert.Equal(t, []string{"https://www.facebook.com/naturephotos"}, targets.Users)
}
