package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 15s

database:
  dsn: "file:test.db?mode=memory"

schedule:
  update_interval: 30m
  provider_timeout: 10s
  keep_snapshots: 5

username: testuser

providers:
  github:
    token: gh-token
  npm:
    packages: "pkg-one, pkg-two"
  qiita:
    token: qiita-token
    per_page: 50
  blog:
    feed_url: "https://blog.example.com/rss"

update_secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "file:test.db?mode=memory", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.UpdateInterval)
	assert.Equal(t, 10*time.Second, cfg.Schedule.ProviderTimeout)
	assert.Equal(t, 5, cfg.Schedule.KeepSnapshots)
	assert.Equal(t, "s3cret", cfg.UpdateSecret)
	assert.Equal(t, 50, cfg.Providers.Qiita.PerPage)
	assert.Equal(t, "https://blog.example.com/rss", cfg.Providers.Blog.FeedURL)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
username: testuser
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Schedule.UpdateInterval)
	assert.Equal(t, 30*time.Second, cfg.Schedule.ProviderTimeout)
	assert.Equal(t, 50, cfg.Schedule.KeepSnapshots)
	assert.Equal(t, 50, cfg.Providers.Analytics.PageLimit)
	assert.Equal(t, 100, cfg.Providers.Github.PageSize)
	assert.Equal(t, 100, cfg.Providers.Qiita.PerPage)
}

func TestLoadUsernameFallback(t *testing.T) {
	path := writeConfig(t, `
username: shared-account

providers:
  github:
    user: gh-specific
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gh-specific", cfg.Providers.Github.User, "explicit user wins")
	assert.Equal(t, "shared-account", cfg.Providers.Lapras.User)
	assert.Equal(t, "shared-account", cfg.Providers.Zenn.User)
	assert.Equal(t, "shared-account", cfg.Providers.Qiita.User)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_GH_TOKEN", "expanded-token")
	t.Setenv("TEST_UPDATE_SECRET", "expanded-secret")

	path := writeConfig(t, `
providers:
  github:
    token: ${TEST_GH_TOKEN}
update_secret: ${TEST_UPDATE_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-token", cfg.Providers.Github.Token)
	assert.Equal(t, "expanded-secret", cfg.UpdateSecret)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "server timeout too low",
			content: "server:\n  timeout: 100ms\n",
			errMsg:  "server timeout",
		},
		{
			name:    "update interval too low",
			content: "schedule:\n  update_interval: 10s\n",
			errMsg:  "update_interval",
		},
		{
			name:    "provider timeout too low",
			content: "schedule:\n  provider_timeout: 100ms\n",
			errMsg:  "provider_timeout",
		},
		{
			name:    "github page size out of range",
			content: "providers:\n  github:\n    page_size: 500\n",
			errMsg:  "page_size",
		},
		{
			name:    "qiita per page out of range",
			content: "providers:\n  qiita:\n    per_page: 101\n",
			errMsg:  "per_page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestNpmConfig_PackageNames(t *testing.T) {
	tests := []struct {
		name     string
		packages string
		expected []string
	}{
		{name: "comma separated", packages: "a,b,c", expected: []string{"a", "b", "c"}},
		{name: "spaces trimmed", packages: " a , b ", expected: []string{"a", "b"}},
		{name: "empty entries dropped", packages: "a,,b,", expected: []string{"a", "b"}},
		{name: "empty string", packages: "", expected: []string{}},
		{name: "scoped packages", packages: "@scope/pkg-one,@scope/pkg-two", expected: []string{"@scope/pkg-one", "@scope/pkg-two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NpmConfig{Packages: tt.packages}
			assert.Equal(t, tt.expected, cfg.PackageNames())
		})
	}
}

func TestGetServerConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  listen: \":7070\"\n  timeout: 5s\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":7070", listen)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	path := writeConfig(t, "username: testuser\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.NoError(t, VerifyAgainstEmbeddedSchema(cfg), "defaulted config passes schema verification")

	t.Run("missing required field", func(t *testing.T) {
		broken := *cfg
		broken.Server.Listen = ""
		require.Error(t, VerifyAgainstEmbeddedSchema(&broken))
	})
}
