package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Session.Store)
	assert.Equal(t, "faqSessionId", cfg.Session.Key)
	assert.Equal(t, "faq", cfg.Session.Prefix)
	assert.Equal(t, time.Duration(0), cfg.WebhookTimeout())
}

func TestLoadConfigFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "config.json",
			content: `{"webhook":{"url":"https://example.com/hook","timeout_seconds":30},"session":{"store":"sqlite"}}`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `[webhook]
url = "https://example.com/hook"
timeout_seconds = 30

[session]
store = "sqlite"
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `webhook:
  url: https://example.com/hook
  timeout_seconds: 30
session:
  store: sqlite
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := LoadConfig(path)
			require.NoError(t, err)

			assert.Equal(t, "https://example.com/hook", cfg.Webhook.URL)
			assert.Equal(t, 30*time.Second, cfg.WebhookTimeout())
			assert.Equal(t, "sqlite", cfg.Session.Store)
			// untouched sections keep their defaults
			assert.Equal(t, "faqSessionId", cfg.Session.Key)
			assert.Equal(t, 18800, cfg.WebChat.Port)
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HOOKCHAT_WEBHOOK_URL", "https://override.example.com/hook")
	t.Setenv("HOOKCHAT_UI_MODE", "plain")
	t.Setenv("HOOKCHAT_WEBHOOK_FALLBACK_URLS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com/hook", cfg.Webhook.URL)
	assert.Equal(t, "plain", cfg.UI.Mode)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Webhook.FallbackURLs)
}

func TestLoadConfigFromJSONEnv(t *testing.T) {
	t.Setenv("HOOKCHAT_CONFIG_JSON", `{"webhook":{"url":"https://env.example.com/hook"}}`)

	cfg, err := LoadConfig("/does/not/matter.json")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/hook", cfg.Webhook.URL)
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Webhook.URL = "https://example.com/hook"

			require.NoError(t, SaveConfig(path, cfg))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Webhook.URL, loaded.Webhook.URL)
			assert.Equal(t, cfg.Session.Path, loaded.Session.Path)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) {}, "webhook url is required"},
		{"bad scheme", func(c *Config) { c.Webhook.URL = "ftp://example.com" }, "http or https"},
		{"bad fallback", func(c *Config) {
			c.Webhook.URL = "https://example.com"
			c.Webhook.FallbackURLs = []string{"file:///tmp/hook"}
		}, "http or https"},
		{"bad store", func(c *Config) {
			c.Webhook.URL = "https://example.com"
			c.Session.Store = "redis"
		}, "unknown session store"},
		{"bad mode", func(c *Config) {
			c.Webhook.URL = "https://example.com"
			c.UI.Mode = "gui"
		}, "unknown ui mode"},
		{"ok", func(c *Config) { c.Webhook.URL = "https://example.com/hook" }, ""},
		{"store is case-insensitive", func(c *Config) {
			c.Webhook.URL = "https://example.com/hook"
			c.Session.Store = "SQLite"
		}, ""},
		{"empty store means file", func(c *Config) {
			c.Webhook.URL = "https://example.com/hook"
			c.Session.Store = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".hookchat"), ExpandHome("~/.hookchat"))
}
