package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipeed/hookchat/pkg/config"
)

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOOKCHAT_CONFIG_JSON", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, webhookURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Webhook.URL = webhookURL
	cfg.Session.Path = filepath.Join(dir, "state.json")
	cfg.Log.Level = "error"
	path := filepath.Join(dir, "config.json")
	require.NoError(t, config.SaveConfig(path, cfg))
	return path
}

func TestSendPrintsReply(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `[{"output":"First\\nSecond"}]`)
	}))
	defer srv.Close()

	out, err := execute(t, "--config", writeConfig(t, srv.URL), "send", "how", "are", "you")
	require.NoError(t, err)

	assert.Equal(t, "First\nSecond\n", out)
	assert.Equal(t, "how are you", got["message"])
	assert.True(t, strings.HasPrefix(got["sessionId"], "faq_"), got["sessionId"])
}

func TestSendReportsWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := execute(t, "--config", writeConfig(t, srv.URL), "send", "hi")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "500")
	assert.True(t, strings.HasSuffix(err.Error(), "(Server error)"), err.Error())
}

func TestSendRequiresWebhook(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, ""), "send", "hi")
	assert.ErrorContains(t, err, "webhook url is required")
}

func TestWebhookURLFlagOverridesConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"text":"from flag"}`)
	}))
	defer srv.Close()

	out, err := execute(t, "--config", writeConfig(t, ""), "--webhook-url", srv.URL, "send", "hi")
	require.NoError(t, err)
	assert.Equal(t, "from flag\n", out)
}

func TestSessionIsStable(t *testing.T) {
	path := writeConfig(t, "")

	first, err := execute(t, "--config", path, "session")
	require.NoError(t, err)
	second, err := execute(t, "--config", path, "session")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "faq_"))
	assert.Equal(t, first, second)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookchat.yaml")

	out, err := execute(t, "--config", path, "--webhook-url", "https://example.com/hook", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", cfg.Webhook.URL)

	_, err = execute(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hookchat dev"), out)
}

func TestUseFullScreen(t *testing.T) {
	assert.True(t, useFullScreen("tui"))
	assert.False(t, useFullScreen("plain"))
}

func TestWidgetURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WebChat.Host = "127.0.0.1"
	cfg.WebChat.Port = 18800
	assert.Equal(t, "http://127.0.0.1:18800/", widgetURL(cfg))

	cfg.WebChat.Host = "0.0.0.0"
	assert.True(t, strings.HasPrefix(widgetURL(cfg), "http://"))
	assert.NotContains(t, widgetURL(cfg), "0.0.0.0")
}

func TestPrintQR(t *testing.T) {
	var buf bytes.Buffer
	printQR(&buf, "http://127.0.0.1:18800/")
	assert.NotEmpty(t, buf.String())
}

func TestEnvFileSuppliesWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"from env file"}`)
	}))
	defer srv.Close()

	t.Setenv("HOOKCHAT_WEBHOOK_URL", "")
	os.Unsetenv("HOOKCHAT_WEBHOOK_URL")

	envFile := filepath.Join(t.TempDir(), "hookchat.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOOKCHAT_WEBHOOK_URL="+srv.URL+"\n"), 0600))

	out, err := execute(t, "--config", writeConfig(t, ""), "--env-file", envFile, "send", "hi")
	require.NoError(t, err)
	assert.Equal(t, "from env file\n", out)
}
