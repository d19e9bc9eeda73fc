package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "~/.hookchat/config.json"

type Config struct {
	Webhook WebhookConfig `json:"webhook" toml:"webhook" yaml:"webhook"`
	Session SessionConfig `json:"session" toml:"session" yaml:"session"`
	UI      UIConfig      `json:"ui" toml:"ui" yaml:"ui"`
	WebChat WebChatConfig `json:"webchat" toml:"webchat" yaml:"webchat"`
	Log     LogConfig     `json:"log" toml:"log" yaml:"log"`
	mu      sync.RWMutex
}

type WebhookConfig struct {
	URL            string            `json:"url" toml:"url" yaml:"url" env:"HOOKCHAT_WEBHOOK_URL"`
	TimeoutSeconds int               `json:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds" env:"HOOKCHAT_WEBHOOK_TIMEOUT_SECONDS"`
	Headers        map[string]string `json:"headers,omitempty" toml:"headers,omitempty" yaml:"headers,omitempty"`
	FallbackURLs   []string          `json:"fallback_urls,omitempty" toml:"fallback_urls,omitempty" yaml:"fallback_urls,omitempty" env:"HOOKCHAT_WEBHOOK_FALLBACK_URLS" envSeparator:","`
}

// SessionConfig selects where the session identifier is persisted.
type SessionConfig struct {
	Store             string `json:"store" toml:"store" yaml:"store" env:"HOOKCHAT_SESSION_STORE"` // file, sqlite or memory
	Path              string `json:"path" toml:"path" yaml:"path" env:"HOOKCHAT_SESSION_PATH"`
	Key               string `json:"key" toml:"key" yaml:"key" env:"HOOKCHAT_SESSION_KEY"`
	Prefix            string `json:"prefix" toml:"prefix" yaml:"prefix" env:"HOOKCHAT_SESSION_PREFIX"`
	EphemeralFallback bool   `json:"ephemeral_fallback" toml:"ephemeral_fallback" yaml:"ephemeral_fallback" env:"HOOKCHAT_SESSION_EPHEMERAL_FALLBACK"`
}

type UIConfig struct {
	Mode    string `json:"mode" toml:"mode" yaml:"mode" env:"HOOKCHAT_UI_MODE"` // auto, tui or plain
	Title   string `json:"title" toml:"title" yaml:"title" env:"HOOKCHAT_UI_TITLE"`
	BotName string `json:"bot_name" toml:"bot_name" yaml:"bot_name" env:"HOOKCHAT_UI_BOT_NAME"`
	History string `json:"history_file" toml:"history_file" yaml:"history_file" env:"HOOKCHAT_UI_HISTORY_FILE"`
}

type WebChatConfig struct {
	Host              string  `json:"host" toml:"host" yaml:"host" env:"HOOKCHAT_WEBCHAT_HOST"`
	Port              int     `json:"port" toml:"port" yaml:"port" env:"HOOKCHAT_WEBCHAT_PORT"`
	Title             string  `json:"title" toml:"title" yaml:"title" env:"HOOKCHAT_WEBCHAT_TITLE"`
	RatePerSecond     float64 `json:"rate_per_second" toml:"rate_per_second" yaml:"rate_per_second" env:"HOOKCHAT_WEBCHAT_RATE_PER_SECOND"`
	RateBurst         int     `json:"rate_burst" toml:"rate_burst" yaml:"rate_burst" env:"HOOKCHAT_WEBCHAT_RATE_BURST"`
	SessionTTLMinutes int     `json:"session_ttl_minutes" toml:"session_ttl_minutes" yaml:"session_ttl_minutes" env:"HOOKCHAT_WEBCHAT_SESSION_TTL_MINUTES"`
}

type LogConfig struct {
	Level string `json:"level" toml:"level" yaml:"level" env:"HOOKCHAT_LOG_LEVEL"`
	File  string `json:"file" toml:"file" yaml:"file" env:"HOOKCHAT_LOG_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Webhook: WebhookConfig{
			URL:            "",
			TimeoutSeconds: 0,
			Headers:        map[string]string{},
		},
		Session: SessionConfig{
			Store:  "file",
			Path:   "~/.hookchat/state.json",
			Key:    "faqSessionId",
			Prefix: "faq",
		},
		UI: UIConfig{
			Mode:    "auto",
			Title:   "Interview FAQ Chat",
			BotName: "Assistant",
			History: "~/.hookchat/history",
		},
		WebChat: WebChatConfig{
			Host:              "0.0.0.0",
			Port:              18800,
			Title:             "Interview FAQ Chat",
			RatePerSecond:     5,
			RateBurst:         10,
			SessionTTLMinutes: 24 * 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Support full config from env var (for containers / serverless)
	if cfgJSON := os.Getenv("HOOKCHAT_CONFIG_JSON"); cfgJSON != "" {
		if err := json.Unmarshal([]byte(cfgJSON), cfg); err != nil {
			return nil, fmt.Errorf("parsing HOOKCHAT_CONFIG_JSON: %w", err)
		}
		if err := env.Parse(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	path = expandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	path = expandHome(path)
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports settings that would make every turn fail.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook url is required (set webhook.url or HOOKCHAT_WEBHOOK_URL)")
	}
	for _, raw := range append([]string{c.Webhook.URL}, c.Webhook.FallbackURLs...) {
		if err := validateURL(raw); err != nil {
			return err
		}
	}
	switch strings.ToLower(c.Session.Store) {
	case "", "file", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	switch c.UI.Mode {
	case "auto", "tui", "plain":
	default:
		return fmt.Errorf("unknown ui mode %q", c.UI.Mode)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook url must be http or https, got %q", u.Scheme)
	}
	return nil
}

func (c *Config) WebhookTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.Webhook.TimeoutSeconds) * time.Second
}

func (c *Config) SessionPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Session.Path)
}

func (c *Config) HistoryPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.UI.History)
}

func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Log.File)
}

func (c *Config) WebChatAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.WebChat.Host, c.WebChat.Port)
}

func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
