// hookchat - chat with a webhook from the terminal or the browser
//
// Environment variables:
//   HOOKCHAT_CONFIG_JSON   - Full config JSON (alternative to config file)
//   HOOKCHAT_WEBHOOK_URL   - Webhook URL (overrides config)
//   HOOKCHAT_LOG_LEVEL     - debug, info, warn or error

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sipeed/hookchat/pkg/config"
	"github.com/sipeed/hookchat/pkg/logger"
)

var version = "dev"

type rootOptions struct {
	configPath string
	webhookURL string
	logLevel   string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hookchat",
		Short:         "Chat with a webhook-backed assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal; the environment and config file still apply.
			_ = godotenv.Load(opts.envFile)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "config file (.json, .toml or .yaml)")
	cmd.PersistentFlags().StringVar(&opts.webhookURL, "webhook-url", "", "webhook URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(
		newChatCmd(opts),
		newSendCmd(opts),
		newServeCmd(opts),
		newSessionCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the config file and applies command-line overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.webhookURL != "" {
		cfg.Webhook.URL = o.webhookURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// loadValid is load followed by Validate, for commands that talk to the webhook.
func (o *rootOptions) loadValid() (*config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging routes diagnostics to the configured log file, or to stderr.
// A full-screen front end owns the terminal, so without a log file it
// discards them instead.
func setupLogging(cfg *config.Config, stderr io.Writer, fullScreen bool) (func(), error) {
	if path := cfg.LogPath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		if err := logger.Init(logger.Options{Level: cfg.Log.Level, Output: f}); err != nil {
			f.Close()
			return nil, err
		}
		return func() { f.Close() }, nil
	}

	if fullScreen {
		logger.Discard()
		return func() {}, nil
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Output: stderr, Pretty: true}); err != nil {
		return nil, err
	}
	return func() {}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hookchat %s (%s)\n", version, runtime.Version())
		},
	}
}
