package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sipeed/hookchat/pkg/chat"
	"github.com/sipeed/hookchat/pkg/config"
	"github.com/sipeed/hookchat/pkg/console"
	"github.com/sipeed/hookchat/pkg/logger"
	"github.com/sipeed/hookchat/pkg/session"
	"github.com/sipeed/hookchat/pkg/tui"
	"github.com/sipeed/hookchat/pkg/webhook"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadValid()
			if err != nil {
				return err
			}
			if plain {
				cfg.UI.Mode = "plain"
			}
			fullScreen := useFullScreen(cfg.UI.Mode)

			closeLog, err := setupLogging(cfg, cmd.ErrOrStderr(), fullScreen)
			if err != nil {
				return err
			}
			defer closeLog()

			provider, store, err := session.NewProviderFromConfig(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sender := webhook.NewFromConfig(cfg)
			if fullScreen {
				return runFullScreen(ctx, cfg, sender, provider)
			}
			return runLineMode(ctx, cfg, sender, provider, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use line mode even on a capable terminal")
	return cmd
}

// useFullScreen resolves ui.mode; "auto" picks the widget only when both
// stdin and stdout are terminals.
func useFullScreen(mode string) bool {
	switch mode {
	case "tui":
		return true
	case "plain":
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runFullScreen(ctx context.Context, cfg *config.Config, sender chat.Sender, sessions session.Source) error {
	view := tui.NewView(tview.NewApplication(), tui.Options{
		Title:   cfg.UI.Title,
		BotName: cfg.UI.BotName,
	})
	ctrl, err := chat.NewController(chat.Config{
		Sender:   sender,
		Sessions: sessions,
		Surface:  view,
	})
	if err != nil {
		return err
	}

	// Submit blocks on the network; keep the event loop free.
	view.OnSubmit(func(text string) {
		go func() {
			if _, err := ctrl.Submit(ctx, text); err != nil && !errors.Is(err, chat.ErrEmptyInput) {
				logger.DebugCF("chat", "Submit rejected", map[string]interface{}{"error": err.Error()})
			}
		}()
	})
	return view.Run(ctx)
}

func runLineMode(ctx context.Context, cfg *config.Config, sender chat.Sender, sessions session.Source, out io.Writer) error {
	history := cfg.HistoryPath()
	if history != "" {
		if err := os.MkdirAll(filepath.Dir(history), 0700); err != nil {
			return err
		}
	}
	rl, err := console.NewReader(history)
	if err != nil {
		return err
	}
	defer rl.Close()

	ctrl, err := chat.NewController(chat.Config{
		Sender:   sender,
		Sessions: sessions,
		Surface:  console.NewSurface(out, cfg.UI.BotName),
	})
	if err != nil {
		return err
	}
	return console.Run(ctx, rl, ctrl)
}
