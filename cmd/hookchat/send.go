package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sipeed/hookchat/pkg/chat"
	"github.com/sipeed/hookchat/pkg/session"
	"github.com/sipeed/hookchat/pkg/webhook"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadValid()
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			provider, store, err := session.NewProviderFromConfig(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctrl, err := chat.NewController(chat.Config{
				Sender:   webhook.NewFromConfig(cfg),
				Sessions: provider,
			})
			if err != nil {
				return err
			}

			turn, err := ctrl.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if turn.Failed {
				return errors.New(strings.TrimPrefix(turn.Reply.Text, "Error: "))
			}
			for _, p := range turn.Reply.Paragraphs {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
