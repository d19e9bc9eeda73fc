package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipeed/hookchat/pkg/session"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the session id sent with every message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
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

			id, err := provider.GetSessionID(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
