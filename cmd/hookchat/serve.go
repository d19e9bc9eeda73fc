package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"github.com/sipeed/hookchat/pkg/channels"
	"github.com/sipeed/hookchat/pkg/config"
	"github.com/sipeed/hookchat/pkg/webhook"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var showQR bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat widget and relay it to the webhook",
		Args:  cobra.NoArgs,
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

			ch, err := channels.NewWebChatChannel(cfg, webhook.NewFromConfig(cfg))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := ch.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			link := widgetURL(cfg)
			fmt.Fprintf(out, "Web chat listening on %s (%s)\n", cfg.WebChatAddr(), link)
			if showQR {
				printQR(out, link)
			}

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ch.Stop(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&showQR, "qr", false, "print the widget URL as a QR code")
	return cmd
}

func printQR(w io.Writer, link string) {
	qrterminal.GenerateHalfBlock(link, qrterminal.L, w)
}

// widgetURL is the address a phone on the same network can open. Wildcard
// hosts resolve to the first non-loopback IPv4 address.
func widgetURL(cfg *config.Config) string {
	host := cfg.WebChat.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = outboundIPv4()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.WebChat.Port)) + "/"
}

func outboundIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
