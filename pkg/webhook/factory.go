package webhook

import (
	"github.com/sipeed/hookchat/pkg/config"
)

// NewFromConfig builds the sender for cfg.Webhook. Fallback URLs share the
// primary's timeout and headers.
func NewFromConfig(cfg *config.Config) Sender {
	opts := []Option{
		WithTimeout(cfg.WebhookTimeout()),
		WithHeaders(cfg.Webhook.Headers),
	}
	primary := NewClient(cfg.Webhook.URL, opts...)
	if len(cfg.Webhook.FallbackURLs) == 0 {
		return primary
	}

	fallbacks := make([]Sender, 0, len(cfg.Webhook.FallbackURLs))
	for _, u := range cfg.Webhook.FallbackURLs {
		fallbacks = append(fallbacks, NewClient(u, opts...))
	}
	return NewFallbackSender(primary, fallbacks...)
}
