package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sipeed/hookchat/pkg/logger"
)

// Sender is implemented by Client and FallbackSender.
type Sender interface {
	Send(ctx context.Context, message, sessionID string) (string, error)
}

// FallbackSender tries the primary webhook first, then the fallbacks in
// order. Only transport failures and 5xx answers move on to the next one;
// a 4xx is the webhook's final word.
type FallbackSender struct {
	primary   Sender
	fallbacks []Sender
}

func NewFallbackSender(primary Sender, fallbacks ...Sender) *FallbackSender {
	return &FallbackSender{
		primary:   primary,
		fallbacks: fallbacks,
	}
}

func (f *FallbackSender) Send(ctx context.Context, message, sessionID string) (string, error) {
	body, err := f.primary.Send(ctx, message, sessionID)
	if err == nil || !retryable(err) || len(f.fallbacks) == 0 {
		return body, err
	}

	logger.WarnCF("webhook", fmt.Sprintf("Primary webhook failed: %v, trying fallbacks", err), nil)

	lastErr := err
	for i, fb := range f.fallbacks {
		if ctx.Err() != nil {
			break
		}
		body, lastErr = fb.Send(ctx, message, sessionID)
		if lastErr == nil {
			logger.InfoCF("webhook", fmt.Sprintf("Fallback #%d succeeded", i+1), nil)
			return body, nil
		}
		logger.WarnCF("webhook", fmt.Sprintf("Fallback #%d failed: %v", i+1, lastErr), nil)
		if !retryable(lastErr) {
			break
		}
	}

	// The last error keeps its type so the failure hint still applies.
	return "", lastErr
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
