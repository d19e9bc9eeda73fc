package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sipeed/hookchat/pkg/webhook"
)

const (
	HintCORS         = " (CORS issue - webhook needs CORS headers)"
	HintConnectivity = " (Network connectivity issue)"
	HintServer       = " (Server error)"
)

// ErrorMessage is the bot message shown for a failed turn.
func ErrorMessage(err error) string {
	return "Error: " + err.Error() + Hint(err)
}

// Hint returns a best-effort explanation to append to an error message.
// Known error types are classified first; otherwise the message text is
// matched, first match wins.
func Hint(err error) string {
	var transportErr *webhook.TransportError
	if errors.As(err, &transportErr) {
		return HintConnectivity
	}
	var statusErr *webhook.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusInternalServerError {
		return HintServer
	}

	msg := err.Error()
	for _, rule := range hintRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.hint
			}
		}
	}
	return ""
}

var hintRules = []struct {
	needles []string
	hint    string
}{
	{[]string{"CORS", "fetch"}, HintCORS},
	{[]string{"network", "Failed to fetch"}, HintConnectivity},
	{[]string{"500"}, HintServer},
}
