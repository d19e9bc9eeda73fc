package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
)

// Options controls where diagnostics go and how verbose they are.
type Options struct {
	Level  string
	Output io.Writer
	Pretty bool
}

// Init replaces the package logger. An empty level means "info".
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: out != os.Stderr}
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()

	mu.Lock()
	log = l
	mu.Unlock()
	return nil
}

// Discard silences all diagnostics.
func Discard() {
	mu.Lock()
	log = zerolog.Nop()
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func emit(ev *zerolog.Event, component, message string, fields map[string]interface{}) {
	if ev == nil {
		return
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(message)
}

func DebugCF(component, message string, fields map[string]interface{}) {
	emit(current().Debug(), component, message, fields)
}

func InfoCF(component, message string, fields map[string]interface{}) {
	emit(current().Info(), component, message, fields)
}

func WarnCF(component, message string, fields map[string]interface{}) {
	emit(current().Warn(), component, message, fields)
}

func ErrorCF(component, message string, fields map[string]interface{}) {
	emit(current().Error(), component, message, fields)
}

func InfoC(component, message string) {
	InfoCF(component, message, nil)
}

func WarnC(component, message string) {
	WarnCF(component, message, nil)
}

// Preview shortens s for log fields.
func Preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
