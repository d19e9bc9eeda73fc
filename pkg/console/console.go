// Package console is the line-mode chat front end for terminals without
// full-screen support and for piped input.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ergochat/readline"

	"github.com/sipeed/hookchat/pkg/chat"
	"github.com/sipeed/hookchat/pkg/transcript"
)

// Surface prints the transcript as plain text.
type Surface struct {
	out     io.Writer
	botName string

	mu      sync.Mutex
	enabled bool
}

func NewSurface(out io.Writer, botName string) *Surface {
	if botName == "" {
		botName = "Assistant"
	}
	return &Surface{out: out, botName: botName, enabled: true}
}

func (s *Surface) RenderMessage(msg transcript.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := "You"
	if !msg.IsUser() {
		label = s.botName
	}
	indent := strings.Repeat(" ", len(label)+2)

	var sb strings.Builder
	sb.WriteString(label + ": ")
	for i, p := range msg.Paragraphs {
		if i > 0 {
			sb.WriteString(indent)
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	if len(msg.Paragraphs) == 0 {
		sb.WriteString("\n")
	}
	fmt.Fprint(s.out, sb.String())
}

func (s *Surface) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *Surface) InputEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Surface) SetTypingVisible(visible bool) {
	if !visible {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "(%s is typing...)\n", s.botName)
}

// ClearInput and FocusInput are implicit in line mode: readline starts a
// fresh, focused prompt after each turn.
func (s *Surface) ClearInput() {}

func (s *Surface) FocusInput() {}

// LineReader is the part of *readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
}

type Submitter interface {
	Submit(ctx context.Context, input string) (chat.Turn, error)
}

// NewReader opens an interactive prompt with persistent history.
func NewReader(historyFile string) (*readline.Instance, error) {
	return readline.NewFromConfig(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// Run reads lines until EOF, "exit"/"quit" or ctx is done. Each line is one
// turn; turns run synchronously so the prompt stays away while sending.
func Run(ctx context.Context, rl LineReader, ctrl Submitter) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			return nil
		}

		if _, err := ctrl.Submit(ctx, line); err != nil && !errors.Is(err, chat.ErrEmptyInput) {
			return err
		}
	}
}
