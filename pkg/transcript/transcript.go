package transcript

import (
	"strings"
	"sync"
	"time"
)

type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Message is one rendered chat bubble. It is never modified after Append.
type Message struct {
	Text       string    `json:"text"`
	Origin     Origin    `json:"origin"`
	Paragraphs []string  `json:"paragraphs"`
	Time       time.Time `json:"time"`
}

func (m Message) IsUser() bool {
	return m.Origin == OriginUser
}

// Paragraphs turns reply text into display lines: escaped "\n" sequences
// become real newlines, each line is trimmed and blank lines are dropped.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, `\n`, "\n")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Transcript is the append-only list of messages of one conversation.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
}

func New() *Transcript {
	return &Transcript{now: time.Now}
}

// Append records a message and returns it ready for display.
func (t *Transcript) Append(text string, origin Origin) Message {
	msg := Message{
		Text:       text,
		Origin:     origin,
		Paragraphs: Paragraphs(text),
		Time:       t.now(),
	}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return msg
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message from origin.
func (t *Transcript) Last(origin Origin) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Origin == origin {
			return t.messages[i], true
		}
	}
	return Message{}, false
}
