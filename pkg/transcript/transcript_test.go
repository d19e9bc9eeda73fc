package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "line one\nline two", []string{"line one", "line two"}},
		{"escaped newline", `line one\nline two`, []string{"line one", "line two"}},
		{"blank lines dropped", "a\n\n   \nb", []string{"a", "b"}},
		{"lines trimmed", "  a  \n\tb\r\n", []string{"a", "b"}},
		{"mixed escapes", "a\\n\nb", []string{"a", "b"}},
		{"only whitespace", " \n \\n ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paragraphs(tt.in))
		})
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	tr := New()
	tr.Append("question", OriginUser)
	msg := tr.Append("line one\nline two", OriginBot)

	assert.Equal(t, OriginBot, msg.Origin)
	assert.False(t, msg.IsUser())
	assert.Equal(t, []string{"line one", "line two"}, msg.Paragraphs)
	assert.False(t, msg.Time.IsZero())

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "question", msgs[0].Text)
	assert.True(t, msgs[0].IsUser())
	assert.Equal(t, 2, tr.Len())
}

func TestMessagesIsACopy(t *testing.T) {
	tr := New()
	tr.Append("hi", OriginUser)

	msgs := tr.Messages()
	msgs[0].Text = "changed"

	assert.Equal(t, "hi", tr.Messages()[0].Text)
}

func TestLast(t *testing.T) {
	tr := New()
	_, ok := tr.Last(OriginBot)
	assert.False(t, ok)

	tr.Append("first reply", OriginBot)
	tr.Append("follow-up", OriginUser)

	last, ok := tr.Last(OriginBot)
	require.True(t, ok)
	assert.Equal(t, "first reply", last.Text)
}
