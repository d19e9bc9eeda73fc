package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipeed/hookchat/pkg/transcript"
)

func message(text string, origin transcript.Origin) transcript.Message {
	return transcript.Message{
		Text:       text,
		Origin:     origin,
		Paragraphs: transcript.Paragraphs(text),
		Time:       time.Now(),
	}
}

func TestRenderMessageSplitsParagraphs(t *testing.T) {
	v := NewView(nil, Options{BotName: "FAQ Bot"})

	v.RenderMessage(message("hello", transcript.OriginUser))
	v.RenderMessage(message("line one\nline two", transcript.OriginBot))

	text := v.messages.GetText(true)
	assert.Contains(t, text, "You\n  hello\n")
	assert.Contains(t, text, "FAQ Bot\n  line one\n  line two\n")
	assert.Less(t, strings.Index(text, "hello"), strings.Index(text, "line one"))
}

func TestRenderMessageEscapesTags(t *testing.T) {
	v := NewView(nil, Options{})
	v.RenderMessage(message("use [red] carefully", transcript.OriginBot))

	block := formatMessage(message("use [red] carefully", transcript.OriginBot), "Bot")
	assert.Contains(t, block, tview.Escape("use [red] carefully"))
	assert.Contains(t, v.messages.GetText(true), "carefully")
}

func TestTypingIndicator(t *testing.T) {
	v := NewView(nil, Options{BotName: "Bot"})

	v.SetTypingVisible(true)
	assert.Equal(t, "Bot is typing...", strings.TrimSpace(v.typing.GetText(true)))

	v.SetTypingVisible(false)
	assert.Empty(t, strings.TrimSpace(v.typing.GetText(true)))
}

func TestSubmitRespectsInputState(t *testing.T) {
	v := NewView(nil, Options{})
	var got []string
	v.OnSubmit(func(text string) { got = append(got, text) })

	v.input.SetText("first")
	v.submit()

	v.SetInputEnabled(false)
	v.input.SetText("ignored")
	v.submit()

	v.SetInputEnabled(true)
	v.ClearInput()
	assert.Empty(t, v.input.GetText())
	v.input.SetText("second")
	v.submit()

	require.Equal(t, []string{"first", "second"}, got)
}

func TestLastReplyTracksBotMessages(t *testing.T) {
	v := NewView(nil, Options{})
	v.RenderMessage(message("reply", transcript.OriginBot))
	v.RenderMessage(message("question", transcript.OriginUser))

	assert.Equal(t, "reply", v.lastReply)
}

func TestRunWithoutApplication(t *testing.T) {
	v := NewView(nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	assert.Error(t, v.Run(ctx))
}

func TestDisabledInputIgnoresKeys(t *testing.T) {
	v := NewView(nil, Options{})
	typeRune := func(r rune) {
		v.input.InputHandler()(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone), func(tview.Primitive) {})
	}

	v.SetInputEnabled(false)
	typeRune('x')
	assert.Empty(t, v.input.GetText())
	assert.True(t, v.send.IsDisabled())

	v.SetInputEnabled(true)
	typeRune('y')
	assert.Equal(t, "y", v.input.GetText())
	assert.False(t, v.send.IsDisabled())
}
