package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/sipeed/hookchat/pkg/logger"
	"github.com/sipeed/hookchat/pkg/transcript"
)

type Options struct {
	Title   string
	BotName string
}

// View is the terminal chat widget: a scrolling transcript, a typing line,
// an input field and a Send button. It implements chat.Surface.
type View struct {
	app      *tview.Application
	root     *tview.Flex
	messages *tview.TextView
	typing   *tview.TextView
	input    *tview.InputField
	send     *tview.Button

	botName string
	enabled atomic.Bool

	mu        sync.Mutex
	onSubmit  func(text string)
	lastReply string
}

// NewView builds the widget. With a nil app, updates are applied directly,
// which is how tests drive it.
func NewView(app *tview.Application, opts Options) *View {
	if opts.Title == "" {
		opts.Title = "Chat"
	}
	if opts.BotName == "" {
		opts.BotName = "Assistant"
	}

	v := &View{
		app:      app,
		messages: tview.NewTextView(),
		typing:   tview.NewTextView(),
		input:    tview.NewInputField(),
		send:     tview.NewButton("Send"),
		botName:  opts.BotName,
	}
	v.enabled.Store(true)

	v.messages.SetDynamicColors(true).SetScrollable(true).SetWrap(true).SetWordWrap(true)
	v.messages.SetBorder(true)
	v.messages.SetTitle(" " + opts.Title + " ")

	v.typing.SetDynamicColors(true)

	v.input.SetLabel("> ").SetPlaceholder("Type your question...")
	v.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			v.submit()
		case tcell.KeyTab:
			v.setFocus(v.send)
		}
	})

	v.send.SetSelectedFunc(v.submit)
	v.send.SetExitFunc(func(key tcell.Key) {
		v.setFocus(v.input)
	})

	inputRow := tview.NewFlex().
		AddItem(v.input, 0, 1, true).
		AddItem(v.send, 8, 0, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.messages, 0, 1, false).
		AddItem(v.typing, 1, 0, false).
		AddItem(inputRow, 1, 0, true)

	return v
}

// OnSubmit registers the handler for Enter and the Send button. It runs on
// the UI goroutine and must not block.
func (v *View) OnSubmit(fn func(text string)) {
	v.mu.Lock()
	v.onSubmit = fn
	v.mu.Unlock()
}

func (v *View) submit() {
	if !v.enabled.Load() {
		return
	}
	v.mu.Lock()
	fn := v.onSubmit
	v.mu.Unlock()
	if fn != nil {
		fn(v.input.GetText())
	}
}

// Run shows the widget until ctx is done or the user quits.
func (v *View) Run(ctx context.Context) error {
	if v.app == nil {
		return fmt.Errorf("tui: view has no application")
	}
	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlY {
			v.copyLastReply()
			return nil
		}
		return event
	})
	v.app.SetRoot(v.root, true).SetFocus(v.input).EnableMouse(true)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			v.app.Stop()
		case <-stop:
		}
	}()

	return v.app.Run()
}

func (v *View) copyLastReply() {
	v.mu.Lock()
	text := v.lastReply
	v.mu.Unlock()
	if text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		logger.WarnCF("tui", "Copy to clipboard failed", map[string]interface{}{"error": err.Error()})
	}
}

func (v *View) queue(fn func()) {
	if v.app == nil {
		fn()
		return
	}
	v.app.QueueUpdateDraw(fn)
}

func (v *View) setFocus(p tview.Primitive) {
	if v.app != nil {
		v.app.SetFocus(p)
	}
}

func (v *View) RenderMessage(msg transcript.Message) {
	if !msg.IsUser() {
		v.mu.Lock()
		v.lastReply = msg.Text
		v.mu.Unlock()
	}

	block := formatMessage(msg, v.botName)
	v.queue(func() {
		fmt.Fprint(v.messages, block)
		v.messages.ScrollToEnd()
	})
}

func (v *View) SetInputEnabled(enabled bool) {
	v.enabled.Store(enabled)
	v.queue(func() {
		v.input.SetDisabled(!enabled)
		v.send.SetDisabled(!enabled)
		if enabled {
			v.input.SetFieldBackgroundColor(tcell.ColorNavy)
			v.send.SetLabel("Send")
		} else {
			v.input.SetFieldBackgroundColor(tcell.ColorDimGray)
			v.send.SetLabel("...")
		}
	})
}

func (v *View) SetTypingVisible(visible bool) {
	v.queue(func() {
		if visible {
			v.typing.SetText(fmt.Sprintf("[gray]%s is typing...[-]", tview.Escape(v.botName)))
		} else {
			v.typing.SetText("")
		}
	})
}

func (v *View) ClearInput() {
	v.queue(func() { v.input.SetText("") })
}

func (v *View) FocusInput() {
	v.queue(func() { v.setFocus(v.input) })
}

func formatMessage(msg transcript.Message, botName string) string {
	var sb strings.Builder
	if msg.IsUser() {
		sb.WriteString("[green::b]You[-:-:-]\n")
	} else {
		sb.WriteString(fmt.Sprintf("[blue::b]%s[-:-:-]\n", tview.Escape(botName)))
	}
	for _, p := range msg.Paragraphs {
		sb.WriteString("  ")
		sb.WriteString(tview.Escape(p))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
