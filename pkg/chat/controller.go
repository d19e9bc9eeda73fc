package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sipeed/hookchat/pkg/logger"
	"github.com/sipeed/hookchat/pkg/normalize"
	"github.com/sipeed/hookchat/pkg/session"
	"github.com/sipeed/hookchat/pkg/transcript"
)

var (
	// ErrEmptyInput is returned for blank input; nothing is rendered or sent.
	ErrEmptyInput = errors.New("chat: empty input")

	// ErrBusy is returned while another turn is in flight.
	ErrBusy = errors.New("chat: request already in flight")
)

type State int32

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Surface is what a front end exposes to the controller.
type Surface interface {
	RenderMessage(msg transcript.Message)
	SetInputEnabled(enabled bool)
	SetTypingVisible(visible bool)
	ClearInput()
	FocusInput()
}

// Sender delivers one turn to the webhook and returns the raw reply body.
type Sender interface {
	Send(ctx context.Context, message, sessionID string) (string, error)
}

type Config struct {
	Sender     Sender
	Sessions   session.Source
	Surface    Surface
	Transcript *transcript.Transcript
}

// Turn describes a completed request/response cycle.
type Turn struct {
	User   transcript.Message
	Reply  transcript.Message
	Failed bool
}

// Controller runs one request/response cycle at a time.
type Controller struct {
	sender     Sender
	sessions   session.Source
	surface    Surface
	transcript *transcript.Transcript
	state      atomic.Int32
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Sender == nil {
		return nil, fmt.Errorf("chat: sender is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("chat: session source is required")
	}
	if cfg.Surface == nil {
		cfg.Surface = NopSurface{}
	}
	if cfg.Transcript == nil {
		cfg.Transcript = transcript.New()
	}
	return &Controller{
		sender:     cfg.Sender,
		sessions:   cfg.Sessions,
		surface:    cfg.Surface,
		transcript: cfg.Transcript,
	}, nil
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) Transcript() *transcript.Transcript {
	return c.transcript
}

// Submit runs one turn for input. Every failure after admission ends as a
// rendered bot message; only ErrEmptyInput and ErrBusy are returned.
func (c *Controller) Submit(ctx context.Context, input string) (Turn, error) {
	message := strings.TrimSpace(input)
	if message == "" {
		return Turn{}, ErrEmptyInput
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateSending)) {
		return Turn{}, ErrBusy
	}

	var turn Turn
	turn.User = c.addMessage(message, transcript.OriginUser)
	c.surface.ClearInput()
	c.surface.SetTypingVisible(true)
	c.surface.SetInputEnabled(false)

	defer func() {
		c.surface.SetTypingVisible(false)
		c.surface.SetInputEnabled(true)
		c.surface.FocusInput()
		c.state.Store(int32(StateIdle))
	}()

	reply, err := c.exchange(ctx, message)
	if err != nil {
		logger.WarnCF("chat", "Turn failed", map[string]interface{}{"error": err.Error()})
		turn.Failed = true
		reply = ErrorMessage(err)
	}
	turn.Reply = c.addMessage(reply, transcript.OriginBot)
	return turn, nil
}

func (c *Controller) exchange(ctx context.Context, message string) (string, error) {
	sessionID, err := c.sessions.GetSessionID(ctx)
	if err != nil {
		return "", fmt.Errorf("session unavailable: %w", err)
	}

	body, err := c.sender.Send(ctx, message, sessionID)
	if err != nil {
		return "", err
	}
	return normalize.Reply(body), nil
}

func (c *Controller) addMessage(text string, origin transcript.Origin) transcript.Message {
	msg := c.transcript.Append(text, origin)
	c.surface.RenderMessage(msg)
	return msg
}

// NopSurface discards all UI updates.
type NopSurface struct{}

func (NopSurface) RenderMessage(transcript.Message) {}
func (NopSurface) SetInputEnabled(bool)             {}
func (NopSurface) SetTypingVisible(bool)            {}
func (NopSurface) ClearInput()                      {}
func (NopSurface) FocusInput()                      {}
