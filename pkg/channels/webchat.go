package channels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sipeed/hookchat/pkg/chat"
	"github.com/sipeed/hookchat/pkg/config"
	"github.com/sipeed/hookchat/pkg/logger"
	"github.com/sipeed/hookchat/pkg/session"
	"github.com/sipeed/hookchat/pkg/transcript"
)

// WebChatChannel serves the browser widget and relays its turns to the
// webhook. The browser owns the session id (localStorage); the relay keeps
// one controller and transcript per session id.
type WebChatChannel struct {
	config     config.WebChatConfig
	sender     chat.Sender
	storageKey string
	idPrefix   string
	server     *http.Server
	limiter    *rate.Limiter
	sessions   map[string]*relaySession // sessionId -> conversation
	mu         sync.RWMutex
	running    bool
	stopSweep  chan struct{}
	lastSweep  time.Time
	now        func() time.Time
}

const sweepInterval = time.Minute

type relaySession struct {
	ctrl     *chat.Controller
	lastSeen time.Time
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	SessionID  string   `json:"sessionId"`
	Reply      string   `json:"reply"`
	Paragraphs []string `json:"paragraphs"`
	Error      bool     `json:"error"`
}

func NewWebChatChannel(cfg *config.Config, sender chat.Sender) (*WebChatChannel, error) {
	if sender == nil {
		return nil, errors.New("webchat: sender is required")
	}
	wc := cfg.WebChat

	limit := rate.Inf
	if wc.RatePerSecond > 0 {
		limit = rate.Limit(wc.RatePerSecond)
	}
	burst := wc.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &WebChatChannel{
		config:     wc,
		sender:     sender,
		storageKey: cfg.Session.Key,
		idPrefix:   cfg.Session.Prefix,
		limiter:    rate.NewLimiter(limit, burst),
		sessions:   make(map[string]*relaySession),
		now:        time.Now,
	}, nil
}

// Handler returns the relay routes; Start serves them, the Lambda entry
// point adapts API Gateway events onto them.
func (c *WebChatChannel) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", c.handleUI)
	r.Post("/chat/send", c.handleSend)
	r.Get("/chat/poll", c.handlePoll)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (c *WebChatChannel) Start(ctx context.Context) error {
	addr := c.Addr()
	c.server = &http.Server{Addr: addr, Handler: c.Handler(), ReadHeaderTimeout: 10 * time.Second}

	c.mu.Lock()
	c.running = true
	c.stopSweep = make(chan struct{})
	c.mu.Unlock()

	logger.InfoCF("channels", "WebChat started", map[string]interface{}{"addr": addr})

	go c.sweepLoop(c.stopSweep)
	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("channels", "WebChat server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

func (c *WebChatChannel) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		close(c.stopSweep)
	}
	c.running = false
	c.mu.Unlock()

	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

func (c *WebChatChannel) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *WebChatChannel) Addr() string {
	return fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
}

func (c *WebChatChannel) sessionTTL() time.Duration {
	if c.config.SessionTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.config.SessionTTLMinutes) * time.Minute
}

func (c *WebChatChannel) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				logger.DebugCF("channels", "Expired webchat sessions", map[string]interface{}{"count": n})
			}
		}
	}
}

// Sweep drops idle conversations older than the session TTL and returns how
// many were removed. Conversations with a turn in flight are kept.
func (c *WebChatChannel) Sweep() int {
	cutoff := c.now().Add(-c.sessionTTL())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSweep = c.now()
	removed := 0
	for id, s := range c.sessions {
		if s.lastSeen.Before(cutoff) && s.ctrl.State() == chat.StateIdle {
			delete(c.sessions, id)
			removed++
		}
	}
	return removed
}

// MaybeSweep runs Sweep when the last sweep is at least a minute old. It is
// for callers that serve Handler without Start, such as the Lambda entry point.
func (c *WebChatChannel) MaybeSweep() int {
	c.mu.RLock()
	due := c.now().Sub(c.lastSweep) >= sweepInterval
	c.mu.RUnlock()
	if !due {
		return 0
	}
	return c.Sweep()
}

// conversation returns the controller for sessionID, creating it on first use.
func (c *WebChatChannel) conversation(sessionID string) (*chat.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[sessionID]; ok {
		s.lastSeen = c.now()
		return s.ctrl, nil
	}

	ctrl, err := chat.NewController(chat.Config{
		Sender:     c.sender,
		Sessions:   session.Static(sessionID),
		Transcript: transcript.New(),
	})
	if err != nil {
		return nil, err
	}
	c.sessions[sessionID] = &relaySession{ctrl: ctrl, lastSeen: c.now()}
	return ctrl, nil
}

func (c *WebChatChannel) lookup(sessionID string) (*chat.Controller, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return s.ctrl, true
}

func (c *WebChatChannel) handleSend(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	// blank input never reaches a conversation
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty message"})
		return
	}

	if !c.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	if req.SessionID == "" {
		req.SessionID = session.NewID(c.idPrefix, c.now())
	}

	ctrl, err := c.conversation(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// the turn finishes into the transcript even if the browser goes away
	turn, err := ctrl.Submit(context.WithoutCancel(r.Context()), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty message"})
		return
	case errors.Is(err, chat.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a message is already being sent"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	logger.DebugCF("channels", "WebChat turn complete", map[string]interface{}{
		"session_id": req.SessionID,
		"failed":     turn.Failed,
		"remote":     r.RemoteAddr,
	})

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  req.SessionID,
		Reply:      turn.Reply.Text,
		Paragraphs: nonNil(turn.Reply.Paragraphs),
		Error:      turn.Failed,
	})
}

func (c *WebChatChannel) handlePoll(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	msgs := []transcript.Message{}
	if ctrl, ok := c.lookup(sessionID); ok {
		msgs = ctrl.Transcript().Messages()
	}
	for i := range msgs {
		msgs[i].Paragraphs = nonNil(msgs[i].Paragraphs)
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (c *WebChatChannel) handleUI(w http.ResponseWriter, r *http.Request) {
	title := c.config.Title
	if title == "" {
		title = "Chat"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := webChatPage.Execute(w, struct {
		Title      string
		StorageKey string
		Prefix     string
	}{title, c.storageKey, c.idPrefix})
	if err != nil {
		logger.ErrorCF("channels", "WebChat page render failed", map[string]interface{}{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var webChatPage = template.Must(template.New("webchat").Parse(webChatHTML))
