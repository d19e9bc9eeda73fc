package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sipeed/hookchat/pkg/logger"
)

const (
	DefaultKey    = "faqSessionId"
	DefaultPrefix = "faq"

	suffixLen = 9
	base36    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Source yields the session identifier for the next turn.
type Source interface {
	GetSessionID(ctx context.Context) (string, error)
}

// Static is a Source for callers that already own the identifier.
type Static string

func (s Static) GetSessionID(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("session: empty session id")
	}
	return string(s), nil
}

type ProviderOptions struct {
	Key    string
	Prefix string

	// EphemeralFallback degrades to a process-lifetime identifier when the
	// store fails instead of returning the store error.
	EphemeralFallback bool

	Now func() time.Time
}

// Provider hands out one stable identifier per store.
type Provider struct {
	store     Store
	key       string
	prefix    string
	ephemeral bool
	now       func() time.Time

	mu       sync.Mutex
	fallback string
}

func NewProvider(store Store, opts ProviderOptions) *Provider {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{
		store:     store,
		key:       opts.Key,
		prefix:    opts.Prefix,
		ephemeral: opts.EphemeralFallback,
		now:       opts.Now,
	}
}

// GetSessionID returns the persisted identifier, creating and persisting one
// on first use.
func (p *Provider) GetSessionID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.loadOrCreate(ctx)
	if err == nil {
		return id, nil
	}
	if !p.ephemeral {
		return "", err
	}

	if p.fallback == "" {
		p.fallback = NewID(p.prefix, p.now())
		logger.WarnCF("session", "Session store unavailable, using ephemeral session id",
			map[string]interface{}{"error": err.Error(), "session_id": p.fallback})
	}
	return p.fallback, nil
}

func (p *Provider) loadOrCreate(ctx context.Context) (string, error) {
	id, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = NewID(p.prefix, p.now())
	if err := p.store.Set(ctx, p.key, id); err != nil {
		return "", err
	}

	// another process may have won the race; its value is the one that sticks
	stored, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return "", err
	}
	if ok && stored != "" {
		id = stored
	}

	logger.InfoCF("session", "Created session id", map[string]interface{}{"session_id": id})
	return id, nil
}

// NewID builds "<prefix>_<unix millis>_<9 base36 chars>".
func NewID(prefix string, now time.Time) string {
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomSuffix(suffixLen)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = base36[int(b[i])%len(base36)]
	}
	return string(b)
}
