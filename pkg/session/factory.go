package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sipeed/hookchat/pkg/config"
)

// OpenStore builds the store selected by cfg.Session.Store.
func OpenStore(cfg *config.Config) (Store, error) {
	path := cfg.SessionPath()

	switch strings.ToLower(cfg.Session.Store) {
	case "", "file":
		return NewFileStore(path)
	case "sqlite":
		if filepath.Ext(path) == ".json" {
			path = strings.TrimSuffix(path, ".json") + ".db"
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("session: unknown store %q", cfg.Session.Store)
	}
}

// NewProviderFromConfig opens the configured store and wraps it in a Provider.
// The returned store must be closed by the caller.
func NewProviderFromConfig(cfg *config.Config) (*Provider, Store, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		if !cfg.Session.EphemeralFallback {
			return nil, nil, err
		}
		store = unavailableStore{err: err}
	}
	p := NewProvider(store, ProviderOptions{
		Key:               cfg.Session.Key,
		Prefix:            cfg.Session.Prefix,
		EphemeralFallback: cfg.Session.EphemeralFallback,
	})
	return p, store, nil
}
