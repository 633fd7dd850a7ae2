// Package credential holds the bearer token used for every backend request and
// persists it under a single key.
package credential

import (
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/pslog"
)

// Key is the storage key holding the bearer token.
const Key = "token"

// Store holds at most one bearer token and mirrors it into a KV backend.
// It implements oauth2.TokenSource.
type Store struct {
	mu    sync.RWMutex
	token string
	kv    KV
	log   pslog.Logger
}

// NewStore restores the token persisted in kv, if any. A nil kv keeps the
// token in memory only.
func NewStore(kv KV, logger pslog.Logger) (*Store, error) {
	if kv == nil {
		kv = NewMemoryKV()
	}
	s := &Store{kv: kv, log: logger}
	token, ok, err := kv.Get(Key)
	if err != nil {
		return nil, err
	}
	if ok {
		s.token = strings.TrimSpace(token)
		if s.log != nil && s.token != "" {
			s.log.Debug("credential restore ok")
		}
	}
	return s, nil
}

// Get returns the held token.
func (s *Store) Get() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Has reports whether a token is held.
func (s *Store) Has() bool {
	_, ok := s.Get()
	return ok
}

// Set replaces the held token. The in-memory value changes even when
// persisting it fails.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear()
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if err := s.kv.Set(Key, token); err != nil {
		if s.log != nil {
			s.log.Warn("credential persist failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Debug("credential set ok")
	}
	return nil
}

// Clear drops the held token.
func (s *Store) Clear() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()
	if err := s.kv.Delete(Key); err != nil {
		if s.log != nil {
			s.log.Warn("credential clear failed", "err", err)
		}
		return err
	}
	if s.log != nil && had {
		s.log.Debug("credential clear ok")
	}
	return nil
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	token, ok := s.Get()
	if !ok {
		return nil, schema.ErrNoCredential
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
