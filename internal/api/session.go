package api

import (
	"context"
	"errors"
	"sync"

	"github.com/example/salon-admin/internal/persistence"
)

// Session is the single mutable holder of the client configuration for one
// signed-in user. Callers take an immutable *Client snapshot per operation.
type Session struct {
	mu         sync.RWMutex
	cfg        Config
	pathPrefix string
	base       *Client
}

// NewSession creates an unconfigured Session. opts apply to every Client it
// hands out.
func NewSession(pathPrefix string, opts ...Option) *Session {
	if pathPrefix == "" {
		pathPrefix = DefaultPathPrefix
	}
	return &Session{
		pathPrefix: pathPrefix,
		base:       NewClient(Config{}, opts...),
	}
}

// Initialize loads domain and token from the store. When both are present
// they become the active configuration. No request is made.
func (s *Session) Initialize(ctx context.Context, store persistence.KVStore) error {
	domain, err := store.Get(ctx, persistence.KeyDomain)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	token, err := store.Get(ctx, persistence.KeyToken)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	if domain == "" || token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Config{BaseURL: BaseURLForDomain(domain, s.pathPrefix), Token: token}
	return nil
}

// SetBaseURL points the session at domain immediately.
func (s *Session) SetBaseURL(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.BaseURL = BaseURLForDomain(domain, s.pathPrefix)
}

// SetToken replaces the bearer token immediately.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Token = token
}

// Reset forgets base URL and token.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Config{}
}

// Config returns the current configuration.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Client returns a Client bound to the current configuration.
func (s *Session) Client() *Client {
	return s.base.WithConfig(s.Config())
}

// Login authenticates and, on success, makes the returned token current.
func (s *Session) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	resp, err := s.Client().Login(ctx, email, password)
	if err != nil {
		return LoginResponse{}, err
	}
	s.SetToken(resp.Token)
	return resp, nil
}
