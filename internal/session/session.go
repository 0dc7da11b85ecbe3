// Package session holds the operator credential pair used for privileged till
// actions. Credentials carry an explicit expiry that is checked on every read.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNoOperator = errors.New("no operator signed in")
	ErrExpired    = errors.New("operator session expired")
)

const DefaultTTL = 8 * time.Hour

// Credentials is the raw pair re-sent with every privileged call.
type Credentials struct {
	OperatorID string `json:"operator_id"`
	Password   string `json:"password"`
}

func (c Credentials) empty() bool {
	return c.OperatorID == "" || c.Password == ""
}

// Record is the persisted form of a session.
type Record struct {
	Credentials Credentials `json:"credentials"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Store persists the current record between runs.
type Store interface {
	Load() (*Record, error)
	Save(rec Record) error
	Clear() error
}

// Session is shared by reference between the till controller and checkout.
type Session struct {
	mu        sync.RWMutex
	creds     Credentials
	expiresAt time.Time

	ttl   time.Duration
	now   func() time.Time
	store Store
}

type Option func(*Session)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithStore persists credentials through store.
func WithStore(store Store) Option {
	return func(s *Session) { s.store = store }
}

func New(ttl time.Duration, opts ...Option) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Session{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Restore loads a persisted record if it has not expired yet.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}

	rec, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if rec == nil || rec.Credentials.empty() || !s.now().Before(rec.ExpiresAt) {
		return nil
	}

	s.mu.Lock()
	s.creds = rec.Credentials
	s.expiresAt = rec.ExpiresAt
	s.mu.Unlock()

	return nil
}

// Set replaces the credentials and restarts the expiry window.
func (s *Session) Set(c Credentials) error {
	s.mu.Lock()
	s.creds = c
	s.expiresAt = s.now().Add(s.ttl)
	rec := Record{Credentials: s.creds, ExpiresAt: s.expiresAt}
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}

	if err := s.store.Save(rec); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// Credentials returns the current pair, or ErrNoOperator / ErrExpired.
func (s *Session) Credentials() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds.empty() {
		return Credentials{}, ErrNoOperator
	}

	if !s.now().Before(s.expiresAt) {
		return Credentials{}, ErrExpired
	}

	return s.creds, nil
}

// OperatorID is the signed in operator, or "" when none or expired.
func (s *Session) OperatorID() string {
	c, err := s.Credentials()
	if err != nil {
		return ""
	}

	return c.OperatorID
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.expiresAt
}

// Clear drops the credentials in memory and in the store.
func (s *Session) Clear() {
	s.mu.Lock()
	s.creds = Credentials{}
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if s.store == nil {
		return
	}

	if err := s.store.Clear(); err != nil {
		slog.Warn("failed to clear stored session", "error", err)
	}
}
