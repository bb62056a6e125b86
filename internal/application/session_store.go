package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/salon-admin/internal/persistence"
)

// SessionStore gives typed access to the persisted session and preference
// keys. Reads of optional values degrade to "absent" on failure and are
// logged; writes return their error.
type SessionStore struct {
	kv          persistence.KVStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewSessionStore wraps kv.
func NewSessionStore(kv persistence.KVStore) *SessionStore {
	return NewSessionStoreWithLogger(kv, nil)
}

// NewSessionStoreWithLogger wraps kv with a specified logger.
func NewSessionStoreWithLogger(kv persistence.KVStore, logger *slog.Logger) *SessionStore {
	return &SessionStore{kv: kv, idGenerator: uuid.NewString, logger: defaultLogger(logger)}
}

// KV exposes the underlying store.
func (s *SessionStore) KV() persistence.KVStore {
	return s.kv
}

func (s *SessionStore) read(ctx context.Context, key string) string {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			serviceLogger(ctx, s.logger, "SessionStore", "read", "key", key).
				WarnContext(ctx, "failed to read stored value", "error", err)
		}
		return ""
	}
	return value
}

func (s *SessionStore) SaveDomain(ctx context.Context, domain string) error {
	return s.kv.Set(ctx, persistence.KeyDomain, domain)
}

func (s *SessionStore) Domain(ctx context.Context) string {
	return s.read(ctx, persistence.KeyDomain)
}

func (s *SessionStore) SaveToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, persistence.KeyToken, token)
}

func (s *SessionStore) Token(ctx context.Context) string {
	return s.read(ctx, persistence.KeyToken)
}

func (s *SessionStore) SetOnboardingCompleted(ctx context.Context) error {
	return s.kv.Set(ctx, persistence.KeyOnboardingCompleted, "true")
}

func (s *SessionStore) IsOnboardingCompleted(ctx context.Context) bool {
	return s.read(ctx, persistence.KeyOnboardingCompleted) == "true"
}

func (s *SessionStore) SaveStaffProfile(ctx context.Context, profile StaffProfile) error {
	return s.writeJSON(ctx, persistence.KeyStaffData, profile)
}

// StaffProfile returns the cached profile, or nil when it is absent or
// unreadable.
func (s *SessionStore) StaffProfile(ctx context.Context) *StaffProfile {
	var profile StaffProfile
	if !s.readJSON(ctx, persistence.KeyStaffData, &profile) {
		return nil
	}
	return &profile
}

func (s *SessionStore) SaveLicense(ctx context.Context, license License) error {
	return s.writeJSON(ctx, persistence.KeyLicenseData, license)
}

// License returns the cached licence, or nil when absent.
func (s *SessionStore) License(ctx context.Context) *License {
	var license License
	if !s.readJSON(ctx, persistence.KeyLicenseData, &license) {
		return nil
	}
	return &license
}

func (s *SessionStore) SaveThemeMode(ctx context.Context, mode ThemeMode) error {
	return s.kv.Set(ctx, persistence.KeyThemeMode, string(mode))
}

// ThemeMode returns the stored mode, defaulting to standard.
func (s *SessionStore) ThemeMode(ctx context.Context) ThemeMode {
	if ThemeMode(s.read(ctx, persistence.KeyThemeMode)) == ThemeCustom {
		return ThemeCustom
	}
	return ThemeStandard
}

func (s *SessionStore) SaveLanguage(ctx context.Context, lang string) error {
	return s.kv.Set(ctx, persistence.KeyLanguage, lang)
}

func (s *SessionStore) Language(ctx context.Context) string {
	return s.read(ctx, persistence.KeyLanguage)
}

// InstallationID returns a stable id for this installation, creating one on
// first use.
func (s *SessionStore) InstallationID(ctx context.Context) (string, error) {
	if id := s.read(ctx, persistence.KeyInstallationID); id != "" {
		return id, nil
	}
	id := s.idGenerator()
	if err := s.kv.Set(ctx, persistence.KeyInstallationID, id); err != nil {
		return "", err
	}
	return id, nil
}

// ClearSession removes domain, token, onboarding flag and the staff and
// licence caches. Theme mode, language and installation id are kept.
func (s *SessionStore) ClearSession(ctx context.Context) error {
	return s.kv.Delete(ctx, persistence.SessionKeys()...)
}

func (s *SessionStore) writeJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(payload))
}

func (s *SessionStore) readJSON(ctx context.Context, key string, out any) bool {
	raw := s.read(ctx, key)
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		serviceLogger(ctx, s.logger, "SessionStore", "read", "key", key).
			WarnContext(ctx, "ignoring corrupt cached value", "error", err)
		return false
	}
	return true
}
