package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/example/salon-admin/internal/api"
)

var (
	localhostPattern = regexp.MustCompile(`^localhost(:\d+)?$`)
	hostnamePattern  = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(:\d+)?$`)
	ipv4Pattern      = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}(:\d+)?$`)
	schemePattern    = regexp.MustCompile(`(?i)^https?://`)
)

// NormalizeDomain turns user input into a base domain URL: surrounding
// whitespace, a leading http(s):// and one trailing slash are removed, the
// host is validated, and http:// is used for localhost while everything else
// gets https://.
func NormalizeDomain(input string) (string, error) {
	return normalizeDomain(input, false)
}

func normalizeDomain(input string, plainHTTP bool) (string, error) {
	vErr := &ValidationError{}
	clean := strings.TrimSpace(input)
	if clean == "" {
		vErr.add("domain", "is required")
		return "", vErr
	}
	clean = schemePattern.ReplaceAllString(clean, "")
	clean = strings.TrimSuffix(clean, "/")

	switch {
	case localhostPattern.MatchString(clean):
		return "http://" + clean, nil
	case hostnamePattern.MatchString(clean), ipv4Pattern.MatchString(clean):
		if plainHTTP {
			return "http://" + clean, nil
		}
		return "https://" + clean, nil
	}

	vErr.add("domain", "must be a host name such as salon.example.com, an IP address or localhost")
	return "", vErr
}

// LoginParams is the login form input.
type LoginParams struct {
	Domain   string
	Email    string
	Password string
}

// SessionService owns onboarding, login, logout and launch-time validation.
type SessionService struct {
	store     *SessionStore
	connector Connector
	plainHTTP bool
	logger    *slog.Logger
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(store *SessionStore, connector Connector) *SessionService {
	return NewSessionServiceWithLogger(store, connector, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(store *SessionStore, connector Connector, logger *slog.Logger) *SessionService {
	return &SessionService{store: store, connector: connector, logger: defaultLogger(logger)}
}

// UsePlainHTTP makes ConnectDomain address every host over http://. It is
// meant for demo servers and tests on loopback addresses.
func (s *SessionService) UsePlainHTTP(enabled bool) {
	s.plainHTTP = enabled
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// Bootstrap decides at launch whether the user is signed in and refreshes
// the cached profile. A rejected token clears the session; any other
// validation failure keeps the cached profile and the signed-in state.
func (s *SessionService) Bootstrap(ctx context.Context) (result BootstrapResult, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Bootstrap")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "bootstrap failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "bootstrap finished",
			"authenticated", result.Authenticated,
			"refreshed", result.Refreshed,
			"forced_logout", result.ForcedLogout,
		)
	}()

	onboarded := s.store.IsOnboardingCompleted(ctx)
	token := s.store.Token(ctx)
	domain := s.store.Domain(ctx)

	if domain != "" && token != "" {
		if err = s.connector.Initialize(ctx, s.store.KV()); err != nil {
			return
		}

		refreshErr := s.refresh(ctx)
		switch {
		case refreshErr == nil:
			result.Refreshed = true
		case api.IsUnauthorized(refreshErr):
			logger.WarnContext(ctx, "stored token rejected, signing out", "error", refreshErr)
			if err = s.clear(ctx); err != nil {
				return
			}
			result.ForcedLogout = true
			return
		default:
			logger.WarnContext(ctx, "token validation failed, using cached profile", "error", refreshErr, "error_kind", ErrorKind(refreshErr))
			result.RefreshErr = refreshErr
		}
	}

	result.Authenticated = onboarded && token != "" && domain != ""
	result.Profile = s.store.StaffProfile(ctx)
	result.License = s.store.License(ctx)
	return
}

// RefreshPermissions re-runs token validation on demand and returns the new
// profile. A rejected token signs the user out and returns ErrNotAuthenticated.
func (s *SessionService) RefreshPermissions(ctx context.Context) (profile *StaffProfile, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RefreshPermissions")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to refresh permissions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "permissions refreshed")
	}()

	if s.store.Token(ctx) == "" || s.store.Domain(ctx) == "" {
		err = ErrNotAuthenticated
		return
	}

	refreshErr := s.refresh(ctx)
	if api.IsUnauthorized(refreshErr) {
		if clearErr := s.clear(ctx); clearErr != nil {
			err = clearErr
			return
		}
		err = fmt.Errorf("%w: %v", ErrNotAuthenticated, refreshErr)
		return
	}
	if refreshErr != nil {
		err = refreshErr
		return
	}

	profile = s.store.StaffProfile(ctx)
	return
}

// refresh validates the token and overwrites the caches with the server copy.
func (s *SessionService) refresh(ctx context.Context) error {
	resp, err := s.connector.Backend().ValidateToken(ctx)
	if err != nil {
		return err
	}
	if !resp.Valid {
		return &api.Error{Kind: api.KindUnauthorized, Message: "token reported invalid"}
	}
	if err := s.store.SaveStaffProfile(ctx, resp.Staff); err != nil {
		return err
	}
	return s.store.SaveLicense(ctx, resp.License)
}

// ConnectDomain normalises input, points the client at it and probes the
// services endpoint. It returns the normalised domain.
func (s *SessionService) ConnectDomain(ctx context.Context, input string) (domain string, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ConnectDomain")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "domain check failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "domain reachable", "domain", domain)
	}()

	domain, err = normalizeDomain(input, s.plainHTTP)
	if err != nil {
		return
	}

	s.connector.SetBaseURL(domain)
	if probeErr := s.connector.Backend().CheckConnection(ctx); probeErr != nil {
		err = fmt.Errorf("%w: %v", ErrConnectionFailed, probeErr)
		domain = ""
		return
	}
	return
}

// Login authenticates against the normalized domain and persists the new
// session, storing the normalized form. Values
// are written one key at a time in the order domain, token, profile,
// licence, onboarding flag.
func (s *SessionService) Login(ctx context.Context, params LoginParams) (profile *StaffProfile, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login", "domain", params.Domain)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("staff_id", profile.ID.String()).InfoContext(ctx, "signed in")
	}()

	vErr := &ValidationError{}
	domain, domainErr := normalizeDomain(params.Domain, s.plainHTTP)
	if domainErr != nil {
		var fieldErr *ValidationError
		if !errors.As(domainErr, &fieldErr) {
			err = domainErr
			return
		}
		vErr.merge(fieldErr)
	}
	if strings.TrimSpace(params.Email) == "" {
		vErr.add("email", "is required")
	}
	if params.Password == "" {
		vErr.add("password", "is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.connector.SetBaseURL(domain)
	resp, loginErr := s.connector.Backend().Login(ctx, strings.TrimSpace(params.Email), params.Password)
	if loginErr != nil {
		if api.IsUnauthorized(loginErr) {
			err = fmt.Errorf("%w: %v", ErrInvalidCredentials, loginErr)
			return
		}
		err = loginErr
		return
	}
	s.connector.SetToken(resp.Token)

	if err = s.store.SaveDomain(ctx, domain); err != nil {
		return
	}
	if err = s.store.SaveToken(ctx, resp.Token); err != nil {
		return
	}
	if err = s.store.SaveStaffProfile(ctx, resp.Staff); err != nil {
		return
	}
	if err = s.store.SaveLicense(ctx, resp.License); err != nil {
		return
	}
	if err = s.store.SetOnboardingCompleted(ctx); err != nil {
		return
	}

	staff := resp.Staff
	profile = &staff
	return
}

// Logout clears the session keys and the in-memory client configuration.
// Theme mode and language survive.
func (s *SessionService) Logout(ctx context.Context) (err error) {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "signed out")
	}()

	return s.clear(ctx)
}

func (s *SessionService) clear(ctx context.Context) error {
	s.connector.Reset()
	if err := s.store.ClearSession(ctx); err != nil {
		return errors.Join(errors.New("failed to clear session"), err)
	}
	return nil
}
