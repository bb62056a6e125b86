package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/persistence"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "  salon.example.com  ", want: "https://salon.example.com", ok: true},
		{input: "http://salon.example.com/", want: "https://salon.example.com", ok: true},
		{input: "HTTPS://Salon.Example.de", want: "https://Salon.Example.de", ok: true},
		{input: "localhost:8080", want: "http://localhost:8080", ok: true},
		{input: "https://localhost", want: "http://localhost", ok: true},
		{input: "192.168.1.20:8443", want: "https://192.168.1.20:8443", ok: true},
		{input: "", ok: false},
		{input: "not a domain", ok: false},
		{input: "salon", ok: false},
	}

	for _, tc := range cases {
		got, err := NormalizeDomain(tc.input)
		if tc.ok {
			if err != nil {
				t.Fatalf("NormalizeDomain(%q) returned error %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeDomain(%q) = %q, want %q", tc.input, got, tc.want)
			}
			continue
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["domain"] == "" {
			t.Fatalf("NormalizeDomain(%q) expected domain validation error, got %v", tc.input, err)
		}
	}
}

func TestSessionService_BootstrapWithoutSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSessionService(f.store, f.connector)

	result, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if result.Authenticated {
		t.Fatalf("expected unauthenticated result")
	}
	if f.backend.count("ValidateToken") != 0 {
		t.Fatalf("expected no validation request without a session")
	}
}

func TestSessionService_BootstrapRefreshesCache(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.signIn(t, staffWith("7", nil))
	f.backend.validate = api.ValidateResponse{
		Valid:   true,
		Staff:   staffWith("7", &api.Permissions{CanViewCustomers: api.Bool(false)}),
		License: api.License{Valid: true, Type: "pro"},
	}
	svc := NewSessionService(f.store, f.connector)

	result, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !result.Authenticated || !result.Refreshed {
		t.Fatalf("expected authenticated refreshed result, got %+v", result)
	}
	if f.connector.inits != 1 || f.connector.token != "token-1" {
		t.Fatalf("expected connector initialised from store, got %+v", f.connector)
	}
	if result.Profile == nil || result.Profile.Permissions == nil || bool(*result.Profile.Permissions.CanViewCustomers) {
		t.Fatalf("expected refreshed permissions in profile, got %+v", result.Profile)
	}
	if result.License == nil || result.License.Type != "pro" {
		t.Fatalf("expected refreshed licence, got %+v", result.License)
	}
	if f.perms.Current(context.Background()).Customers.CanView {
		t.Fatalf("expected gate to pick up refreshed profile")
	}
}

func TestSessionService_BootstrapUnauthorizedLogsOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, staffWith("7", nil))
	if err := f.store.SaveThemeMode(ctx, ThemeCustom); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	f.backend.validateErr = &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "Invalid or expired token"}
	svc := NewSessionService(f.store, f.connector)

	result, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if result.Authenticated || !result.ForcedLogout {
		t.Fatalf("expected forced logout, got %+v", result)
	}
	if f.connector.resets != 1 {
		t.Fatalf("expected client configuration reset")
	}

	keys, err := f.kv.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != persistence.KeyThemeMode {
		t.Fatalf("expected only theme mode to survive, got %v", keys)
	}
}

func TestSessionService_BootstrapReportedInvalidLogsOut(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.signIn(t, staffWith("7", nil))
	f.backend.validate = api.ValidateResponse{Valid: false}
	svc := NewSessionService(f.store, f.connector)

	result, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if result.Authenticated || !result.ForcedLogout {
		t.Fatalf("expected valid=false to sign out, got %+v", result)
	}
}

func TestSessionService_BootstrapToleratesOtherFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cached := staffWith("7", &api.Permissions{CanDeleteAppointments: api.Bool(true)})
	f.signIn(t, cached)
	f.backend.validateErr = &api.Error{Kind: api.KindTransport, Message: "timeout"}
	svc := NewSessionService(f.store, f.connector)

	result, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !result.Authenticated || result.ForcedLogout || result.Refreshed {
		t.Fatalf("expected authenticated result from cache, got %+v", result)
	}
	if result.RefreshErr == nil {
		t.Fatalf("expected tolerated refresh error to be reported")
	}
	if result.Profile == nil || result.Profile.ID != cached.ID {
		t.Fatalf("expected cached profile, got %+v", result.Profile)
	}
}

func TestSessionService_RefreshPermissions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("not signed in", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := NewSessionService(f.store, f.connector).RefreshPermissions(ctx)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signIn(t, staffWith("7", nil))
		f.backend.validateErr = &api.Error{Kind: api.KindUnauthorized, Status: 401}
		_, err := NewSessionService(f.store, f.connector).RefreshPermissions(ctx)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if f.store.Token(ctx) != "" {
			t.Fatalf("expected token cleared")
		}
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signIn(t, staffWith("7", nil))
		f.backend.validate = api.ValidateResponse{Valid: true, Staff: staffWith("7", &api.Permissions{CanViewAllStaff: api.Bool(false)})}
		profile, err := NewSessionService(f.store, f.connector).RefreshPermissions(ctx)
		if err != nil {
			t.Fatalf("RefreshPermissions returned error: %v", err)
		}
		if profile == nil || profile.Permissions == nil || profile.Permissions.CanViewAllStaff == nil {
			t.Fatalf("expected refreshed profile, got %+v", profile)
		}
	})
}

func TestSessionService_ConnectDomain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := NewSessionService(f.store, f.connector)

	domain, err := svc.ConnectDomain(ctx, "salon.example.com/")
	if err != nil {
		t.Fatalf("ConnectDomain returned error: %v", err)
	}
	if domain != "https://salon.example.com" || f.connector.baseURL != domain {
		t.Fatalf("unexpected domain %q / base %q", domain, f.connector.baseURL)
	}

	f.backend.checkErr = &api.Error{Kind: api.KindNotFound, Status: 404}
	if _, err := svc.ConnectDomain(ctx, "salon.example.com"); !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}

	svc.UsePlainHTTP(true)
	f.backend.checkErr = nil
	domain, err = svc.ConnectDomain(ctx, "127.0.0.1:9000")
	if err != nil || domain != "http://127.0.0.1:9000" {
		t.Fatalf("expected plain http domain, got %q, %v", domain, err)
	}
}

func TestSessionService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := NewSessionService(f.store, f.connector).Login(ctx, LoginParams{Domain: "https://salon.example.com", Email: "  "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if vErr.FieldErrors["email"] == "" || vErr.FieldErrors["password"] == "" {
			t.Fatalf("expected email and password errors, got %v", vErr.FieldErrors)
		}
		if f.backend.count("Login") != 0 {
			t.Fatalf("expected no login request on invalid form")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.backend.loginErr = &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "Invalid credentials"}
		_, err := NewSessionService(f.store, f.connector).Login(ctx, LoginParams{Domain: "https://salon.example.com", Email: "emma@example.com", Password: "pw"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if f.store.IsOnboardingCompleted(ctx) {
			t.Fatalf("expected onboarding to remain incomplete")
		}
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.backend.loginResp = api.LoginResponse{
			Token:   "jwt-token",
			Staff:   staffWith("7", nil),
			License: api.License{Valid: true, Type: "basic"},
		}
		profile, err := NewSessionService(f.store, f.connector).Login(ctx, LoginParams{Domain: "https://salon.example.com", Email: " emma@example.com ", Password: "pw"})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if profile.ID != "7" {
			t.Fatalf("unexpected profile %+v", profile)
		}
		if f.connector.token != "jwt-token" || f.connector.baseURL != "https://salon.example.com" {
			t.Fatalf("expected connector configured, got %+v", f.connector)
		}
		if f.store.Token(ctx) != "jwt-token" || f.store.Domain(ctx) != "https://salon.example.com" {
			t.Fatalf("expected session persisted")
		}
		if !f.store.IsOnboardingCompleted(ctx) || f.store.License(ctx) == nil || f.store.StaffProfile(ctx) == nil {
			t.Fatalf("expected onboarding, licence and profile persisted")
		}
	})
}

func TestSessionService_LoginNormalizesDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		plainHTTP bool
		want      string
	}{
		{name: "bare host", input: "salon.example.com", want: "https://salon.example.com"},
		{name: "scheme and slash", input: " http://salon.example.com/ ", want: "https://salon.example.com"},
		{name: "localhost", input: "localhost:8080", want: "http://localhost:8080"},
		{name: "ip with plain http", input: "127.0.0.1:8080", plainHTTP: true, want: "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := newFixture(t)
			f.backend.loginResp = api.LoginResponse{Token: "jwt-token", Staff: staffWith("7", nil)}
			svc := NewSessionService(f.store, f.connector)
			svc.UsePlainHTTP(tt.plainHTTP)

			if _, err := svc.Login(ctx, LoginParams{Domain: tt.input, Email: "emma@example.com", Password: "pw"}); err != nil {
				t.Fatalf("Login returned error: %v", err)
			}
			if f.connector.baseURL != tt.want {
				t.Fatalf("expected base URL %q, got %q", tt.want, f.connector.baseURL)
			}
			if got := f.store.Domain(ctx); got != tt.want {
				t.Fatalf("expected stored domain %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("invalid domain", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := NewSessionService(f.store, f.connector).Login(context.Background(), LoginParams{Domain: "not a domain", Email: "emma@example.com", Password: "pw"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["domain"] == "" {
			t.Fatalf("expected a domain validation error, got %v", err)
		}
		if f.backend.count("Login") != 0 {
			t.Fatalf("expected no login request for an invalid domain")
		}
	})
}

func TestSessionService_LogoutKeepsPreferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, staffWith("7", nil))
	if err := f.store.SaveLicense(ctx, License{Valid: true}); err != nil {
		t.Fatalf("save licence: %v", err)
	}
	if err := f.store.SaveThemeMode(ctx, ThemeCustom); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	if err := f.store.SaveLanguage(ctx, "fr"); err != nil {
		t.Fatalf("save language: %v", err)
	}

	if err := NewSessionService(f.store, f.connector).Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	for _, key := range persistence.SessionKeys() {
		if _, err := f.kv.Get(ctx, key); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected %s cleared, got %v", key, err)
		}
	}
	if f.store.ThemeMode(ctx) != ThemeCustom {
		t.Fatalf("expected theme mode to survive logout")
	}
	if f.store.Language(ctx) != "fr" {
		t.Fatalf("expected language to survive logout")
	}
	if f.connector.resets != 1 {
		t.Fatalf("expected connector reset")
	}
}
