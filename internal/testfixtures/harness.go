package testfixtures

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/fakeplugin"
	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/persistence/memory"
)

// Harness runs the fake plugin on a loopback listener next to an empty
// session store, for tests that exercise the real HTTP client.
type Harness struct {
	Plugin  *fakeplugin.Plugin
	Clock   *Clock
	Store   persistence.KVStore
	Session *api.Session

	url string
}

// HarnessOption configures NewHarness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	data   *fakeplugin.Dataset
	clock  *Clock
	store  persistence.KVStore
	logger *slog.Logger
}

// WithDataset seeds the plugin with data instead of the demo salon.
func WithDataset(data fakeplugin.Dataset) HarnessOption {
	return func(c *harnessConfig) { c.data = &data }
}

func WithHarnessClock(clock *Clock) HarnessOption {
	return func(c *harnessConfig) { c.clock = clock }
}

// WithStore replaces the in-memory session store.
func WithStore(store persistence.KVStore) HarnessOption {
	return func(c *harnessConfig) { c.store = store }
}

func WithHarnessLogger(logger *slog.Logger) HarnessOption {
	return func(c *harnessConfig) { c.logger = logger }
}

// NewHarness starts the plugin and registers its shutdown with tb.
func NewHarness(tb testing.TB, opts ...HarnessOption) *Harness {
	tb.Helper()

	cfg := harnessConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = NewClock(time.Time{})
	}
	if cfg.store == nil {
		cfg.store = memory.New()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	data := fakeplugin.DemoDataset(cfg.clock.Now(), SalonLocation())
	if cfg.data != nil {
		data = *cfg.data
	}

	plugin, err := fakeplugin.New(data,
		fakeplugin.WithClock(cfg.clock.Now),
		fakeplugin.WithLocation(SalonLocation()),
		fakeplugin.WithLogger(cfg.logger),
		fakeplugin.WithSecret([]byte("harness-secret")),
	)
	if err != nil {
		tb.Fatalf("failed to start fake plugin: %v", err)
	}

	srv := httptest.NewServer(plugin.Handler())
	tb.Cleanup(srv.Close)

	return &Harness{
		Plugin:  plugin,
		Clock:   cfg.clock,
		Store:   cfg.store,
		Session: api.NewSession(api.DefaultPathPrefix, api.WithLogger(cfg.logger)),
		url:     srv.URL,
	}
}

// Domain is the normalised domain of the running plugin.
func (h *Harness) Domain() string {
	return h.url
}

// Host is the domain as a user would type it.
func (h *Harness) Host() string {
	return strings.TrimPrefix(h.url, "http://")
}

// SeedSession writes the keys a completed login leaves behind for staffID,
// with a freshly issued token. Nothing is sent to the plugin.
func (h *Harness) SeedSession(tb testing.TB, staff api.Staff) string {
	tb.Helper()

	token, err := h.Plugin.IssueToken(staff.ID.String())
	if err != nil {
		tb.Fatalf("failed to issue token: %v", err)
	}
	profile, err := json.Marshal(staff)
	if err != nil {
		tb.Fatalf("failed to encode staff: %v", err)
	}

	ctx := context.Background()
	for key, value := range map[string]string{
		persistence.KeyDomain:              h.Domain(),
		persistence.KeyToken:               token,
		persistence.KeyOnboardingCompleted: "true",
		persistence.KeyStaffData:           string(profile),
	} {
		if err := h.Store.Set(ctx, key, value); err != nil {
			tb.Fatalf("failed to seed %s: %v", key, err)
		}
	}
	return token
}

// Client returns a client signed in as staffID.
func (h *Harness) Client(tb testing.TB, staffID string) *api.Client {
	tb.Helper()

	token, err := h.Plugin.IssueToken(staffID)
	if err != nil {
		tb.Fatalf("failed to issue token: %v", err)
	}
	return api.NewClient(api.Config{BaseURL: api.BaseURLForDomain(h.Domain(), ""), Token: token})
}
