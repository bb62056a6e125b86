package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/fakeplugin"
	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/testfixtures"
)

type pluginApp struct {
	harness      *testfixtures.Harness
	store        *SessionStore
	sessions     *SessionService
	appointments *AppointmentService
}

func newPluginApp(t *testing.T, opts ...testfixtures.HarnessOption) pluginApp {
	t.Helper()

	h := testfixtures.NewHarness(t, opts...)
	store := NewSessionStore(h.Store)
	connector := NewSessionConnector(h.Session)
	sessions := NewSessionService(store, connector)
	sessions.UsePlainHTTP(true)
	perms := NewPermissionService(store, DefaultGatePolicy())
	appointments := NewAppointmentService(connector, store, perms, AppointmentSettings{
		Calendar: testfixtures.Calendar(),
		Now:      h.Clock.Now,
	})
	return pluginApp{harness: h, store: store, sessions: sessions, appointments: appointments}
}

func (a pluginApp) login(t *testing.T, email string) {
	t.Helper()

	if _, err := a.sessions.Login(context.Background(), LoginParams{
		Domain:   a.harness.Host(),
		Email:    email,
		Password: fakeplugin.DemoPassword,
	}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestPluginIntegration_LoginBootstrapAndDashboard(t *testing.T) {
	t.Parallel()

	app := newPluginApp(t)
	ctx := context.Background()

	domain, err := app.sessions.ConnectDomain(ctx, app.harness.Host())
	if err != nil {
		t.Fatalf("ConnectDomain returned error: %v", err)
	}
	if domain != app.harness.Domain() {
		t.Fatalf("expected %q, got %q", app.harness.Domain(), domain)
	}

	app.login(t, "emma@salon.test")

	result, err := app.sessions.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !result.Authenticated || !result.Refreshed || result.Profile == nil || result.Profile.Name != "Emma Wilson" {
		t.Fatalf("unexpected bootstrap result %+v", result)
	}

	dash, err := app.appointments.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if got := ids(dash.Upcoming); len(got) != 1 || got[0] != "2" || dash.ShowingTomorrow {
		t.Fatalf("expected only the 13:00 booking, got %v (tomorrow=%v)", got, dash.ShowingTomorrow)
	}
	if dash.StatsErr != nil {
		t.Fatalf("unexpected stats error: %v", dash.StatsErr)
	}
	stats := dash.Stats
	if stats.Month.Current != 4 || stats.Month.Previous != 1 || stats.Month.GrowthPercent != 300 {
		t.Fatalf("unexpected month stats %+v", stats.Month)
	}
	if !stats.CustomersKnown || stats.CustomerCount != 3 {
		t.Fatalf("expected 3 customers, got %d", stats.CustomerCount)
	}
	if math.Abs(stats.TodayRevenue-134.9) > 1e-9 {
		t.Fatalf("expected revenue 134.90, got %v", stats.TodayRevenue)
	}

	list, err := app.appointments.Upcoming(ctx, "")
	if err != nil {
		t.Fatalf("Upcoming returned error: %v", err)
	}
	if got := ids(list.Buckets.Today); len(got) != 3 || got[0] != "1" || got[1] != "3" || got[2] != "2" {
		t.Fatalf("unexpected today bucket %v", got)
	}
	if len(list.Buckets.Tomorrow) != 2 || len(list.Buckets.Future) != 1 {
		t.Fatalf("unexpected buckets %+v", list.Buckets)
	}
}

func TestPluginIntegration_ExpiredTokenForcesLogout(t *testing.T) {
	t.Parallel()

	app := newPluginApp(t)
	ctx := context.Background()
	app.login(t, "emma@salon.test")
	if err := app.store.SaveLanguage(ctx, "en"); err != nil {
		t.Fatalf("SaveLanguage returned error: %v", err)
	}

	app.harness.Clock.Advance(25 * time.Hour)

	result, err := app.sessions.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if result.Authenticated || !result.ForcedLogout {
		t.Fatalf("expected a forced logout, got %+v", result)
	}
	if _, err := app.harness.Store.Get(ctx, persistence.KeyToken); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected token to be cleared, got %v", err)
	}
	if app.store.Language(ctx) != "en" {
		t.Fatal("expected the language preference to survive")
	}
}

func TestPluginIntegration_GateBlocksBeforeRequest(t *testing.T) {
	t.Parallel()

	app := newPluginApp(t)
	ctx := context.Background()
	app.login(t, "james@salon.test")

	if err := app.appointments.Delete(ctx, "3"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := app.harness.Plugin.Requests("DELETE /appointments/3"); got != 0 {
		t.Fatalf("expected no delete request, got %d", got)
	}

	if _, err := app.appointments.Upcoming(ctx, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected restricted member to be refused the full list, got %v", err)
	}
}

func TestPluginIntegration_DashboardWithoutCustomerAccess(t *testing.T) {
	t.Parallel()

	data := fakeplugin.DemoDataset(testfixtures.ReferenceTime(), testfixtures.SalonLocation())
	perms := *data.Members[1].Staff.Permissions
	perms.CanViewCustomers = api.Bool(false)
	data.Members[1].Staff.Permissions = &perms

	app := newPluginApp(t, testfixtures.WithDataset(data))
	app.login(t, "james@salon.test")

	dash, err := app.appointments.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if got := app.harness.Plugin.Requests("GET /customers"); got != 0 {
		t.Fatalf("expected no customer request, got %d", got)
	}
	if dash.StatsErr != nil || dash.Stats.CustomersKnown {
		t.Fatalf("expected month stats without a customer count, got %+v (err %v)", dash.Stats, dash.StatsErr)
	}
	if dash.Stats.Month != (MonthlyStats{Current: 2, Previous: 1, GrowthPercent: 100}) {
		t.Fatalf("unexpected month stats %+v", dash.Stats.Month)
	}
}

func TestPluginIntegration_RejectedLogin(t *testing.T) {
	t.Parallel()

	app := newPluginApp(t)
	_, err := app.sessions.Login(context.Background(), LoginParams{
		Domain:   app.harness.Host(),
		Email:    "emma@salon.test",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if app.store.Token(context.Background()) != "" {
		t.Fatal("expected no token after a rejected login")
	}
}
