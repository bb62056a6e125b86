package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/application"
	"github.com/example/salon-admin/internal/config"
	"github.com/example/salon-admin/internal/fakeplugin"
	"github.com/example/salon-admin/internal/logging"
	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/persistence/memory"
	"github.com/example/salon-admin/internal/persistence/sqlite"
)

const (
	exitOK               = 0
	exitFailure          = 1
	exitNotAuthenticated = 2
)

// demoEmail is the member a --demo run signs in as.
const demoEmail = "emma@salon.test"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app holds the wired services of one invocation.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	env          func(string) string
	stdin        io.Reader
	out          io.Writer
	store        *application.SessionStore
	sessions     *application.SessionService
	permissions  *application.PermissionService
	appointments *application.AppointmentService
	customers    *application.CustomerService
	staff        *application.StaffService
	catalog      *application.CatalogService
	theme        *application.ThemeService
	language     *application.LanguageService
}

func run(ctx context.Context, args []string, env func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("appointctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	config.RegisterFlags(flags)
	flags.Usage = func() { usage(stderr, flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	logger := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	ctx = logging.ContextWithLogger(ctx, logger)

	rest := flags.Args()
	if len(rest) == 0 {
		usage(stderr, flags)
		return exitFailure
	}
	cmd, ok := lookupCommand(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr, flags)
		return exitFailure
	}

	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open state", "error", err)
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer closeStore()

	a := wire(cfg, kv, logger)
	a.env, a.stdin, a.out = env, stdin, stdout

	if cfg.Demo {
		shutdown, err := a.startDemo(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		defer shutdown()
	}

	boot, err := a.sessions.Bootstrap(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if boot.ForcedLogout {
		fmt.Fprintln(stderr, "Your session has expired. Please sign in again.")
	}
	if boot.RefreshErr != nil {
		logger.WarnContext(ctx, "session refresh failed, using cached profile", "error", boot.RefreshErr)
	}
	if cmd.needsSession && !boot.Authenticated {
		fmt.Fprintln(stderr, "Not signed in. Run `appointctl connect <domain>` and `appointctl login <email>` first.")
		return exitNotAuthenticated
	}

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		fmt.Fprintln(stderr, describeError(err))
		if errors.Is(err, application.ErrNotAuthenticated) {
			return exitNotAuthenticated
		}
		return exitFailure
	}
	return exitOK
}

func wire(cfg config.Config, kv persistence.KVStore, logger *slog.Logger) *app {
	session := api.NewSession(cfg.APIPath, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(logger))
	connector := application.NewSessionConnector(session)
	store := application.NewSessionStoreWithLogger(kv, logger)
	calendar := agenda.NewCalendar(cfg.Location)

	policy := application.DefaultGatePolicy()
	if !cfg.DeleteFailClosed {
		policy = application.PermissiveGatePolicy()
	}
	perms := application.NewPermissionService(store, policy)
	appointments := application.NewAppointmentServiceWithLogger(connector, store, perms, application.AppointmentSettings{
		Calendar:          calendar,
		UpcomingDays:      cfg.UpcomingDays,
		LookupConcurrency: cfg.LookupConcurrency,
	}, logger)

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		sessions:     application.NewSessionServiceWithLogger(store, connector, logger),
		permissions:  perms,
		appointments: appointments,
		customers:    application.NewCustomerServiceWithLogger(connector, perms, calendar, time.Now, logger),
		staff:        application.NewStaffServiceWithLogger(connector, store, perms, logger),
		catalog:      application.NewCatalogServiceWithLogger(connector, perms, calendar, time.Now, logger),
		theme:        application.NewThemeServiceWithLogger(store, connector, logger),
		language:     application.NewLanguageServiceWithLogger(store, logger),
	}
}

// openStore returns the session store and its release function. Demo and
// ephemeral runs keep state in memory.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.KVStore, func(), error) {
	if cfg.Ephemeral || cfg.Demo {
		return memory.New(), func() {}, nil
	}

	if dir := filepath.Dir(cfg.StateDSN); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	storage, err := sqlite.Open(cfg.StateDSN, sqlite.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("migrate state: %w", err)
	}
	release := func() {
		if err := storage.Close(); err != nil {
			logger.Error("failed to close state", "error", err)
		}
	}
	return storage, release, nil
}

// startDemo serves the demo salon on a loopback port and signs in to it.
func (a *app) startDemo(ctx context.Context) (func(), error) {
	plugin, err := fakeplugin.New(
		fakeplugin.DemoDataset(time.Now(), a.cfg.Location),
		fakeplugin.WithLocation(a.cfg.Location),
		fakeplugin.WithLogger(a.logger),
		fakeplugin.WithPathPrefix(a.cfg.APIPath),
	)
	if err != nil {
		return nil, err
	}
	srv, err := plugin.Listen("127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			a.logger.Error("failed to stop demo server", "error", err)
		}
	}

	a.sessions.UsePlainHTTP(true)
	if _, err := a.sessions.Login(ctx, application.LoginParams{
		Domain:   srv.Host(),
		Email:    demoEmail,
		Password: fakeplugin.DemoPassword,
	}); err != nil {
		shutdown()
		return nil, fmt.Errorf("demo sign in: %w", err)
	}
	a.logger.InfoContext(ctx, "demo salon running", "url", srv.URL, "email", demoEmail)
	return shutdown, nil
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: appointctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-22s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flags.FlagUsages())
}
