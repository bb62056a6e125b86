package fakeplugin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// Plugin is an in-process booking backend speaking the plugin's REST
// contract. It backs the demo mode and integration tests.
type Plugin struct {
	prefix  string
	tokens  *TokenIssuer
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	requests map[string]int
	total    int
	failures map[string][]injectedFailure
}

type injectedFailure struct {
	status  int
	message string
}

type settings struct {
	logger   *slog.Logger
	now      func() time.Time
	location *time.Location
	secret   []byte
	tokenTTL time.Duration
	prefix   string
	params   Argon2idParams
}

// Option customises a Plugin.
type Option func(*settings)

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithClock sets the clock used for token expiry and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLocation sets the zone timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) { s.location = loc }
}

// WithSecret fixes the token signing key. A random key is used otherwise.
func WithSecret(secret []byte) Option {
	return func(s *settings) { s.secret = append([]byte(nil), secret...) }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *settings) { s.tokenTTL = ttl }
}

func WithPathPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

func WithPasswordParams(params Argon2idParams) Option {
	return func(s *settings) { s.params = params }
}

// New seeds a plugin with data.
func New(data Dataset, opts ...Option) (*Plugin, error) {
	cfg := settings{
		now:    time.Now,
		prefix: api.DefaultPathPrefix,
		params: FastArgon2idParams,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger := defaultLogger(cfg.logger)
	if len(cfg.secret) == 0 {
		cfg.secret = make([]byte, 32)
		if _, err := rand.Read(cfg.secret); err != nil {
			return nil, fmt.Errorf("fakeplugin: generate secret: %w", err)
		}
	}

	st, err := newState(data, cfg.params)
	if err != nil {
		return nil, fmt.Errorf("fakeplugin: seed state: %w", err)
	}

	calendar := agenda.NewCalendar(cfg.location)
	p := &Plugin{
		prefix:   strings.TrimRight(cfg.prefix, "/"),
		tokens:   NewTokenIssuer(cfg.secret, cfg.tokenTTL, cfg.now),
		logger:   logger,
		requests: make(map[string]int),
		failures: make(map[string][]injectedFailure),
	}

	router := NewRouter(RouterConfig{
		Prefix:       p.prefix,
		Auth:         newAuthHandler(st, p.tokens, logger),
		Catalog:      newCatalogHandler(st, calendar, logger),
		Appointments: newAppointmentHandler(st, logger),
		Customers:    newCustomerHandler(st, func() string { return calendar.Format(cfg.now()) }, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			p.recordRequests,
			RequireBearer(p.tokens, logger, p.publicPaths()...),
		},
	})
	p.handler = router
	return p, nil
}

// Handler returns the plugin's HTTP handler.
func (p *Plugin) Handler() http.Handler {
	return p.handler
}

// IssueToken signs a token for staffID without a login round trip.
func (p *Plugin) IssueToken(staffID string) (string, error) {
	return p.tokens.Issue(staffID)
}

// Requests returns how often route was called. route is a method and a
// path relative to the prefix, such as "GET /appointments".
func (p *Plugin) Requests(route string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[route]
}

// TotalRequests returns the number of requests served.
func (p *Plugin) TotalRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// FailNext makes the next call to route answer with status and message.
// Repeated calls queue further failures.
func (p *Plugin) FailNext(route string, status int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[route] = append(p.failures[route], injectedFailure{status: status, message: message})
}

func (p *Plugin) recordRequests(next http.Handler) http.Handler {
	responder := newResponder(p.logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimPrefix(r.URL.Path, p.prefix)

		p.mu.Lock()
		p.requests[route]++
		p.total++
		var failure *injectedFailure
		if queued := p.failures[route]; len(queued) > 0 {
			failure = &queued[0]
			p.failures[route] = queued[1:]
		}
		p.mu.Unlock()

		if failure != nil {
			responder.writeError(r.Context(), w, failure.status, errors.New(failure.message))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Server is a running plugin bound to a local port.
type Server struct {
	URL    string
	server *http.Server
}

// Listen serves the plugin on addr, for example "127.0.0.1:0".
func (p *Plugin) Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("fakeplugin: listen: %w", err)
	}
	srv := &http.Server{
		Handler:           p.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("demo server stopped", "error", err)
		}
	}()
	return &Server{URL: "http://" + ln.Addr().String(), server: srv}, nil
}

// Host returns the server's host:port, the form a user types as domain.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Close shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// publicPaths are served without a token, as the booking widget and the
// connection probe read them anonymously.
func (p *Plugin) publicPaths() []string {
	return []string{p.prefix + "/auth/login", p.prefix + "/services", p.prefix + "/design-settings"}
}
