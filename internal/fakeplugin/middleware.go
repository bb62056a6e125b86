package fakeplugin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/salon-admin/internal/logging"
)

type contextKey string

const staffIDContextKey contextKey = "staff_id"

// ContextWithStaffID returns a derived context carrying the authenticated staff id.
func ContextWithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, staffIDContextKey, staffID)
}

// StaffIDFromContext extracts the authenticated staff id.
func StaffIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(staffIDContextKey).(string)
	return id, ok && id != ""
}

// TokenVerifier resolves a bearer token to a staff id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireBearer rejects requests without a valid bearer token, except for
// paths listed in public.
func RequireBearer(verifier TokenVerifier, logger *slog.Logger, public ...string) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range public {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := bearerToken(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingToken)
				return
			}

			staffID, err := verifier.Verify(token)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) {
					responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
					return
				}
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithStaffID(r.Context(), staffID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// RequestLogger attaches a request scoped logger and logs each request.
// The client's X-Request-ID is logged when present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_seq", id,
				"request_id", r.Header.Get("X-Request-ID"),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.DebugContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
