package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/salon-admin/internal/api"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                  nil,
		"permission_denied": fmt.Errorf("wrap: %w", ErrPermissionDenied),
		"stale":             ErrStaleResult,
		"validation":        &ValidationError{FieldErrors: map[string]string{"x": "y"}},
		"api_unauthorized":  &api.Error{Kind: api.KindUnauthorized, Status: 401},
		"canceled":          context.Canceled,
		"unexpected":        fmt.Errorf("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
