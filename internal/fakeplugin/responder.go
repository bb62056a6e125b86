package fakeplugin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/salon-admin/internal/logging"
)

var (
	errBadRequestBody   = errors.New("Invalid request body")
	errMissingFields    = errors.New("Missing required fields")
	errInvalidToken     = errors.New("Invalid or expired token")
	errMissingToken     = errors.New("Authorization header missing")
	errForbidden        = errors.New("Insufficient permissions")
	errBadCredentials   = errors.New("Invalid credentials")
	errServiceNotFound  = errors.New("Service not found")
	errStaffNotFound    = errors.New("Staff not found")
	errAppointmentGone  = errors.New("Appointment not found")
	errCustomerNotFound = errors.New("Customer not found")
	errInvalidStatus    = errors.New("Invalid status")
	errEmailTaken       = errors.New("Email already registered")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errBadRequestBody
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
