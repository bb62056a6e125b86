package fakeplugin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/salon-admin/internal/api"
)

// AuthHandler serves /auth/login and /auth/validate.
type AuthHandler struct {
	state     *state
	tokens    *TokenIssuer
	responder responder
	logger    *slog.Logger
}

func newAuthHandler(st *state, tokens *TokenIssuer, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{state: st, tokens: tokens, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)
	if email == "" || req.Password == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFields)
		return
	}

	h.state.mu.RLock()
	member, ok := h.state.memberByEmail(email)
	var (
		staff api.Staff
		hash  string
	)
	if ok {
		staff, hash = member.staff, member.hash
	}
	license := h.state.license
	h.state.mu.RUnlock()

	if !ok {
		logger.WarnContext(r.Context(), "unknown login email")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errBadCredentials)
		return
	}
	if err := VerifyPassword(hash, req.Password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
			return
		}
		logger.WarnContext(r.Context(), "password mismatch")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errBadCredentials)
		return
	}

	token, err := h.tokens.Issue(staff.ID.String())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	logger.With("staff_id", staff.ID.String()).InfoContext(r.Context(), "staff authenticated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, api.LoginResponse{Token: token, Staff: staff, License: license})
}

// Validate returns the caller's current profile and licence.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	staffID, _ := StaffIDFromContext(r.Context())

	h.state.mu.RLock()
	member, ok := h.state.members[staffID]
	var staff api.Staff
	if ok {
		staff = member.staff
	}
	license := h.state.license
	h.state.mu.RUnlock()

	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errInvalidToken)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, api.ValidateResponse{Valid: true, Staff: staff, License: license})
}
