package fakeplugin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/salon-admin/internal/api"
)

// CustomerHandler serves /customers.
type CustomerHandler struct {
	state     *state
	responder responder
	logger    *slog.Logger
	now       func() string
}

func newCustomerHandler(st *state, now func() string, logger *slog.Logger) *CustomerHandler {
	base := defaultLogger(logger)
	return &CustomerHandler{state: st, responder: newResponder(base), logger: base, now: now}
}

func (h *CustomerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CustomerHandler", operation, attrs...)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.state.allowed(r.Context(), flagViewCustomers) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}
	h.state.mu.RLock()
	out := make([]api.Customer, 0, len(h.state.customers))
	for _, id := range sortedKeys(h.state.customers) {
		out = append(out, h.state.customers[id].customer)
	}
	h.state.mu.RUnlock()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	if !h.state.allowed(r.Context(), flagViewCustomers) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}
	h.state.mu.RLock()
	rec, ok := h.state.customers[id]
	var c api.Customer
	if ok {
		c = rec.customer
	}
	h.state.mu.RUnlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errCustomerNotFound)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.state.allowed(r.Context(), flagEditCustomers) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	var req api.CreateCustomerInput
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" ||
		email == "" || strings.TrimSpace(req.Phone) == "" || req.Password == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFields)
		return
	}

	hash, err := HashPassword(req.Password, h.state.params)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	h.state.mu.Lock()
	for _, rec := range h.state.customers {
		if strings.EqualFold(rec.customer.Email, email) {
			h.state.mu.Unlock()
			h.responder.writeError(r.Context(), w, http.StatusConflict, errEmailTaken)
			return
		}
	}
	id := h.state.allocateID()
	h.state.customers[id] = &customerRecord{
		customer: api.Customer{
			ID:        api.FlexString(id),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Email:     email,
			Phone:     strings.TrimSpace(req.Phone),
			CreatedAt: h.now(),
		},
		hash: hash,
	}
	h.state.mu.Unlock()

	h.log(r.Context(), "Create", "customer_id", id).InfoContext(r.Context(), "customer created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createdResponse{ID: id, Message: "Customer created"})
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	if !h.state.allowed(r.Context(), flagEditCustomers) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	var req api.UpdateCustomerInput
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var hash string
	if req.Password != nil && *req.Password != "" {
		var err error
		if hash, err = HashPassword(*req.Password, h.state.params); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
			return
		}
	}

	h.state.mu.Lock()
	rec, ok := h.state.customers[id]
	if ok {
		if req.FirstName != nil {
			rec.customer.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			rec.customer.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Phone != nil {
			rec.customer.Phone = strings.TrimSpace(*req.Phone)
		}
		if hash != "" {
			rec.hash = hash
		}
	}
	h.state.mu.Unlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errCustomerNotFound)
		return
	}

	h.log(r.Context(), "Update", "customer_id", id).InfoContext(r.Context(), "customer updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Customer updated"})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.state.allowed(r.Context(), flagEditCustomers) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	h.state.mu.Lock()
	_, ok := h.state.customers[id]
	delete(h.state.customers, id)
	h.state.mu.Unlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errCustomerNotFound)
		return
	}

	h.log(r.Context(), "Delete", "customer_id", id).InfoContext(r.Context(), "customer deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Customer deleted"})
}
