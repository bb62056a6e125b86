package fakeplugin

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// AppointmentHandler serves /appointments.
type AppointmentHandler struct {
	state     *state
	responder responder
	logger    *slog.Logger
}

func newAppointmentHandler(st *state, logger *slog.Logger) *AppointmentHandler {
	base := defaultLogger(logger)
	return &AppointmentHandler{state: st, responder: newResponder(base), logger: base}
}

func (h *AppointmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AppointmentHandler", operation, attrs...)
}

// List filters by staff_id and by starts_at within [start, end]. Members
// without can_view_all_appointments only see their own bookings.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	staffID := query.Get("staff_id")
	start := query.Get("start")
	end := query.Get("end")

	if !h.state.allowed(r.Context(), flagViewAllAppointments) {
		staffID, _ = StaffIDFromContext(r.Context())
	}

	h.state.mu.RLock()
	out := make([]api.Appointment, 0)
	for _, a := range h.state.appointments {
		if staffID != "" && a.StaffID.String() != staffID {
			continue
		}
		if start != "" && a.StartsAt < start {
			continue
		}
		if end != "" && a.StartsAt > end {
			continue
		}
		out = append(out, h.state.decorate(a))
	}
	h.state.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt != out[j].StartsAt {
			return out[i].StartsAt < out[j].StartsAt
		}
		return lessID(out[i].ID.String(), out[j].ID.String())
	})
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	h.state.mu.RLock()
	a, ok := h.state.appointments[id]
	if ok {
		a = h.state.decorate(a)
	}
	h.state.mu.RUnlock()
	if !ok || !h.visible(r.Context(), a) {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errAppointmentGone)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, a)
}

func (h *AppointmentHandler) visible(ctx context.Context, a api.Appointment) bool {
	if h.state.allowed(ctx, flagViewAllAppointments) {
		return true
	}
	self, _ := StaffIDFromContext(ctx)
	return a.StaffID.String() == self
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.state.allowed(r.Context(), flagCreateAppointments) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	var req api.CreateAppointmentInput
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if req.ServiceID <= 0 || req.StaffID <= 0 || strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerEmail) == "" || req.StartsAt == "" || req.EndsAt == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFields)
		return
	}

	status := req.Status
	if status == "" {
		status = string(agenda.StatusPending)
	}
	if _, ok := agenda.ParseStatus(status); !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStatus)
		return
	}

	serviceID := strconv.Itoa(req.ServiceID)
	staffID := strconv.Itoa(req.StaffID)

	h.state.mu.Lock()
	if _, ok := h.state.services[serviceID]; !ok {
		h.state.mu.Unlock()
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errServiceNotFound)
		return
	}
	if _, ok := h.state.members[staffID]; !ok {
		h.state.mu.Unlock()
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errStaffNotFound)
		return
	}
	id := h.state.allocateID()
	h.state.appointments[id] = api.Appointment{
		ID:            api.FlexString(id),
		ServiceID:     api.FlexString(serviceID),
		StaffID:       api.FlexString(staffID),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Status:        status,
		Notes:         req.Notes,
	}
	h.state.mu.Unlock()

	h.log(r.Context(), "Create", "appointment_id", id).InfoContext(r.Context(), "appointment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createdResponse{ID: id, Message: "Appointment created"})
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	if !h.state.allowed(r.Context(), flagEditAppointments) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	var req api.UpdateAppointmentInput
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if req.Status != nil {
		if _, ok := agenda.ParseStatus(*req.Status); !ok {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStatus)
			return
		}
	}

	h.state.mu.Lock()
	a, ok := h.state.appointments[id]
	if ok {
		if req.StartsAt != nil {
			a.StartsAt = *req.StartsAt
		}
		if req.EndsAt != nil {
			a.EndsAt = *req.EndsAt
		}
		if req.Status != nil {
			a.Status = *req.Status
		}
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		h.state.appointments[id] = a
	}
	h.state.mu.Unlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errAppointmentGone)
		return
	}

	h.log(r.Context(), "Update", "appointment_id", id).InfoContext(r.Context(), "appointment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Appointment updated"})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.state.allowed(r.Context(), flagDeleteAppointments) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	h.state.mu.Lock()
	_, ok := h.state.appointments[id]
	delete(h.state.appointments, id)
	h.state.mu.Unlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errAppointmentGone)
		return
	}

	h.log(r.Context(), "Delete", "appointment_id", id).InfoContext(r.Context(), "appointment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Appointment deleted"})
}
