package fakeplugin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// CatalogHandler serves services, staff, design settings and the booking
// helpers.
type CatalogHandler struct {
	state     *state
	calendar  agenda.Calendar
	responder responder
	logger    *slog.Logger
}

func newCatalogHandler(st *state, calendar agenda.Calendar, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{state: st, calendar: calendar, responder: newResponder(base), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	h.state.mu.RLock()
	out := make([]api.Service, 0, len(h.state.services))
	for _, id := range sortedKeys(h.state.services) {
		out = append(out, h.state.services[id])
	}
	h.state.mu.RUnlock()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, id string) {
	h.state.mu.RLock()
	svc, ok := h.state.services[id]
	h.state.mu.RUnlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errServiceNotFound)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, svc)
}

func (h *CatalogHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	if !h.state.allowed(r.Context(), flagViewAllStaff) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}
	h.state.mu.RLock()
	out := make([]api.Staff, 0, len(h.state.members))
	for _, id := range sortedKeys(h.state.members) {
		out = append(out, publicStaff(h.state.members[id].staff))
	}
	h.state.mu.RUnlock()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *CatalogHandler) GetStaff(w http.ResponseWriter, r *http.Request, id string) {
	self, _ := StaffIDFromContext(r.Context())
	if id != self && !h.state.allowed(r.Context(), flagViewAllStaff) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}
	h.state.mu.RLock()
	member, ok := h.state.members[id]
	var staff api.Staff
	if ok {
		staff = member.staff
	}
	h.state.mu.RUnlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errStaffNotFound)
		return
	}
	if id != self {
		staff = publicStaff(staff)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, staff)
}

func (h *CatalogHandler) UpdateStaff(w http.ResponseWriter, r *http.Request, id string) {
	self, _ := StaffIDFromContext(r.Context())
	if id != self && !h.state.allowed(r.Context(), flagViewAllStaff) {
		h.responder.writeError(r.Context(), w, http.StatusForbidden, errForbidden)
		return
	}

	var req api.UpdateStaffInput
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFields)
		return
	}

	h.state.mu.Lock()
	member, ok := h.state.members[id]
	var staff api.Staff
	if ok {
		member.staff.Name = strings.TrimSpace(req.Name)
		member.staff.Email = strings.TrimSpace(req.Email)
		member.staff.Phone = strings.TrimSpace(req.Phone)
		staff = member.staff
	}
	h.state.mu.Unlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errStaffNotFound)
		return
	}

	h.log(r.Context(), "UpdateStaff", "staff_id", id).InfoContext(r.Context(), "staff profile updated")
	if id != self {
		staff = publicStaff(staff)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, api.UpdateStaffResponse{Message: "Staff updated", Staff: staff})
}

func (h *CatalogHandler) DesignSettings(w http.ResponseWriter, r *http.Request) {
	h.state.mu.RLock()
	design := h.state.design
	h.state.mu.RUnlock()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, design)
}

type availabilityDTO struct {
	StaffID   string `json:"staff_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Availability reports Monday to Saturday, 09:00 to 18:00, for every staff
// member or the one named by staff_id.
func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	staffID := r.URL.Query().Get("staff_id")

	h.state.mu.RLock()
	ids := sortedKeys(h.state.members)
	h.state.mu.RUnlock()

	out := make([]availabilityDTO, 0)
	for _, id := range ids {
		if staffID != "" && id != staffID {
			continue
		}
		for day := 1; day <= 6; day++ {
			out = append(out, availabilityDTO{StaffID: id, DayOfWeek: day, StartTime: "09:00", EndTime: "18:00"})
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

type slotDTO struct {
	Time      string `json:"time"`
	StartsAt  string `json:"starts_at"`
	Available bool   `json:"available"`
}

// Slots lists the service-length slots of a day between 09:00 and 18:00,
// marking those that overlap an existing booking of the staff member.
func (h *CatalogHandler) Slots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	serviceID := query.Get("service_id")
	date := query.Get("date")
	staffID := query.Get("staff_id")
	if serviceID == "" || date == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFields)
		return
	}

	day, err := h.calendar.Parse(date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("Invalid date: %s", date))
		return
	}

	h.state.mu.RLock()
	svc, ok := h.state.services[serviceID]
	var booked [][2]time.Time
	for _, a := range h.state.appointments {
		if staffID != "" && a.StaffID.String() != staffID {
			continue
		}
		if a.Status == string(agenda.StatusCancelled) {
			continue
		}
		start, errS := h.calendar.Parse(a.StartsAt)
		end, errE := h.calendar.Parse(a.EndsAt)
		if errS == nil && errE == nil {
			booked = append(booked, [2]time.Time{start, end})
		}
	}
	h.state.mu.RUnlock()
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errServiceNotFound)
		return
	}

	minutes, err := strconv.Atoi(svc.DurationMinutes.String())
	if err != nil || minutes <= 0 {
		minutes = 60
	}
	length := time.Duration(minutes) * time.Minute

	open, _ := h.calendar.DayWindow(day)
	closing := open.Add(18 * time.Hour)
	out := make([]slotDTO, 0)
	for start := open.Add(9 * time.Hour); !start.Add(length).After(closing); start = start.Add(length) {
		end := start.Add(length)
		free := true
		for _, b := range booked {
			if start.Before(b[1]) && b[0].Before(end) {
				free = false
				break
			}
		}
		out = append(out, slotDTO{Time: start.Format("15:04"), StartsAt: h.calendar.Format(start), Available: free})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}
