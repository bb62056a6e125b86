package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// CatalogService exposes the salon's services.
type CatalogService struct {
	connector   Connector
	permissions *PermissionService
	calendar    agenda.Calendar
	now         func() time.Time
	logger      *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(connector Connector, permissions *PermissionService, calendar agenda.Calendar, now func() time.Time) *CatalogService {
	return NewCatalogServiceWithLogger(connector, permissions, calendar, now, nil)
}

// NewCatalogServiceWithLogger allows injecting a custom logger for catalog operations.
func NewCatalogServiceWithLogger(connector Connector, permissions *PermissionService, calendar agenda.Calendar, now func() time.Time, logger *slog.Logger) *CatalogService {
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		connector:   connector,
		permissions: permissions,
		calendar:    calendar,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Services lists the catalogue, optionally only the bookable entries.
func (s *CatalogService) Services(ctx context.Context, activeOnly bool) (services []api.Service, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "CatalogService", "Services", "active_only", activeOnly)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list services", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	services, err = s.connector.Backend().Services(ctx)
	if err != nil {
		return
	}
	if activeOnly {
		services = activeServices(services)
	}
	return
}

// Detail loads a service and the appointments booked for it.
func (s *CatalogService) Detail(ctx context.Context, id string) (detail ServiceDetail, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "CatalogService", "Detail", "service_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load service", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	backend := s.connector.Backend()
	svc, fetchErr := backend.Service(ctx, id)
	if fetchErr != nil {
		err = notFoundOr(fetchErr)
		return
	}
	detail.Service = svc

	if !s.permissions.Current(ctx).Appointments.CanView {
		detail.HistoryHidden = true
		return
	}

	appts, err := backend.Appointments(ctx, api.AppointmentFilter{})
	if err != nil {
		return
	}
	matched := make([]api.Appointment, 0)
	for _, appt := range appts {
		if appt.ServiceID.String() == svc.ID.String() {
			matched = append(matched, appt)
		}
	}
	detail.History = buildHistory(s.calendar, matched, s.now())
	return
}
