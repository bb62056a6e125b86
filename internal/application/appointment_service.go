package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

const (
	defaultUpcomingDays      = 30
	defaultLookupConcurrency = 4
	defaultServiceMinutes    = 60
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AppointmentSettings tunes AppointmentService. Zero values select defaults.
type AppointmentSettings struct {
	Calendar agenda.Calendar
	// UpcomingDays is the length of the forward window of Upcoming.
	UpcomingDays int
	// LookupConcurrency bounds the per-service price fallback requests.
	LookupConcurrency int
	// PriceTTL is how long resolved service prices are reused.
	PriceTTL time.Duration
	Now      func() time.Time
}

// AppointmentService loads, groups and edits appointments.
type AppointmentService struct {
	connector   Connector
	store       *SessionStore
	permissions *PermissionService
	calendar    agenda.Calendar
	upcomingFor int
	concurrency int
	prices      *priceCache
	now         func() time.Time
	logger      *slog.Logger

	dashboardGuard ReloadGuard
	upcomingGuard  ReloadGuard
}

// NewAppointmentService constructs an appointment service with the provided dependencies.
func NewAppointmentService(connector Connector, store *SessionStore, permissions *PermissionService, settings AppointmentSettings) *AppointmentService {
	return NewAppointmentServiceWithLogger(connector, store, permissions, settings, nil)
}

// NewAppointmentServiceWithLogger constructs an appointment service with a specified logger.
func NewAppointmentServiceWithLogger(connector Connector, store *SessionStore, permissions *PermissionService, settings AppointmentSettings, logger *slog.Logger) *AppointmentService {
	if settings.UpcomingDays <= 0 {
		settings.UpcomingDays = defaultUpcomingDays
	}
	if settings.LookupConcurrency <= 0 {
		settings.LookupConcurrency = defaultLookupConcurrency
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &AppointmentService{
		connector:   connector,
		store:       store,
		permissions: permissions,
		calendar:    settings.Calendar,
		upcomingFor: settings.UpcomingDays,
		concurrency: settings.LookupConcurrency,
		prices:      newPriceCache(settings.PriceTTL, 0, settings.Now),
		now:         settings.Now,
		logger:      defaultLogger(logger),
	}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// Dashboard loads the signed-in staff member's remaining appointments for
// today, falling back to tomorrow when none are left, plus the stats block.
// A failure of the stats block is reported in Dashboard.StatsErr and does
// not fail the call.
func (s *AppointmentService) Dashboard(ctx context.Context) (dash Dashboard, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Dashboard")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load dashboard", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "dashboard loaded",
			"upcoming", len(dash.Upcoming),
			"showing_tomorrow", dash.ShowingTomorrow,
		)
	}()

	staffID, err := s.currentStaffID(ctx)
	if err != nil {
		return
	}

	loadCtx, ticket := s.dashboardGuard.Begin(ctx)
	defer ticket.Done()

	backend := s.connector.Backend()
	now := s.now()

	todayAll, err := s.dayAppointments(loadCtx, backend, staffID, now)
	if err != nil {
		err = s.staleOr(ticket, err)
		return
	}

	upcoming := s.calendar.StartingAfter(s.calendar.OnDay(todayAll, now), now)
	showingTomorrow := false
	if len(upcoming) == 0 {
		tomorrow := s.calendar.NextDay(now)
		next, tomorrowErr := s.dayAppointments(loadCtx, backend, staffID, tomorrow)
		if tomorrowErr != nil {
			err = s.staleOr(ticket, tomorrowErr)
			return
		}
		upcoming = s.calendar.OnDay(next, tomorrow)
		s.calendar.SortByStart(upcoming)
		showingTomorrow = len(upcoming) > 0
	}

	stats, statsErr := s.stats(loadCtx, backend, staffID, now, todayAll)
	if statsErr != nil {
		logger.WarnContext(ctx, "dashboard stats unavailable", "error", statsErr, "error_kind", ErrorKind(statsErr))
	}

	err = ticket.Commit(func() {
		dash = Dashboard{
			Upcoming:        upcoming,
			ShowingTomorrow: showingTomorrow,
			Stats:           stats,
			StatsErr:        statsErr,
			GeneratedAt:     now,
		}
	})
	return
}

// dayAppointments fetches staffID's appointments for the calendar day of day.
func (s *AppointmentService) dayAppointments(ctx context.Context, backend Backend, staffID string, day time.Time) ([]api.Appointment, error) {
	start, end := s.calendar.DayWindow(day)
	return backend.Appointments(ctx, api.AppointmentFilter{
		StaffID: staffID,
		Start:   s.calendar.Format(start),
		End:     s.calendar.Format(end),
	})
}

// stats builds the summary block. The customer count is loaded only when
// the member may view customers, and its failure leaves the other figures
// intact. A failed month count is returned after revenue has been filled in.
func (s *AppointmentService) stats(ctx context.Context, backend Backend, staffID string, now time.Time, today []api.Appointment) (DashboardStats, error) {
	var (
		stats    DashboardStats
		current  []api.Appointment
		previous []api.Appointment
		side     errgroup.Group
	)

	if s.permissions.Current(ctx).Customers.CanView {
		side.Go(func() error {
			customers, err := backend.Customers(ctx)
			if err != nil {
				s.loggerWith(ctx, "stats").WarnContext(ctx, "customer count unavailable", "error", err, "error_kind", ErrorKind(err))
				return nil
			}
			stats.CustomerCount, stats.CustomersKnown = len(customers), true
			return nil
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start, end := s.calendar.MonthWindow(now)
		var err error
		current, err = backend.Appointments(gctx, api.AppointmentFilter{StaffID: staffID, Start: s.calendar.Format(start), End: s.calendar.Format(end)})
		return err
	})
	g.Go(func() error {
		start, end := s.calendar.PreviousMonthWindow(now)
		var err error
		previous, err = backend.Appointments(gctx, api.AppointmentFilter{StaffID: staffID, Start: s.calendar.Format(start), End: s.calendar.Format(end)})
		return err
	})
	monthErr := g.Wait()
	_ = side.Wait()

	if monthErr == nil {
		stats.Month = MonthlyStats{
			Current:       len(current),
			Previous:      len(previous),
			GrowthPercent: agenda.GrowthPercent(len(current), len(previous)),
		}
	}

	todays := s.calendar.OnDay(today, now)
	revenue := agenda.SumRevenue(todays, s.resolvePrices(ctx, backend, agenda.ServiceIDs(todays)))
	stats.TodayRevenue = revenue.Total
	stats.SkippedAppointments = revenue.Skipped
	return stats, monthErr
}

// resolvePrices maps service ids to prices. Cached prices are reused, the
// rest come from one catalogue listing, and ids the listing lacks are
// fetched one by one. Failed lookups are logged and left out.
func (s *AppointmentService) resolvePrices(ctx context.Context, backend Backend, ids []string) map[string]api.FlexString {
	logger := s.loggerWith(ctx, "resolvePrices")
	prices := make(map[string]api.FlexString, len(ids))

	var missing []string
	for _, id := range ids {
		if price, ok := s.prices.Get(id); ok {
			prices[id] = price
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return prices
	}

	catalogue, err := backend.Services(ctx)
	if err != nil {
		logger.WarnContext(ctx, "service listing failed, falling back to single lookups", "error", err)
	}
	listed := make(map[string]api.FlexString, len(catalogue))
	for _, svc := range catalogue {
		listed[svc.ID.String()] = svc.Price
		s.prices.Store(svc.ID.String(), svc.Price)
	}

	var fallback []string
	for _, id := range missing {
		if price, ok := listed[id]; ok {
			prices[id] = price
			continue
		}
		fallback = append(fallback, id)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, id := range fallback {
		g.Go(func() error {
			svc, err := backend.Service(ctx, id)
			if err != nil {
				logger.WarnContext(ctx, "service price lookup failed", "service_id", id, "error", err)
				return nil
			}
			s.prices.Store(id, svc.Price)
			mu.Lock()
			prices[id] = svc.Price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return prices
}

// Upcoming loads the forward window starting today and partitions it into
// today, tomorrow and later. An empty staffID loads every staff member.
func (s *AppointmentService) Upcoming(ctx context.Context, staffID string) (list AppointmentList, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Upcoming", "staff_id", staffID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load appointments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointments loaded", "count", list.Buckets.Len())
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionView); err != nil {
		return
	}

	loadCtx, ticket := s.upcomingGuard.Begin(ctx)
	defer ticket.Done()

	now := s.now()
	windowStart, _ := s.calendar.DayWindow(now)
	_, windowEnd := s.calendar.DayWindow(windowStart.AddDate(0, 0, s.upcomingFor))

	appts, fetchErr := s.connector.Backend().Appointments(loadCtx, api.AppointmentFilter{
		StaffID: staffID,
		Start:   s.calendar.Format(windowStart),
		End:     s.calendar.Format(windowEnd),
	})
	if fetchErr != nil {
		err = s.staleOr(ticket, fetchErr)
		return
	}

	buckets := s.calendar.Partition(appts, now)
	err = ticket.Commit(func() {
		list = AppointmentList{Buckets: buckets, WindowStart: windowStart, WindowEnd: windowEnd}
	})
	return
}

// Detail loads one appointment with its presentation fields.
func (s *AppointmentService) Detail(ctx context.Context, id string) (detail AppointmentDetail, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Detail", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load appointment", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionView); err != nil {
		return
	}

	appt, fetchErr := s.connector.Backend().Appointment(ctx, id)
	if fetchErr != nil {
		err = notFoundOr(fetchErr)
		return
	}

	label, color := agenda.Describe(appt.Status, resolveLanguage(s.store.Language(ctx), ""))
	minutes, _ := s.calendar.DurationMinutes(appt)
	detail = AppointmentDetail{
		Appointment:     appt,
		StatusLabel:     label,
		StatusColor:     color,
		DurationMinutes: minutes,
		Capabilities:    s.permissions.Current(ctx).Appointments,
	}
	return
}

// UpdateStatus moves an appointment to one of the known statuses.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id, status string) (err error) {
	if s == nil {
		return fmt.Errorf("AppointmentService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateStatus", "appointment_id", id, "status", status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status updated")
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionEdit); err != nil {
		return
	}

	parsed, ok := agenda.ParseStatus(status)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("status", "must be one of "+statusList())
		return vErr
	}

	value := string(parsed)
	_, err = s.connector.Backend().UpdateAppointment(ctx, id, api.UpdateAppointmentInput{Status: &value})
	return notFoundOr(err)
}

// Update applies a partial change. Only the fields set in params are sent.
func (s *AppointmentService) Update(ctx context.Context, id string, params UpdateAppointmentParams) (err error) {
	if s == nil {
		return fmt.Errorf("AppointmentService is nil")
	}

	logger := s.loggerWith(ctx, "Update", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment updated")
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionEdit); err != nil {
		return
	}

	vErr := &ValidationError{}
	var input api.UpdateAppointmentInput
	if params.StartsAt != nil {
		v := s.calendar.Format(*params.StartsAt)
		input.StartsAt = &v
	}
	if params.EndsAt != nil {
		v := s.calendar.Format(*params.EndsAt)
		input.EndsAt = &v
	}
	if params.StartsAt != nil && params.EndsAt != nil && !params.EndsAt.After(*params.StartsAt) {
		vErr.add("ends_at", "must be after the start")
	}
	if params.Status != nil {
		parsed, ok := agenda.ParseStatus(*params.Status)
		if !ok {
			vErr.add("status", "must be one of "+statusList())
		} else {
			v := string(parsed)
			input.Status = &v
		}
	}
	if params.Notes != nil {
		v := *params.Notes
		input.Notes = &v
	}
	if vErr.HasErrors() {
		return vErr
	}

	_, err = s.connector.Backend().UpdateAppointment(ctx, id, input)
	return notFoundOr(err)
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("AppointmentService is nil")
	}

	logger := s.loggerWith(ctx, "Delete", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment deleted")
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionDelete); err != nil {
		return
	}

	_, err = s.connector.Backend().DeleteAppointment(ctx, id)
	return notFoundOr(err)
}

// FormData loads the pickers of the create form. Services and staff are
// fetched concurrently; only active services are offered.
func (s *AppointmentService) FormData(ctx context.Context) (data AppointmentFormData, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "FormData")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load form data", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionCreate); err != nil {
		return
	}

	backend := s.connector.Backend()
	var (
		services []api.Service
		staff    []api.Staff
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = backend.Services(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		staff, err = backend.Staff(gctx)
		return err
	})
	if err = g.Wait(); err != nil {
		return
	}

	data.Services = activeServices(services)
	data.Staff = staff
	if profile := s.store.StaffProfile(ctx); profile != nil {
		data.DefaultStaffID = profile.ID.String()
	}
	return
}

// Create books a new appointment and returns its id. The end time is the
// start plus the service duration.
func (s *AppointmentService) Create(ctx context.Context, params CreateAppointmentParams) (id string, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create", "service_id", params.ServiceID, "staff_id", params.StaffID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment created", "appointment_id", id)
	}()

	if err = s.permissions.Require(ctx, EntityAppointments, ActionCreate); err != nil {
		return
	}

	input, vErr := s.validateCreate(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	backend := s.connector.Backend()
	svc, svcErr := backend.Service(ctx, params.ServiceID)
	if svcErr != nil {
		err = notFoundOr(svcErr)
		return
	}
	minutes, convErr := svc.DurationMinutes.Int()
	if convErr != nil || minutes <= 0 {
		minutes = defaultServiceMinutes
	}

	y, m, d := params.Date.Date()
	start := time.Date(y, m, d, params.Hour, params.Minute, 0, 0, s.calendar.Location())
	input.StartsAt = s.calendar.Format(start)
	input.EndsAt = s.calendar.Format(start.Add(time.Duration(minutes) * time.Minute))

	resp, createErr := backend.CreateAppointment(ctx, input)
	if createErr != nil {
		err = createErr
		return
	}
	id = resp.ID.String()
	return
}

func (s *AppointmentService) validateCreate(params CreateAppointmentParams) (api.CreateAppointmentInput, *ValidationError) {
	vErr := &ValidationError{}
	input := api.CreateAppointmentInput{
		CustomerName:  strings.TrimSpace(params.CustomerName),
		CustomerEmail: strings.TrimSpace(params.CustomerEmail),
		CustomerPhone: strings.TrimSpace(params.CustomerPhone),
		Notes:         strings.TrimSpace(params.Notes),
		Status:        string(agenda.StatusPending),
	}

	if input.CustomerName == "" {
		vErr.add("customer_name", "is required")
	}
	switch {
	case input.CustomerEmail == "":
		vErr.add("customer_email", "is required")
	case !emailPattern.MatchString(input.CustomerEmail):
		vErr.add("customer_email", "is not a valid email address")
	}

	if params.ServiceID == "" {
		vErr.add("service_id", "is required")
	} else if n, err := strconv.Atoi(params.ServiceID); err != nil {
		vErr.add("service_id", "must be numeric")
	} else {
		input.ServiceID = n
	}
	if params.StaffID == "" {
		vErr.add("staff_id", "is required")
	} else if n, err := strconv.Atoi(params.StaffID); err != nil {
		vErr.add("staff_id", "must be numeric")
	} else {
		input.StaffID = n
	}

	if params.Date.IsZero() {
		vErr.add("date", "is required")
	}
	if params.Hour < 0 || params.Hour > 23 {
		vErr.add("hour", "must be between 0 and 23")
	}
	if params.Minute < 0 || params.Minute > 59 {
		vErr.add("minute", "must be between 0 and 59")
	}

	if params.Status != "" {
		parsed, ok := agenda.ParseStatus(params.Status)
		if !ok {
			vErr.add("status", "must be one of "+statusList())
		} else {
			input.Status = string(parsed)
		}
	}
	return input, vErr
}

func (s *AppointmentService) currentStaffID(ctx context.Context) (string, error) {
	profile := s.store.StaffProfile(ctx)
	if profile == nil || profile.ID.String() == "" {
		return "", ErrNoStaffProfile
	}
	return profile.ID.String(), nil
}

// staleOr turns a failure caused by a newer load into ErrStaleResult.
func (s *AppointmentService) staleOr(ticket Ticket, err error) error {
	if !ticket.Current() {
		return ErrStaleResult
	}
	return err
}

func activeServices(services []api.Service) []api.Service {
	out := make([]api.Service, 0, len(services))
	for _, svc := range services {
		if svc.IsActive() {
			out = append(out, svc)
		}
	}
	return out
}

func statusList() string {
	names := make([]string, 0, 3)
	for _, st := range agenda.Statuses() {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

// notFoundOr maps a 404 to ErrNotFound and passes anything else through.
func notFoundOr(err error) error {
	if err != nil && api.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// buildHistory sorts appts newest first and counts the ones still ahead.
func buildHistory(calendar agenda.Calendar, appts []api.Appointment, now time.Time) History {
	calendar.SortNewestFirst(appts)
	return History{
		Appointments: appts,
		Total:        len(appts),
		Upcoming:     calendar.CountUpcoming(appts, now),
	}
}
