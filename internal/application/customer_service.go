package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// CustomerService lists and edits customers.
type CustomerService struct {
	connector   Connector
	permissions *PermissionService
	calendar    agenda.Calendar
	now         func() time.Time
	logger      *slog.Logger
}

// NewCustomerService constructs a customer service with the provided dependencies.
func NewCustomerService(connector Connector, permissions *PermissionService, calendar agenda.Calendar, now func() time.Time) *CustomerService {
	return NewCustomerServiceWithLogger(connector, permissions, calendar, now, nil)
}

// NewCustomerServiceWithLogger constructs a customer service with a specified logger.
func NewCustomerServiceWithLogger(connector Connector, permissions *PermissionService, calendar agenda.Calendar, now func() time.Time, logger *slog.Logger) *CustomerService {
	if now == nil {
		now = time.Now
	}
	return &CustomerService{
		connector:   connector,
		permissions: permissions,
		calendar:    calendar,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CustomerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CustomerService", operation, attrs...)
}

// List returns customers whose name, email or phone contains query. An
// empty query returns everyone.
func (s *CustomerService) List(ctx context.Context, query string) (customers []api.Customer, err error) {
	if s == nil {
		err = fmt.Errorf("CustomerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "List")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list customers", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "customers listed", "count", len(customers))
	}()

	if err = s.permissions.Require(ctx, EntityCustomers, ActionView); err != nil {
		return
	}

	all, err := s.connector.Backend().Customers(ctx)
	if err != nil {
		return
	}
	customers = filterCustomers(all, query)
	return
}

func filterCustomers(customers []api.Customer, query string) []api.Customer {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return customers
	}
	out := make([]api.Customer, 0, len(customers))
	for _, c := range customers {
		haystack := strings.ToLower(strings.Join([]string{c.FullName(), c.Email, c.Phone}, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, c)
		}
	}
	return out
}

// Detail loads a customer and the appointments booked under their email.
func (s *CustomerService) Detail(ctx context.Context, id string) (detail CustomerDetail, err error) {
	if s == nil {
		err = fmt.Errorf("CustomerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Detail", "customer_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load customer", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if err = s.permissions.Require(ctx, EntityCustomers, ActionView); err != nil {
		return
	}

	backend := s.connector.Backend()
	customer, fetchErr := backend.Customer(ctx, id)
	if fetchErr != nil {
		err = notFoundOr(fetchErr)
		return
	}

	access := s.permissions.Current(ctx)
	detail = CustomerDetail{Customer: customer, Capabilities: access.Customers}
	if !access.Appointments.CanView {
		detail.HistoryHidden = true
		return
	}

	appts, fetchErr := backend.Appointments(ctx, api.AppointmentFilter{})
	if fetchErr != nil {
		err = fetchErr
		return
	}
	email := strings.ToLower(strings.TrimSpace(customer.Email))
	matched := make([]api.Appointment, 0)
	for _, appt := range appts {
		if email != "" && strings.ToLower(strings.TrimSpace(appt.CustomerEmail)) == email {
			matched = append(matched, appt)
		}
	}
	detail.History = buildHistory(s.calendar, matched, s.now())
	return
}

// Create registers a new customer and returns their id.
func (s *CustomerService) Create(ctx context.Context, params CreateCustomerParams) (id string, err error) {
	if s == nil {
		err = fmt.Errorf("CustomerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create customer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "customer created", "customer_id", id)
	}()

	if err = s.permissions.Require(ctx, EntityCustomers, ActionCreate); err != nil {
		return
	}

	input := api.CreateCustomerInput{
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Email:     strings.TrimSpace(params.Email),
		Phone:     strings.TrimSpace(params.Phone),
		Password:  params.Password,
	}
	vErr := &ValidationError{}
	if input.FirstName == "" {
		vErr.add("first_name", "is required")
	}
	if input.LastName == "" {
		vErr.add("last_name", "is required")
	}
	switch {
	case input.Email == "":
		vErr.add("email", "is required")
	case !emailPattern.MatchString(input.Email):
		vErr.add("email", "is not a valid email address")
	}
	if input.Phone == "" {
		vErr.add("phone", "is required")
	}
	if input.Password == "" {
		vErr.add("password", "is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	resp, err := s.connector.Backend().CreateCustomer(ctx, input)
	if err != nil {
		return
	}
	id = resp.ID.String()
	return
}

// Update changes the fields set in params. Set fields may not be blank.
func (s *CustomerService) Update(ctx context.Context, id string, params UpdateCustomerParams) (err error) {
	if s == nil {
		return fmt.Errorf("CustomerService is nil")
	}

	logger := s.loggerWith(ctx, "Update", "customer_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update customer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "customer updated")
	}()

	if err = s.permissions.Require(ctx, EntityCustomers, ActionEdit); err != nil {
		return
	}

	vErr := &ValidationError{}
	trimmed := func(field string, v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			vErr.add(field, "must not be blank")
		}
		return &t
	}
	input := api.UpdateCustomerInput{
		FirstName: trimmed("first_name", params.FirstName),
		LastName:  trimmed("last_name", params.LastName),
		Phone:     trimmed("phone", params.Phone),
	}
	if params.Password != nil {
		if *params.Password == "" {
			vErr.add("password", "must not be blank")
		}
		input.Password = params.Password
	}
	if vErr.HasErrors() {
		return vErr
	}

	_, err = s.connector.Backend().UpdateCustomer(ctx, id, input)
	return notFoundOr(err)
}

// Delete removes a customer.
func (s *CustomerService) Delete(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("CustomerService is nil")
	}

	logger := s.loggerWith(ctx, "Delete", "customer_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete customer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "customer deleted")
	}()

	if err = s.permissions.Require(ctx, EntityCustomers, ActionDelete); err != nil {
		return
	}

	_, err = s.connector.Backend().DeleteCustomer(ctx, id)
	return notFoundOr(err)
}
