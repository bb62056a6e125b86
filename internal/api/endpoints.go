package api

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a token. The token is not retained by the
// immutable Client; Session.Login stores it.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.Request(ctx, http.MethodPost, loginPath, nil, body, &out)
	return out, err
}

// ValidateToken re-checks the bearer token and returns the server's current
// staff profile and licence.
func (c *Client) ValidateToken(ctx context.Context) (ValidateResponse, error) {
	var out ValidateResponse
	err := c.Request(ctx, http.MethodPost, "/auth/validate", nil, nil, &out)
	return out, err
}

func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var out []Service
	err := c.Request(ctx, http.MethodGet, "/services", nil, nil, &out)
	return out, err
}

func (c *Client) Service(ctx context.Context, id string) (Service, error) {
	var out Service
	err := c.Request(ctx, http.MethodGet, "/services/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) Staff(ctx context.Context) ([]Staff, error) {
	var out []Staff
	err := c.Request(ctx, http.MethodGet, "/staff", nil, nil, &out)
	return out, err
}

func (c *Client) StaffMember(ctx context.Context, id string) (Staff, error) {
	var out Staff
	err := c.Request(ctx, http.MethodGet, "/staff/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateStaff(ctx context.Context, id string, input UpdateStaffInput) (UpdateStaffResponse, error) {
	var out UpdateStaffResponse
	err := c.Request(ctx, http.MethodPut, "/staff/"+url.PathEscape(id), nil, input, &out)
	return out, err
}

func (c *Client) Appointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	query := url.Values{}
	if filter.StaffID != "" {
		query.Set("staff_id", filter.StaffID)
	}
	if filter.Start != "" {
		query.Set("start", filter.Start)
	}
	if filter.End != "" {
		query.Set("end", filter.End)
	}

	var out []Appointment
	err := c.Request(ctx, http.MethodGet, "/appointments", query, nil, &out)
	return out, err
}

func (c *Client) Appointment(ctx context.Context, id string) (Appointment, error) {
	var out Appointment
	err := c.Request(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (CreatedResponse, error) {
	var out CreatedResponse
	err := c.Request(ctx, http.MethodPost, "/appointments", nil, input, &out)
	return out, err
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, input UpdateAppointmentInput) (MessageResponse, error) {
	var out MessageResponse
	err := c.Request(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id), nil, input, &out)
	return out, err
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) (MessageResponse, error) {
	var out MessageResponse
	err := c.Request(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	err := c.Request(ctx, http.MethodGet, "/customers", nil, nil, &out)
	return out, err
}

func (c *Client) Customer(ctx context.Context, id string) (Customer, error) {
	var out Customer
	err := c.Request(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateCustomer(ctx context.Context, input CreateCustomerInput) (CreatedResponse, error) {
	var out CreatedResponse
	err := c.Request(ctx, http.MethodPost, "/customers", nil, input, &out)
	return out, err
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, input UpdateCustomerInput) (MessageResponse, error) {
	var out MessageResponse
	err := c.Request(ctx, http.MethodPut, "/customers/"+url.PathEscape(id), nil, input, &out)
	return out, err
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) (MessageResponse, error) {
	var out MessageResponse
	err := c.Request(ctx, http.MethodDelete, "/customers/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Availability returns the raw availability entries; their shape is owned by
// the plugin and not interpreted here.
func (c *Client) Availability(ctx context.Context, staffID string) ([]map[string]any, error) {
	query := url.Values{}
	if staffID != "" {
		query.Set("staff_id", staffID)
	}
	var out []map[string]any
	err := c.Request(ctx, http.MethodGet, "/availability", query, nil, &out)
	return out, err
}

func (c *Client) TimeSlots(ctx context.Context, q TimeSlotQuery) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("service_id", q.ServiceID)
	query.Set("date", q.Date)
	if q.StaffID != "" {
		query.Set("staff_id", q.StaffID)
	}
	var out []map[string]any
	err := c.Request(ctx, http.MethodGet, "/slots", query, nil, &out)
	return out, err
}

func (c *Client) DesignSettings(ctx context.Context) (DesignSettings, error) {
	var out DesignSettings
	err := c.Request(ctx, http.MethodGet, "/design-settings", nil, nil, &out)
	return out, err
}

// CheckConnection probes the services listing. It is the only reachability
// check the plugin offers and cannot tell a foreign backend that happens to
// answer /services from a compatible one.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.Services(ctx)
	return err
}
