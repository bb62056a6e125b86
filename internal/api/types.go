package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString accepts JSON strings, numbers and null. The plugin serialises
// database columns as strings but freshly created ids as numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("api: expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Float parses the value as a decimal number.
func (f FlexString) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
}

// Int parses the value as an integer.
func (f FlexString) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(f)))
}

// FlexBool accepts true/false, 1/0 and "1"/"0"/"true"/"false".
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.ToLower(string(bytes.TrimSpace(data))), `"`) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("api: invalid boolean %s", data)
	}
	return nil
}

// Bool returns a pointer to a FlexBool, for building Permissions literals.
func Bool(v bool) *FlexBool {
	b := FlexBool(v)
	return &b
}

// Permissions holds the server capability flags. A nil field means the server
// did not send the flag.
type Permissions struct {
	CanViewAllAppointments *FlexBool `json:"can_view_all_appointments,omitempty"`
	CanCreateAppointments  *FlexBool `json:"can_create_appointments,omitempty"`
	CanEditAppointments    *FlexBool `json:"can_edit_appointments,omitempty"`
	CanDeleteAppointments  *FlexBool `json:"can_delete_appointments,omitempty"`
	CanViewCustomers       *FlexBool `json:"can_view_customers,omitempty"`
	CanEditCustomers       *FlexBool `json:"can_edit_customers,omitempty"`
	CanEditBlockers        *FlexBool `json:"can_edit_blockers,omitempty"`
	CanViewAllStaff        *FlexBool `json:"can_view_all_staff,omitempty"`
}

// Staff is a staff member as returned by /staff and embedded in auth responses.
type Staff struct {
	ID          FlexString   `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// License is advisory licence information attached to a login.
type License struct {
	Valid FlexBool `json:"valid"`
	Type  string   `json:"type"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Staff   Staff   `json:"staff"`
	License License `json:"license"`
}

type ValidateResponse struct {
	Valid   FlexBool `json:"valid"`
	Staff   Staff    `json:"staff"`
	License License  `json:"license"`
}

type Service struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	DurationMinutes FlexString `json:"duration_minutes"`
	Price           FlexString `json:"price"`
	Active          FlexString `json:"active"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// IsActive reports whether the service is bookable.
func (s Service) IsActive() bool {
	return s.Active == "1" || strings.EqualFold(string(s.Active), "true")
}

type Appointment struct {
	ID            FlexString `json:"id"`
	ServiceID     FlexString `json:"service_id"`
	ServiceName   string     `json:"service_name"`
	StaffID       FlexString `json:"staff_id"`
	StaffName     string     `json:"staff_name"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone string     `json:"customer_phone"`
	StartsAt      string     `json:"starts_at"`
	EndsAt        string     `json:"ends_at"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
}

type Customer struct {
	ID        FlexString `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedAt string     `json:"created_at"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DesignSettings carries the salon's custom accent colours.
type DesignSettings struct {
	AccentColor         string `json:"accent_color"`
	AccentGradientStart string `json:"accent_gradient_start"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	ID      FlexString `json:"id"`
	Message string     `json:"message"`
}

type UpdateStaffResponse struct {
	Message string `json:"message"`
	Staff   Staff  `json:"staff"`
}

type UpdateStaffInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateAppointmentInput struct {
	ServiceID     int    `json:"service_id"`
	StaffID       int    `json:"staff_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

// UpdateAppointmentInput is a partial update; nil fields are not sent.
type UpdateAppointmentInput struct {
	StartsAt *string `json:"starts_at,omitempty"`
	EndsAt   *string `json:"ends_at,omitempty"`
	Status   *string `json:"status,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type CreateCustomerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type UpdateCustomerInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// AppointmentFilter narrows GET /appointments. Start and End use the
// "YYYY-MM-DD HH:MM:SS" layout.
type AppointmentFilter struct {
	StaffID string
	Start   string
	End     string
}

type TimeSlotQuery struct {
	ServiceID string
	Date      string
	StaffID   string
}
