package application

import (
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// StaffProfile is the signed-in staff member as cached locally. The server
// copy is authoritative and replaces the cache on every validation.
type StaffProfile = api.Staff

// License is cached next to the staff profile. It is advisory only.
type License = api.License

// BootstrapResult is the outcome of SessionService.Bootstrap.
type BootstrapResult struct {
	Authenticated bool
	Profile       *StaffProfile
	License       *License
	// Refreshed is true when the server validated the token and the caches
	// were overwritten.
	Refreshed bool
	// RefreshErr holds a non-auth validation failure that was tolerated.
	RefreshErr error
	// ForcedLogout is true when the server rejected the token and the session
	// was cleared.
	ForcedLogout bool
}

// MonthlyStats compares appointment volume month over month.
type MonthlyStats struct {
	Current       int
	Previous      int
	GrowthPercent int
}

// DashboardStats is the summary block of the dashboard.
type DashboardStats struct {
	Month        MonthlyStats
	TodayRevenue float64

	// CustomerCount is only meaningful when CustomersKnown is set. It stays
	// unset when the member may not view customers or the request failed.
	CustomerCount  int
	CustomersKnown bool

	// SkippedAppointments lists appointments left out of TodayRevenue.
	SkippedAppointments []string
}

// Dashboard is what the home screen shows.
type Dashboard struct {
	Upcoming        []api.Appointment
	ShowingTomorrow bool
	Stats           DashboardStats
	// StatsErr is set when the month counts failed. Revenue and the customer
	// count are still filled in.
	StatsErr    error
	GeneratedAt time.Time
}

// AppointmentList is the bucketed forward-looking list.
type AppointmentList struct {
	Buckets     agenda.Buckets
	WindowStart time.Time
	WindowEnd   time.Time
}

// AppointmentDetail pairs an appointment with the caller's capabilities on it.
type AppointmentDetail struct {
	Appointment     api.Appointment
	StatusLabel     string
	StatusColor     string
	DurationMinutes int
	Capabilities    Capabilities
}

// History is an entity's appointment record, newest first.
type History struct {
	Appointments []api.Appointment
	Total        int
	Upcoming     int
}

// CustomerDetail is a customer with their appointment history.
type CustomerDetail struct {
	Customer api.Customer
	History  History
	// HistoryHidden is set when the caller may not view appointments, in
	// which case no appointment request was made.
	HistoryHidden bool
	Capabilities  Capabilities
}

// ServiceDetail is a service with its appointment history.
type ServiceDetail struct {
	Service       api.Service
	History       History
	HistoryHidden bool
}

// AppointmentFormData is what the create-appointment form needs to render.
type AppointmentFormData struct {
	Services []api.Service
	Staff    []api.Staff
	// DefaultStaffID preselects the signed-in staff member.
	DefaultStaffID string
}

// CreateAppointmentParams is the create-appointment form input.
type CreateAppointmentParams struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ServiceID     string
	StaffID       string
	Date          time.Time // calendar day; time of day is ignored
	Hour          int
	Minute        int
	Status        string
	Notes         string
}

// UpdateAppointmentParams is a partial appointment update.
type UpdateAppointmentParams struct {
	StartsAt *time.Time
	EndsAt   *time.Time
	Status   *string
	Notes    *string
}

// UpdateProfileParams edits a staff member's contact details.
type UpdateProfileParams struct {
	StaffID string
	Name    string
	Email   string
	Phone   string
}

// CreateCustomerParams is the new-customer form input.
type CreateCustomerParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// UpdateCustomerParams is a partial customer update.
type UpdateCustomerParams struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Password  *string
}
