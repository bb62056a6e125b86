package testfixtures

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

var (
	appointmentIDs = NewIDGenerator(1000)
	serviceIDs     = NewIDGenerator(100)
	customerIDs    = NewIDGenerator(500)
	staffIDs       = NewIDGenerator(10)
)

// SalonLocation is the zone fixtures are expressed in.
func SalonLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// ReferenceTime is Monday 10 March 2025, 10:00 in the salon's zone.
func ReferenceTime() time.Time {
	return time.Date(2025, time.March, 10, 10, 0, 0, 0, SalonLocation())
}

// Calendar returns the calendar fixtures are formatted with.
func Calendar() agenda.Calendar {
	return agenda.NewCalendar(SalonLocation())
}

// At returns the reference day shifted by dayOffset, at hour:minute.
func At(dayOffset, hour, minute int) time.Time {
	y, m, d := ReferenceTime().Date()
	return time.Date(y, m, d+dayOffset, hour, minute, 0, 0, SalonLocation())
}

// Timestamp renders t in the plugin's wire layout.
func Timestamp(t time.Time) string {
	return Calendar().Format(t)
}

// ----------------------------- Appointments -----------------------------

// AppointmentOption configures an appointment fixture.
type AppointmentOption func(*api.Appointment)

// NewAppointment returns a confirmed one hour booking at ReferenceTime with
// a fresh id.
func NewAppointment(opts ...AppointmentOption) api.Appointment {
	id := appointmentIDs.Next()
	start := ReferenceTime()
	appt := api.Appointment{
		ID:            api.FlexString(id),
		ServiceID:     "1",
		ServiceName:   "Haircut & Style",
		StaffID:       "1",
		StaffName:     "Emma Wilson",
		CustomerName:  "Customer " + id,
		CustomerEmail: "customer" + id + "@example.com",
		StartsAt:      Timestamp(start),
		EndsAt:        Timestamp(start.Add(time.Hour)),
		Status:        string(agenda.StatusConfirmed),
	}
	for _, opt := range opts {
		opt(&appt)
	}
	return appt
}

func WithAppointmentID(id string) AppointmentOption {
	return func(a *api.Appointment) { a.ID = api.FlexString(id) }
}

// Between sets start and end.
func Between(start, end time.Time) AppointmentOption {
	return func(a *api.Appointment) {
		a.StartsAt = Timestamp(start)
		a.EndsAt = Timestamp(end)
	}
}

// StartingAt moves the booking to start and keeps its length.
func StartingAt(start time.Time) AppointmentOption {
	return func(a *api.Appointment) {
		length := time.Hour
		cal := Calendar()
		if s, err := cal.Parse(a.StartsAt); err == nil {
			if e, err := cal.Parse(a.EndsAt); err == nil && e.After(s) {
				length = e.Sub(s)
			}
		}
		a.StartsAt = Timestamp(start)
		a.EndsAt = Timestamp(start.Add(length))
	}
}

func WithStatus(status agenda.Status) AppointmentOption {
	return func(a *api.Appointment) { a.Status = string(status) }
}

// ForStaff assigns the booking to a staff member.
func ForStaff(staff api.Staff) AppointmentOption {
	return func(a *api.Appointment) {
		a.StaffID = staff.ID
		a.StaffName = staff.Name
	}
}

// ForService assigns the booking to a service.
func ForService(svc api.Service) AppointmentOption {
	return func(a *api.Appointment) {
		a.ServiceID = svc.ID
		a.ServiceName = svc.Name
	}
}

// ForCustomer copies the customer's name, email and phone.
func ForCustomer(c api.Customer) AppointmentOption {
	return func(a *api.Appointment) {
		a.CustomerName = c.FullName()
		a.CustomerEmail = c.Email
		a.CustomerPhone = c.Phone
	}
}

func WithNotes(notes string) AppointmentOption {
	return func(a *api.Appointment) { a.Notes = notes }
}

// ----------------------------- Services -----------------------------

// ServiceOption configures a service fixture.
type ServiceOption func(*api.Service)

// NewService returns an active 60 minute service priced at 40.00.
func NewService(opts ...ServiceOption) api.Service {
	id := serviceIDs.Next()
	created := Timestamp(ReferenceTime().AddDate(0, -1, 0))
	svc := api.Service{
		ID:              api.FlexString(id),
		Name:            "Service " + id,
		DurationMinutes: "60",
		Price:           "40.00",
		Active:          "1",
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&svc)
	}
	return svc
}

func WithServiceID(id string) ServiceOption {
	return func(s *api.Service) { s.ID = api.FlexString(id) }
}

func WithServiceName(name string) ServiceOption {
	return func(s *api.Service) { s.Name = name }
}

// WithPrice sets the price, formatted with two decimals.
func WithPrice(price float64) ServiceOption {
	return func(s *api.Service) { s.Price = api.FlexString(strconv.FormatFloat(price, 'f', 2, 64)) }
}

// WithRawPrice sets the price verbatim, for unparsable values.
func WithRawPrice(price string) ServiceOption {
	return func(s *api.Service) { s.Price = api.FlexString(price) }
}

func WithDuration(minutes int) ServiceOption {
	return func(s *api.Service) { s.DurationMinutes = api.FlexString(strconv.Itoa(minutes)) }
}

// Inactive marks the service as not bookable.
func Inactive() ServiceOption {
	return func(s *api.Service) { s.Active = "0" }
}

// ----------------------------- Customers -----------------------------

// CustomerOption configures a customer fixture.
type CustomerOption func(*api.Customer)

func NewCustomer(opts ...CustomerOption) api.Customer {
	id := customerIDs.Next()
	c := api.Customer{
		ID:        api.FlexString(id),
		FirstName: "Customer",
		LastName:  id,
		Email:     "customer" + id + "@example.com",
		Phone:     "+49 171 " + strings.Repeat("0", 7-len(id)) + id,
		CreatedAt: Timestamp(ReferenceTime().AddDate(0, -2, 0)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func WithCustomerID(id string) CustomerOption {
	return func(c *api.Customer) { c.ID = api.FlexString(id) }
}

// WithCustomerName splits full into first and last name at the first space.
func WithCustomerName(full string) CustomerOption {
	return func(c *api.Customer) {
		first, last, _ := strings.Cut(strings.TrimSpace(full), " ")
		c.FirstName, c.LastName = first, last
	}
}

func WithCustomerEmail(email string) CustomerOption {
	return func(c *api.Customer) { c.Email = email }
}

func WithCustomerPhone(phone string) CustomerOption {
	return func(c *api.Customer) { c.Phone = phone }
}

// ----------------------------- Staff -----------------------------

// StaffOption configures a staff fixture.
type StaffOption func(*api.Staff)

// NewStaff returns a member holding every permission.
func NewStaff(opts ...StaffOption) api.Staff {
	id := staffIDs.Next()
	staff := api.Staff{
		ID:          api.FlexString(id),
		Name:        fmt.Sprintf("Stylist %s", id),
		Email:       fmt.Sprintf("stylist%s@salon.test", id),
		Phone:       "+49 30 555" + id,
		Permissions: FullPermissions(),
	}
	for _, opt := range opts {
		opt(&staff)
	}
	return staff
}

func WithStaffID(id string) StaffOption {
	return func(s *api.Staff) { s.ID = api.FlexString(id) }
}

func WithStaffName(name string) StaffOption {
	return func(s *api.Staff) { s.Name = name }
}

func WithStaffEmail(email string) StaffOption {
	return func(s *api.Staff) { s.Email = email }
}

func WithPermissions(p *api.Permissions) StaffOption {
	return func(s *api.Staff) { s.Permissions = p }
}

// WithoutPermissions models a server that sends no permission block.
func WithoutPermissions() StaffOption {
	return func(s *api.Staff) { s.Permissions = nil }
}

// FullPermissions grants every flag.
func FullPermissions() *api.Permissions {
	return &api.Permissions{
		CanViewAllAppointments: api.Bool(true),
		CanCreateAppointments:  api.Bool(true),
		CanEditAppointments:    api.Bool(true),
		CanDeleteAppointments:  api.Bool(true),
		CanViewCustomers:       api.Bool(true),
		CanEditCustomers:       api.Bool(true),
		CanEditBlockers:        api.Bool(true),
		CanViewAllStaff:        api.Bool(true),
	}
}

// PermissionOption flips one flag of a permission block.
type PermissionOption func(*api.Permissions)

// Permissions returns FullPermissions with opts applied.
func Permissions(opts ...PermissionOption) *api.Permissions {
	p := FullPermissions()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func DenyViewAllAppointments() PermissionOption {
	return func(p *api.Permissions) { p.CanViewAllAppointments = api.Bool(false) }
}

func DenyCreateAppointments() PermissionOption {
	return func(p *api.Permissions) { p.CanCreateAppointments = api.Bool(false) }
}

func DenyEditAppointments() PermissionOption {
	return func(p *api.Permissions) { p.CanEditAppointments = api.Bool(false) }
}

func DenyDeleteAppointments() PermissionOption {
	return func(p *api.Permissions) { p.CanDeleteAppointments = api.Bool(false) }
}

func DenyViewCustomers() PermissionOption {
	return func(p *api.Permissions) { p.CanViewCustomers = api.Bool(false) }
}

func DenyEditCustomers() PermissionOption {
	return func(p *api.Permissions) { p.CanEditCustomers = api.Bool(false) }
}

func DenyViewAllStaff() PermissionOption {
	return func(p *api.Permissions) { p.CanViewAllStaff = api.Bool(false) }
}
