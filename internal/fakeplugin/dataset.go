package fakeplugin

import (
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
)

// Member is a staff account with its login password.
type Member struct {
	Staff    api.Staff
	Password string
}

// Dataset seeds a Plugin. Passwords are hashed when the plugin is built.
type Dataset struct {
	Members      []Member
	Services     []api.Service
	Appointments []api.Appointment
	Customers    []api.Customer
	Design       api.DesignSettings
	License      api.License
}

// DemoPassword is the password of every DemoDataset member.
const DemoPassword = "demo"

// DemoDataset returns a small salon with appointments spread around now.
// Member 1 holds every permission; member 2 is restricted.
func DemoDataset(now time.Time, loc *time.Location) Dataset {
	cal := agenda.NewCalendar(loc)
	today, _ := cal.DayWindow(now)
	at := func(dayOffset, hour, minute int) string {
		return cal.Format(today.AddDate(0, 0, dayOffset).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute))
	}

	full := &api.Permissions{
		CanViewAllAppointments: api.Bool(true),
		CanCreateAppointments:  api.Bool(true),
		CanEditAppointments:    api.Bool(true),
		CanDeleteAppointments:  api.Bool(true),
		CanViewCustomers:       api.Bool(true),
		CanEditCustomers:       api.Bool(true),
		CanEditBlockers:        api.Bool(true),
		CanViewAllStaff:        api.Bool(true),
	}
	restricted := &api.Permissions{
		CanViewAllAppointments: api.Bool(false),
		CanCreateAppointments:  api.Bool(true),
		CanEditAppointments:    api.Bool(true),
		CanDeleteAppointments:  api.Bool(false),
		CanViewCustomers:       api.Bool(true),
		CanEditCustomers:       api.Bool(false),
		CanEditBlockers:        api.Bool(false),
		CanViewAllStaff:        api.Bool(false),
	}

	booking := func(id, serviceID, staffID, customer, email, start, end, status string) api.Appointment {
		return api.Appointment{
			ID:            api.FlexString(id),
			ServiceID:     api.FlexString(serviceID),
			StaffID:       api.FlexString(staffID),
			CustomerName:  customer,
			CustomerEmail: email,
			StartsAt:      start,
			EndsAt:        end,
			Status:        status,
		}
	}

	created := cal.Format(today.AddDate(0, -2, 0))
	return Dataset{
		Members: []Member{
			{Staff: api.Staff{ID: "1", Name: "Emma Wilson", Email: "emma@salon.test", Phone: "+49 30 1234567", Permissions: full}, Password: DemoPassword},
			{Staff: api.Staff{ID: "2", Name: "James Miller", Email: "james@salon.test", Phone: "+49 30 7654321", Permissions: restricted}, Password: DemoPassword},
		},
		Services: []api.Service{
			{ID: "1", Name: "Haircut & Style", DurationMinutes: "60", Price: "45.00", Active: "1", CreatedAt: created, UpdatedAt: created},
			{ID: "2", Name: "Men's Haircut", DurationMinutes: "30", Price: "25.00", Active: "1", CreatedAt: created, UpdatedAt: created},
			{ID: "3", Name: "Color Treatment", DurationMinutes: "120", Price: "89.90", Active: "1", CreatedAt: created, UpdatedAt: created},
			{ID: "4", Name: "Beard Trim", DurationMinutes: "15", Price: "12.50", Active: "1", CreatedAt: created, UpdatedAt: created},
			{ID: "5", Name: "Perm", DurationMinutes: "90", Price: "70.00", Active: "0", CreatedAt: created, UpdatedAt: created},
		},
		Customers: []api.Customer{
			{ID: "1", FirstName: "Sarah", LastName: "Johnson", Email: "sarah@example.com", Phone: "+49 171 1111111", CreatedAt: created},
			{ID: "2", FirstName: "Michael", LastName: "Chen", Email: "michael@example.com", Phone: "+49 171 2222222", CreatedAt: created},
			{ID: "3", FirstName: "Lisa", LastName: "Anderson", Email: "lisa@example.com", Phone: "+49 171 3333333", CreatedAt: created},
		},
		Appointments: []api.Appointment{
			booking("1", "1", "1", "Sarah Johnson", "sarah@example.com", at(0, 8, 0), at(0, 9, 0), "confirmed"),
			booking("2", "3", "1", "Lisa Anderson", "lisa@example.com", at(0, 13, 0), at(0, 15, 0), "confirmed"),
			booking("3", "2", "2", "Michael Chen", "michael@example.com", at(0, 10, 30), at(0, 11, 0), "pending"),
			booking("4", "4", "2", "Michael Chen", "michael@example.com", at(1, 9, 0), at(1, 9, 15), "confirmed"),
			booking("5", "1", "1", "Sarah Johnson", "sarah@example.com", at(1, 16, 0), at(1, 17, 0), "pending"),
			booking("6", "3", "1", "Lisa Anderson", "lisa@example.com", at(6, 11, 0), at(6, 13, 0), "confirmed"),
			booking("7", "1", "1", "Sarah Johnson", "sarah@example.com", at(-30, 10, 0), at(-30, 11, 0), "confirmed"),
			booking("8", "2", "2", "Michael Chen", "michael@example.com", at(-12, 14, 0), at(-12, 14, 30), "cancelled"),
		},
		Design:  api.DesignSettings{AccentColor: "#E11D48", AccentGradientStart: "#FB7185"},
		License: api.License{Valid: true, Type: "pro"},
	}
}
