package testfixtures

import (
	"testing"
	"time"

	"github.com/example/salon-admin/internal/agenda"
)

func TestNewAppointmentDefaultsAndOptions(t *testing.T) {
	t.Parallel()

	svc := NewService(WithServiceName("Beard Trim"), WithPrice(12.5), WithDuration(15))
	customer := NewCustomer(WithCustomerName("Sarah Johnson"), WithCustomerEmail("sarah@example.com"))
	staff := NewStaff(WithStaffName("James Miller"), WithPermissions(Permissions(DenyDeleteAppointments())))

	appt := NewAppointment(
		ForService(svc),
		ForCustomer(customer),
		ForStaff(staff),
		Between(At(1, 9, 0), At(1, 9, 15)),
		WithStatus(agenda.StatusPending),
	)

	if appt.StartsAt != "2025-03-11 09:00:00" || appt.EndsAt != "2025-03-11 09:15:00" {
		t.Fatalf("unexpected window %s..%s", appt.StartsAt, appt.EndsAt)
	}
	if appt.ServiceName != "Beard Trim" || appt.CustomerName != "Sarah Johnson" || appt.StaffName != "James Miller" {
		t.Fatalf("unexpected joined names %+v", appt)
	}
	if svc.Price != "12.50" || svc.DurationMinutes != "15" {
		t.Fatalf("unexpected service %+v", svc)
	}
	if p := staff.Permissions; p == nil || bool(*p.CanDeleteAppointments) || !bool(*p.CanEditAppointments) {
		t.Fatalf("unexpected permissions %+v", staff.Permissions)
	}
}

func TestStartingAtKeepsLength(t *testing.T) {
	t.Parallel()

	appt := NewAppointment(Between(At(0, 9, 0), At(0, 9, 45)), StartingAt(At(2, 14, 0)))
	start, err := Calendar().Parse(appt.StartsAt)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	end, err := Calendar().Parse(appt.EndsAt)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	if end.Sub(start) != 45*time.Minute || appt.StartsAt != "2025-03-12 14:00:00" {
		t.Fatalf("unexpected window %s..%s", appt.StartsAt, appt.EndsAt)
	}
}

func TestFixtureIDsAreUnique(t *testing.T) {
	t.Parallel()

	first, second := NewAppointment(), NewAppointment()
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %q twice", first.ID)
	}
}
