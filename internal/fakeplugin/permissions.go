package fakeplugin

import (
	"context"

	"github.com/example/salon-admin/internal/api"
)

// flagFunc picks one permission flag.
type flagFunc func(*api.Permissions) *api.FlexBool

var (
	flagViewAllAppointments flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanViewAllAppointments }
	flagCreateAppointments  flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanCreateAppointments }
	flagEditAppointments    flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanEditAppointments }
	flagDeleteAppointments  flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanDeleteAppointments }
	flagViewCustomers       flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanViewCustomers }
	flagEditCustomers       flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanEditCustomers }
	flagViewAllStaff        flagFunc = func(p *api.Permissions) *api.FlexBool { return p.CanViewAllStaff }
)

// allowed reports whether the caller holds flag. Members without a
// permission block, or with the flag unset, are allowed.
func (s *state) allowed(ctx context.Context, flag flagFunc) bool {
	staffID, ok := StaffIDFromContext(ctx)
	if !ok {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[staffID]
	if !ok {
		return false
	}
	if member.staff.Permissions == nil {
		return true
	}
	v := flag(member.staff.Permissions)
	return v == nil || bool(*v)
}
