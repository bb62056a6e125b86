package application

import (
	"context"
	"fmt"

	"github.com/example/salon-admin/internal/api"
)

// Entity is a gated section of the app.
type Entity string

const (
	EntityAppointments Entity = "appointments"
	EntityCustomers    Entity = "customers"
	EntityStaff        Entity = "staff"
)

// Action is an operation on an Entity.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Capabilities are the resolved permissions for one entity.
type Capabilities struct {
	CanView   bool
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// Allows reports whether action is permitted.
func (c Capabilities) Allows(action Action) bool {
	switch action {
	case ActionView:
		return c.CanView
	case ActionCreate:
		return c.CanCreate
	case ActionEdit:
		return c.CanEdit
	case ActionDelete:
		return c.CanDelete
	}
	return false
}

// Access is the gate's answer for every entity.
type Access struct {
	Appointments Capabilities
	Customers    Capabilities
	Staff        Capabilities
	EditBlockers bool
}

// For returns the capabilities of entity.
func (a Access) For(entity Entity) Capabilities {
	switch entity {
	case EntityAppointments:
		return a.Appointments
	case EntityCustomers:
		return a.Customers
	case EntityStaff:
		return a.Staff
	}
	return Capabilities{}
}

// GatePolicy decides what a missing profile or flag means. An explicit flag
// from the server always wins over the policy.
type GatePolicy struct {
	// MissingDefault applies to view, create and edit.
	MissingDefault bool
	// DeleteMissingDefault applies to delete.
	DeleteMissingDefault bool
}

// DefaultGatePolicy keeps view, create and edit permissive while permissions
// load, and refuses delete until the server has granted it.
func DefaultGatePolicy() GatePolicy {
	return GatePolicy{MissingDefault: true, DeleteMissingDefault: false}
}

// PermissiveGatePolicy treats every missing flag as granted.
func PermissiveGatePolicy() GatePolicy {
	return GatePolicy{MissingDefault: true, DeleteMissingDefault: true}
}

// Gate resolves capabilities from the cached profile. It is pure and must be
// re-run whenever the cache changes. Under DefaultGatePolicy a missing delete
// flag is refused; PermissiveGatePolicy restores the plugin's own rule that
// every missing flag counts as granted.
func Gate(profile *StaffProfile, policy GatePolicy) Access {
	var p api.Permissions
	if profile != nil && profile.Permissions != nil {
		p = *profile.Permissions
	}

	flag := func(v *api.FlexBool, def bool) bool {
		if v == nil {
			return def
		}
		return bool(*v)
	}
	missing := policy.MissingDefault
	deleteMissing := policy.DeleteMissingDefault

	staffView := flag(p.CanViewAllStaff, missing)
	return Access{
		Appointments: Capabilities{
			CanView:   flag(p.CanViewAllAppointments, missing),
			CanCreate: flag(p.CanCreateAppointments, missing),
			CanEdit:   flag(p.CanEditAppointments, missing),
			CanDelete: flag(p.CanDeleteAppointments, deleteMissing),
		},
		Customers: Capabilities{
			CanView:   flag(p.CanViewCustomers, missing),
			CanCreate: flag(p.CanEditCustomers, missing),
			CanEdit:   flag(p.CanEditCustomers, missing),
			CanDelete: flag(p.CanEditCustomers, deleteMissing),
		},
		// The plugin has no staff create or delete endpoints.
		Staff: Capabilities{
			CanView: staffView,
			CanEdit: staffView,
		},
		EditBlockers: flag(p.CanEditBlockers, missing),
	}
}

// PermissionService recomputes the gate from the cache on every call, so a
// refreshed profile takes effect immediately.
type PermissionService struct {
	store  *SessionStore
	policy GatePolicy
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(store *SessionStore, policy GatePolicy) *PermissionService {
	return &PermissionService{store: store, policy: policy}
}

// Policy returns the configured policy.
func (s *PermissionService) Policy() GatePolicy {
	return s.policy
}

// Current returns the access computed from the currently cached profile.
func (s *PermissionService) Current(ctx context.Context) Access {
	if s == nil || s.store == nil {
		return Gate(nil, DefaultGatePolicy())
	}
	return Gate(s.store.StaffProfile(ctx), s.policy)
}

// Require returns ErrPermissionDenied unless action on entity is allowed.
func (s *PermissionService) Require(ctx context.Context, entity Entity, action Action) error {
	if s.Current(ctx).For(entity).Allows(action) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrPermissionDenied, action, entity)
}
