package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/salon-admin/internal/api"
)

func TestStaffService_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.backend.staff = []api.Staff{
		{ID: "7", Name: "Emma Wilson", Email: "emma@example.com"},
		{ID: "8", Name: "James Miller", Email: "james@example.com"},
	}
	svc := NewStaffService(f.connector, f.store, f.perms)

	found, err := svc.List(ctx, "JAMES")
	if err != nil || len(found) != 1 || found[0].ID != "8" {
		t.Fatalf("expected one match, got %v, %v", found, err)
	}

	denied := newFixture(t)
	denied.signIn(t, staffWith("7", &api.Permissions{CanViewAllStaff: api.Bool(false)}))
	deniedSvc := NewStaffService(denied.connector, denied.store, denied.perms)
	if _, err := deniedSvc.List(ctx, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if denied.backend.count("Staff") != 0 {
		t.Fatalf("expected no staff request")
	}

	denied.backend.member = map[string]api.Staff{"7": {ID: "7"}}
	if _, err := deniedSvc.Member(ctx, "7"); err != nil {
		t.Fatalf("expected own record to load, got %v", err)
	}
	if _, err := deniedSvc.Member(ctx, "8"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected other record denied, got %v", err)
	}
}

func TestStaffService_UpdateOwnProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	perms := &api.Permissions{CanViewAllStaff: api.Bool(false)}
	f.signIn(t, staffWith("7", perms))
	f.backend.updateStaff = api.UpdateStaffResponse{Staff: api.Staff{ID: "7", Name: "Emma W.", Email: "emma.w@example.com"}}
	svc := NewStaffService(f.connector, f.store, f.perms)

	_, err := svc.UpdateProfile(ctx, UpdateProfileParams{Name: "", Email: "nope"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["name"] == "" || vErr.FieldErrors["email"] == "" {
		t.Fatalf("expected name and email errors, got %v", err)
	}

	member, err := svc.UpdateProfile(ctx, UpdateProfileParams{Name: " Emma W. ", Email: "emma.w@example.com"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if f.backend.staffInput.Name != "Emma W." {
		t.Fatalf("expected trimmed name sent, got %+v", f.backend.staffInput)
	}
	cached := f.store.StaffProfile(ctx)
	if cached == nil || cached.Email != "emma.w@example.com" || member.Email != cached.Email {
		t.Fatalf("expected cached profile refreshed, got %+v", cached)
	}
	if cached.Permissions == nil || cached.Permissions.CanViewAllStaff == nil {
		t.Fatalf("expected cached permissions preserved")
	}
}

func TestStaffService_UpdateOtherProfileRequiresAccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.signIn(t, staffWith("7", &api.Permissions{CanViewAllStaff: api.Bool(false)}))
	svc := NewStaffService(f.connector, f.store, f.perms)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{StaffID: "8", Name: "James", Email: "james@example.com"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if f.backend.count("UpdateStaff") != 0 {
		t.Fatalf("expected no update request")
	}
}
