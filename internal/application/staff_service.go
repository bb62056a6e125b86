package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/salon-admin/internal/api"
)

// StaffService lists staff members and edits profiles.
type StaffService struct {
	connector   Connector
	store       *SessionStore
	permissions *PermissionService
	logger      *slog.Logger
}

// NewStaffService constructs a staff service with the provided dependencies.
func NewStaffService(connector Connector, store *SessionStore, permissions *PermissionService) *StaffService {
	return NewStaffServiceWithLogger(connector, store, permissions, nil)
}

// NewStaffServiceWithLogger constructs a staff service with a specified logger.
func NewStaffServiceWithLogger(connector Connector, store *SessionStore, permissions *PermissionService, logger *slog.Logger) *StaffService {
	return &StaffService{connector: connector, store: store, permissions: permissions, logger: defaultLogger(logger)}
}

func (s *StaffService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StaffService", operation, attrs...)
}

// List returns staff members whose name or email contains query.
func (s *StaffService) List(ctx context.Context, query string) (staff []api.Staff, err error) {
	if s == nil {
		err = fmt.Errorf("StaffService is nil")
		return
	}

	logger := s.loggerWith(ctx, "List")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list staff", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "staff listed", "count", len(staff))
	}()

	if err = s.permissions.Require(ctx, EntityStaff, ActionView); err != nil {
		return
	}

	all, err := s.connector.Backend().Staff(ctx)
	if err != nil {
		return
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		staff = all
		return
	}
	staff = make([]api.Staff, 0, len(all))
	for _, member := range all {
		if strings.Contains(strings.ToLower(member.Name), needle) || strings.Contains(strings.ToLower(member.Email), needle) {
			staff = append(staff, member)
		}
	}
	return
}

// Member loads one staff member. The signed-in member can always load
// their own record.
func (s *StaffService) Member(ctx context.Context, id string) (member api.Staff, err error) {
	if s == nil {
		err = fmt.Errorf("StaffService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Member", "staff_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load staff member", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !s.isSelf(ctx, id) {
		if err = s.permissions.Require(ctx, EntityStaff, ActionView); err != nil {
			return
		}
	}

	member, err = s.connector.Backend().StaffMember(ctx, id)
	err = notFoundOr(err)
	return
}

// UpdateProfile edits a member's contact details. Editing the signed-in
// member also refreshes the cached profile.
func (s *StaffService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (member api.Staff, err error) {
	if s == nil {
		err = fmt.Errorf("StaffService is nil")
		return
	}

	own := params.StaffID == ""
	if own {
		profile := s.store.StaffProfile(ctx)
		if profile == nil || profile.ID.String() == "" {
			err = ErrNoStaffProfile
			return
		}
		params.StaffID = profile.ID.String()
	}
	self := own || s.isSelf(ctx, params.StaffID)

	logger := s.loggerWith(ctx, "UpdateProfile", "staff_id", params.StaffID, "self", self)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if !self {
		if err = s.permissions.Require(ctx, EntityStaff, ActionEdit); err != nil {
			return
		}
	}

	input := api.UpdateStaffInput{
		Name:  strings.TrimSpace(params.Name),
		Email: strings.TrimSpace(params.Email),
		Phone: strings.TrimSpace(params.Phone),
	}
	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "is required")
	}
	switch {
	case input.Email == "":
		vErr.add("email", "is required")
	case !emailPattern.MatchString(input.Email):
		vErr.add("email", "is not a valid email address")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	resp, updateErr := s.connector.Backend().UpdateStaff(ctx, params.StaffID, input)
	if updateErr != nil {
		err = notFoundOr(updateErr)
		return
	}

	member = resp.Staff
	if member.ID.String() == "" {
		member = api.Staff{ID: api.FlexString(params.StaffID), Name: input.Name, Email: input.Email, Phone: input.Phone}
	}
	if self {
		cached := s.store.StaffProfile(ctx)
		if member.Permissions == nil && cached != nil {
			member.Permissions = cached.Permissions
		}
		if err = s.store.SaveStaffProfile(ctx, member); err != nil {
			return
		}
	}
	return
}

func (s *StaffService) isSelf(ctx context.Context, id string) bool {
	profile := s.store.StaffProfile(ctx)
	return profile != nil && id != "" && profile.ID.String() == id
}
