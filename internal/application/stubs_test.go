package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/persistence/memory"
)

var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func utcCalendar() agenda.Calendar { return agenda.NewCalendar(time.UTC) }

type stubBackend struct {
	mu    sync.Mutex
	calls map[string]int

	loginResp   api.LoginResponse
	loginErr    error
	validate    api.ValidateResponse
	validateErr error
	checkErr    error

	services    []api.Service
	servicesErr error
	service     map[string]api.Service
	serviceErr  error

	staff          []api.Staff
	staffErr       error
	member         map[string]api.Staff
	updateStaff    api.UpdateStaffResponse
	updateStaffErr error
	staffInput     api.UpdateStaffInput

	appointmentsFn  func(api.AppointmentFilter) ([]api.Appointment, error)
	filters         []api.AppointmentFilter
	appointment     map[string]api.Appointment
	createdAppt     api.CreateAppointmentInput
	updatedAppt     api.UpdateAppointmentInput
	createResp      api.CreatedResponse
	mutationErr     error
	customers       []api.Customer
	customersErr    error
	customer        map[string]api.Customer
	createdCustomer api.CreateCustomerInput
	updatedCustomer api.UpdateCustomerInput
	design          api.DesignSettings
	designErr       error
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: make(map[string]int)}
}

func (b *stubBackend) record(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *stubBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (api.LoginResponse, error) {
	b.record("Login")
	return b.loginResp, b.loginErr
}

func (b *stubBackend) ValidateToken(ctx context.Context) (api.ValidateResponse, error) {
	b.record("ValidateToken")
	return b.validate, b.validateErr
}

func (b *stubBackend) CheckConnection(ctx context.Context) error {
	b.record("CheckConnection")
	return b.checkErr
}

func (b *stubBackend) Services(ctx context.Context) ([]api.Service, error) {
	b.record("Services")
	return b.services, b.servicesErr
}

func (b *stubBackend) Service(ctx context.Context, id string) (api.Service, error) {
	b.record("Service")
	if b.serviceErr != nil {
		return api.Service{}, b.serviceErr
	}
	svc, ok := b.service[id]
	if !ok {
		return api.Service{}, &api.Error{Kind: api.KindNotFound, Status: 404, Message: "Service not found"}
	}
	return svc, nil
}

func (b *stubBackend) Staff(ctx context.Context) ([]api.Staff, error) {
	b.record("Staff")
	return b.staff, b.staffErr
}

func (b *stubBackend) StaffMember(ctx context.Context, id string) (api.Staff, error) {
	b.record("StaffMember")
	member, ok := b.member[id]
	if !ok {
		return api.Staff{}, &api.Error{Kind: api.KindNotFound, Status: 404}
	}
	return member, nil
}

func (b *stubBackend) UpdateStaff(ctx context.Context, id string, input api.UpdateStaffInput) (api.UpdateStaffResponse, error) {
	b.record("UpdateStaff")
	b.staffInput = input
	return b.updateStaff, b.updateStaffErr
}

func (b *stubBackend) Appointments(ctx context.Context, filter api.AppointmentFilter) ([]api.Appointment, error) {
	b.record("Appointments")
	b.mu.Lock()
	b.filters = append(b.filters, filter)
	b.mu.Unlock()
	if b.appointmentsFn == nil {
		return nil, nil
	}
	return b.appointmentsFn(filter)
}

func (b *stubBackend) Appointment(ctx context.Context, id string) (api.Appointment, error) {
	b.record("Appointment")
	appt, ok := b.appointment[id]
	if !ok {
		return api.Appointment{}, &api.Error{Kind: api.KindNotFound, Status: 404}
	}
	return appt, nil
}

func (b *stubBackend) CreateAppointment(ctx context.Context, input api.CreateAppointmentInput) (api.CreatedResponse, error) {
	b.record("CreateAppointment")
	b.createdAppt = input
	return b.createResp, b.mutationErr
}

func (b *stubBackend) UpdateAppointment(ctx context.Context, id string, input api.UpdateAppointmentInput) (api.MessageResponse, error) {
	b.record("UpdateAppointment")
	b.updatedAppt = input
	return api.MessageResponse{}, b.mutationErr
}

func (b *stubBackend) DeleteAppointment(ctx context.Context, id string) (api.MessageResponse, error) {
	b.record("DeleteAppointment")
	return api.MessageResponse{}, b.mutationErr
}

func (b *stubBackend) Customers(ctx context.Context) ([]api.Customer, error) {
	b.record("Customers")
	return b.customers, b.customersErr
}

func (b *stubBackend) Customer(ctx context.Context, id string) (api.Customer, error) {
	b.record("Customer")
	c, ok := b.customer[id]
	if !ok {
		return api.Customer{}, &api.Error{Kind: api.KindNotFound, Status: 404}
	}
	return c, nil
}

func (b *stubBackend) CreateCustomer(ctx context.Context, input api.CreateCustomerInput) (api.CreatedResponse, error) {
	b.record("CreateCustomer")
	b.createdCustomer = input
	return b.createResp, b.mutationErr
}

func (b *stubBackend) UpdateCustomer(ctx context.Context, id string, input api.UpdateCustomerInput) (api.MessageResponse, error) {
	b.record("UpdateCustomer")
	b.updatedCustomer = input
	return api.MessageResponse{}, b.mutationErr
}

func (b *stubBackend) DeleteCustomer(ctx context.Context, id string) (api.MessageResponse, error) {
	b.record("DeleteCustomer")
	return api.MessageResponse{}, b.mutationErr
}

func (b *stubBackend) DesignSettings(ctx context.Context) (api.DesignSettings, error) {
	b.record("DesignSettings")
	return b.design, b.designErr
}

type stubConnector struct {
	backend *stubBackend
	baseURL string
	token   string
	inits   int
	resets  int
}

func (c *stubConnector) Backend() Backend { return c.backend }

func (c *stubConnector) Initialize(ctx context.Context, store persistence.KVStore) error {
	c.inits++
	domain, _ := store.Get(ctx, persistence.KeyDomain)
	token, _ := store.Get(ctx, persistence.KeyToken)
	c.baseURL, c.token = domain, token
	return nil
}

func (c *stubConnector) SetBaseURL(domain string) { c.baseURL = domain }

func (c *stubConnector) SetToken(token string) { c.token = token }

func (c *stubConnector) Reset() {
	c.resets++
	c.baseURL, c.token = "", ""
}

// fixture bundles a store and stubs for one test.
type fixture struct {
	kv        *memory.Store
	store     *SessionStore
	backend   *stubBackend
	connector *stubConnector
	perms     *PermissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.New()
	store := NewSessionStore(kv)
	backend := newStubBackend()
	return &fixture{
		kv:        kv,
		store:     store,
		backend:   backend,
		connector: &stubConnector{backend: backend},
		perms:     NewPermissionService(store, DefaultGatePolicy()),
	}
}

// signIn seeds a complete session with profile.
func (f *fixture) signIn(t *testing.T, profile StaffProfile) {
	t.Helper()
	ctx := context.Background()
	mustSet(t, f.kv, persistence.KeyDomain, "https://salon.example.com")
	mustSet(t, f.kv, persistence.KeyToken, "token-1")
	mustSet(t, f.kv, persistence.KeyOnboardingCompleted, "true")
	if err := f.store.SaveStaffProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}
}

func mustSet(t *testing.T, kv persistence.KVStore, key, value string) {
	t.Helper()
	if err := kv.Set(context.Background(), key, value); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func staffWith(id string, perms *api.Permissions) StaffProfile {
	return StaffProfile{ID: api.FlexString(id), Name: "Emma Wilson", Email: "emma@example.com", Permissions: perms}
}

func appt(id, serviceID, startsAt string) api.Appointment {
	return api.Appointment{
		ID:            api.FlexString(id),
		ServiceID:     api.FlexString(serviceID),
		StaffID:       "7",
		CustomerName:  "Sarah Johnson",
		CustomerEmail: "sarah@example.com",
		StartsAt:      startsAt,
		EndsAt:        startsAt,
		Status:        "confirmed",
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
