package application

import (
	"context"

	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/persistence"
)

// Backend is the subset of the plugin API the services call. *api.Client
// satisfies it.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	ValidateToken(ctx context.Context) (api.ValidateResponse, error)
	CheckConnection(ctx context.Context) error

	Services(ctx context.Context) ([]api.Service, error)
	Service(ctx context.Context, id string) (api.Service, error)

	Staff(ctx context.Context) ([]api.Staff, error)
	StaffMember(ctx context.Context, id string) (api.Staff, error)
	UpdateStaff(ctx context.Context, id string, input api.UpdateStaffInput) (api.UpdateStaffResponse, error)

	Appointments(ctx context.Context, filter api.AppointmentFilter) ([]api.Appointment, error)
	Appointment(ctx context.Context, id string) (api.Appointment, error)
	CreateAppointment(ctx context.Context, input api.CreateAppointmentInput) (api.CreatedResponse, error)
	UpdateAppointment(ctx context.Context, id string, input api.UpdateAppointmentInput) (api.MessageResponse, error)
	DeleteAppointment(ctx context.Context, id string) (api.MessageResponse, error)

	Customers(ctx context.Context) ([]api.Customer, error)
	Customer(ctx context.Context, id string) (api.Customer, error)
	CreateCustomer(ctx context.Context, input api.CreateCustomerInput) (api.CreatedResponse, error)
	UpdateCustomer(ctx context.Context, id string, input api.UpdateCustomerInput) (api.MessageResponse, error)
	DeleteCustomer(ctx context.Context, id string) (api.MessageResponse, error)

	DesignSettings(ctx context.Context) (api.DesignSettings, error)
}

// Connector owns the mutable addressing state and hands out a Backend bound
// to its current value.
type Connector interface {
	Backend() Backend
	Initialize(ctx context.Context, store persistence.KVStore) error
	SetBaseURL(domain string)
	SetToken(token string)
	Reset()
}

type sessionConnector struct {
	session *api.Session
}

// NewSessionConnector adapts an *api.Session to Connector.
func NewSessionConnector(session *api.Session) Connector {
	return sessionConnector{session: session}
}

func (c sessionConnector) Backend() Backend {
	return c.session.Client()
}

func (c sessionConnector) Initialize(ctx context.Context, store persistence.KVStore) error {
	return c.session.Initialize(ctx, store)
}

func (c sessionConnector) SetBaseURL(domain string) { c.session.SetBaseURL(domain) }

func (c sessionConnector) SetToken(token string) { c.session.SetToken(token) }

func (c sessionConnector) Reset() { c.session.Reset() }
