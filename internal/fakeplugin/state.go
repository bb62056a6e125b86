package fakeplugin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/example/salon-admin/internal/api"
)

type memberRecord struct {
	staff api.Staff
	hash  string
}

type customerRecord struct {
	customer api.Customer
	hash     string
}

// state is the plugin's database.
type state struct {
	mu           sync.RWMutex
	members      map[string]*memberRecord
	services     map[string]api.Service
	appointments map[string]api.Appointment
	customers    map[string]*customerRecord
	design       api.DesignSettings
	license      api.License
	nextID       int
	params       Argon2idParams
}

func newState(data Dataset, params Argon2idParams) (*state, error) {
	s := &state{
		members:      make(map[string]*memberRecord, len(data.Members)),
		services:     make(map[string]api.Service, len(data.Services)),
		appointments: make(map[string]api.Appointment, len(data.Appointments)),
		customers:    make(map[string]*customerRecord, len(data.Customers)),
		design:       data.Design,
		license:      data.License,
		params:       params,
	}

	for _, m := range data.Members {
		hash, err := HashPassword(m.Password, params)
		if err != nil {
			return nil, fmt.Errorf("hash password of staff %s: %w", m.Staff.ID, err)
		}
		s.members[m.Staff.ID.String()] = &memberRecord{staff: m.Staff, hash: hash}
		s.bump(m.Staff.ID.String())
	}
	for _, svc := range data.Services {
		s.services[svc.ID.String()] = svc
		s.bump(svc.ID.String())
	}
	for _, c := range data.Customers {
		s.customers[c.ID.String()] = &customerRecord{customer: c}
		s.bump(c.ID.String())
	}
	for _, a := range data.Appointments {
		s.appointments[a.ID.String()] = a
		s.bump(a.ID.String())
	}
	return s, nil
}

// bump keeps nextID above every numeric id seen.
func (s *state) bump(id string) {
	if n, err := strconv.Atoi(id); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
}

func (s *state) allocateID() string {
	if s.nextID == 0 {
		s.nextID = 1
	}
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func (s *state) memberByEmail(email string) (*memberRecord, bool) {
	for _, m := range s.members {
		if strings.EqualFold(m.staff.Email, email) {
			return m, true
		}
	}
	return nil, false
}

// decorate fills the joined service and staff names.
func (s *state) decorate(a api.Appointment) api.Appointment {
	if svc, ok := s.services[a.ServiceID.String()]; ok {
		a.ServiceName = svc.Name
	}
	if m, ok := s.members[a.StaffID.String()]; ok {
		a.StaffName = m.staff.Name
	}
	return a
}

// publicStaff drops permissions, which the plugin only returns for the
// signed-in member.
func publicStaff(staff api.Staff) api.Staff {
	staff.Permissions = nil
	return staff
}

func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessID(keys[i], keys[j]) })
	return keys
}
