// Package memory keeps every aggregate in process memory. It backs
// DB_DRIVER=memory and the service and handler tests, and honours the same
// contracts as the postgres repositories, including per-day admission locks.
package memory

import (
	"sync"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/google/uuid"
)

type Store struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]appointment.Appointment
	clients      map[uuid.UUID]client.Client
	users        map[uuid.UUID]domain.User
	audit        []domain.AuditLog

	daysMu sync.Mutex
	days   map[string]*dayLock
}

type dayLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]appointment.Appointment),
		clients:      make(map[uuid.UUID]client.Client),
		users:        make(map[uuid.UUID]domain.User),
		days:         make(map[string]*dayLock),
	}
}

func (s *Store) Appointments() *AppointmentRepository { return &AppointmentRepository{s: s} }
func (s *Store) Clients() *ClientRepository           { return &ClientRepository{s: s} }
func (s *Store) Users() *UserRepository               { return &UserRepository{s: s} }
func (s *Store) Audit() *AuditRepository              { return &AuditRepository{s: s} }

// lockDay blocks until the caller owns key; the returned func releases it.
// Entries are dropped once nobody holds or waits for them.
func (s *Store) lockDay(key string) func() {
	s.daysMu.Lock()
	l, ok := s.days[key]
	if !ok {
		l = &dayLock{}
		s.days[key] = l
	}
	l.refs++
	s.daysMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.daysMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.days, key)
		}
		s.daysMu.Unlock()
	}
}
