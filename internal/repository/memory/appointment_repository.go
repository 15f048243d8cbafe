package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/google/uuid"
)

type AppointmentRepository struct {
	s *Store
	// undo is set inside WithinDay; each write appends its inverse.
	undo *[]func()
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	a.ID = uuid.New()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Schedule(a.StartTime, a.Duration)
	r.s.appointments[a.ID] = *a

	id := a.ID
	r.record(func() { delete(r.s.appointments, id) })
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.appointments[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.Schedule(a.StartTime, a.Duration)
	a.ClientID = prev.ClientID
	a.CreatedAt = prev.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.s.appointments[a.ID] = *a

	r.record(func() { r.s.appointments[prev.ID] = prev })
	return nil
}

func (r *AppointmentRepository) UpdateFields(ctx context.Context, id uuid.UUID, f appointment.FieldUpdate) (*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	a := prev
	if f.Treatment != nil {
		a.Treatment = *f.Treatment
	}
	if f.Status != nil {
		a.Status = *f.Status
	}
	if f.PaymentStatus != nil {
		a.PaymentStatus = *f.PaymentStatus
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.appointments[id] = a

	r.record(func() { r.s.appointments[prev.ID] = prev })
	return &a, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	delete(r.s.appointments, id)

	r.record(func() { r.s.appointments[a.ID] = a })
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(a *appointment.Appointment) bool {
		if q.From != nil && a.StartTime.Before(*q.From) {
			return false
		}
		if q.To != nil && a.StartTime.After(*q.To) {
			return false
		}
		if q.Status != nil && a.Status != *q.Status {
			return false
		}
		if q.PaymentStatus != nil && a.PaymentStatus != *q.PaymentStatus {
			return false
		}
		if q.ClientName != "" || q.Phone != "" {
			c, ok := r.s.clients[a.ClientID]
			if !ok {
				return false
			}
			if q.ClientName != "" && !containsFold(c.Name, q.ClientName) {
				return false
			}
			if q.Phone != "" && !containsFold(c.Phone, q.Phone) {
				return false
			}
		}
		return true
	})
	sortByStart(out, false)
	return out, nil
}

func (r *AppointmentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(a *appointment.Appointment) bool { return a.ClientID == clientID })
	sortByStart(out, true)
	return out, nil
}

func (r *AppointmentRepository) ListActiveInWindow(ctx context.Context, from, to time.Time, excludeID *uuid.UUID) ([]*appointment.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(a *appointment.Appointment) bool {
		if !a.IsActive() || a.StartTime.Before(from) || a.StartTime.After(to) {
			return false
		}
		return excludeID == nil || a.ID != *excludeID
	})
	sortByStart(out, false)
	return out, nil
}

func (r *AppointmentRepository) WithinDay(ctx context.Context, day string, fn func(repo appointment.Repository) error) error {
	if r.undo != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := r.s.lockDay(day)
	defer unlock()

	var undo []func()
	if err := fn(&AppointmentRepository{s: r.s, undo: &undo}); err != nil {
		r.s.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		r.s.mu.Unlock()
		return err
	}
	return nil
}

func (r *AppointmentRepository) record(inverse func()) {
	if r.undo != nil {
		*r.undo = append(*r.undo, inverse)
	}
}

// filter must run with r.s.mu held.
func (r *AppointmentRepository) filter(keep func(a *appointment.Appointment) bool) []*appointment.Appointment {
	var out []*appointment.Appointment
	for _, a := range r.s.appointments {
		a := a
		if keep(&a) {
			out = append(out, &a)
		}
	}
	return out
}

func sortByStart(list []*appointment.Appointment, desc bool) {
	slices.SortFunc(list, func(a, b *appointment.Appointment) int {
		c := a.StartTime.Compare(b.StartTime)
		if desc {
			return -c
		}
		return c
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
