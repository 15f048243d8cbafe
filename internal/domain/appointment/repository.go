package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment, assigning ID and timestamps.
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if the id is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Update writes every mutable column of a. EndTime is re-derived before saving.
	Update(ctx context.Context, a *Appointment) error

	// UpdateFields writes only the columns set in f, plus UpdatedAt, and
	// returns the stored row.
	UpdateFields(ctx context.Context, id uuid.UUID, f FieldUpdate) (*Appointment, error)

	// Delete removes the appointment and returns the removed row.
	Delete(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// List returns appointments matching q, earliest start first.
	List(ctx context.Context, q *ListAppointmentsQuery) ([]*Appointment, error)

	// ListByClient returns a client's history, most recent start first.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Appointment, error)

	// ListActiveInWindow returns non-cancelled appointments whose start lies in
	// [from, to] inclusive, skipping excludeID when set.
	ListActiveInWindow(ctx context.Context, from, to time.Time, excludeID *uuid.UUID) ([]*Appointment, error)

	// WithinDay runs fn against a repository whose reads and writes are
	// serialized with every other WithinDay call for the same day key.
	// An error from fn rolls back any write fn made.
	WithinDay(ctx context.Context, day string, fn func(repo Repository) error) error
}
