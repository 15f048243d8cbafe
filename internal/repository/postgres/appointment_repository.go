package postgres

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	a.Schedule(a.StartTime, a.Duration)
	err := r.db.WithContext(ctx).Create(a).Error
	if isExclusionViolation(err) {
		return appointment.ErrSlotUnavailable
	}
	return translate(err, nil)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, appointment.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	a.Schedule(a.StartTime, a.Duration)
	a.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"treatment":      a.Treatment,
			"duration_mins":  a.Duration,
			"start_time":     a.StartTime,
			"end_time":       a.EndTime,
			"status":         a.Status,
			"payment_status": a.PaymentStatus,
			"updated_at":     a.UpdatedAt,
		})
	if isExclusionViolation(res.Error) {
		return appointment.ErrSlotUnavailable
	}
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) UpdateFields(ctx context.Context, id uuid.UUID, f appointment.FieldUpdate) (*appointment.Appointment, error) {
	cols := map[string]any{"updated_at": time.Now().UTC()}
	if f.Treatment != nil {
		cols["treatment"] = *f.Treatment
	}
	if f.Status != nil {
		cols["status"] = *f.Status
	}
	if f.PaymentStatus != nil {
		cols["payment_status"] = *f.PaymentStatus
	}

	var updated []appointment.Appointment
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(cols)
	if isExclusionViolation(res.Error) {
		return nil, appointment.ErrSlotUnavailable
	}
	if res.Error != nil {
		return nil, translate(res.Error, nil)
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &updated[0], nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var deleted []appointment.Appointment
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted)
	if res.Error != nil {
		return nil, translate(res.Error, nil)
	}
	if res.RowsAffected == 0 || len(deleted) == 0 {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &deleted[0], nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Appointment, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.ClientName != "" || q.Phone != "" {
		tx = tx.Joins("JOIN spa.clients ON spa.clients.id = spa.appointments.client_id")
		if q.ClientName != "" {
			tx = tx.Where("spa.clients.name ILIKE ?", likePattern(q.ClientName))
		}
		if q.Phone != "" {
			tx = tx.Where("spa.clients.phone ILIKE ?", likePattern(q.Phone))
		}
	}
	if q.From != nil {
		tx = tx.Where("spa.appointments.start_time >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("spa.appointments.start_time <= ?", *q.To)
	}
	if q.Status != nil {
		tx = tx.Where("spa.appointments.status = ?", *q.Status)
	}
	if q.PaymentStatus != nil {
		tx = tx.Where("spa.appointments.payment_status = ?", *q.PaymentStatus)
	}

	var out []*appointment.Appointment
	if err := tx.Order("spa.appointments.start_time ASC").Find(&out).Error; err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

func (r *AppointmentRepository) ListActiveInWindow(ctx context.Context, from, to time.Time, excludeID *uuid.UUID) ([]*appointment.Appointment, error) {
	tx := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", from, to).
		Where("status <> ?", appointment.StatusCancelled)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}

	var out []*appointment.Appointment
	if err := tx.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

// WithinDay holds a transaction-scoped advisory lock on the day key, so
// every instance of the API queues same-day admissions behind each other.
func (r *AppointmentRepository) WithinDay(ctx context.Context, day string, fn func(repo appointment.Repository) error) error {
	var fnErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "spabook:day:"+day).Error; err != nil {
			return err
		}
		fnErr = fn(&AppointmentRepository{db: tx})
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin, lock or commit failed
		return translate(err, nil)
	}
	return err
}
