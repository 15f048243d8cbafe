package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	resourceAppointment = "appointment"
	maxUpdateAttempts   = 3
)

// errConcurrentUpdate reports that an appointment changed between the read
// an update was planned on and the write. It surfaces only once the retries
// are spent.
var errConcurrentUpdate = fmt.Errorf("%w: appointment changed during update", domain.ErrStoreUnavailable)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/spabook/internal/service")

// AppointmentDetails is an appointment enriched with its client's contact
// data. Client is nil when the directory could not resolve the reference.
type AppointmentDetails struct {
	*appointment.Appointment
	Client *client.Client
}

type AppointmentService struct {
	repo     appointment.Repository
	clients  client.Repository
	hours    appointment.BusinessHours
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	clients client.Repository,
	hours appointment.BusinessHours,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:     repo,
		clients:  clients,
		hours:    hours,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// Admit runs the scheduling engine over cand and persists it when it fits
// the calendar. With excludeID nil a new appointment is created; otherwise
// cand becomes the new schedule of that appointment and the appointment's
// own slot is ignored during the conflict check.
func (s *AppointmentService) Admit(ctx context.Context, cand appointment.Candidate, excludeID *uuid.UUID, actor Actor) (*appointment.Appointment, error) {
	return s.admitAs(ctx, cand, excludeID, time.Time{}, actor)
}

// admitAs is Admit for an update whose caller read the appointment at
// version seen. A non-zero seen that no longer matches the stored row fails
// with errConcurrentUpdate.
func (s *AppointmentService) admitAs(ctx context.Context, cand appointment.Candidate, excludeID *uuid.UUID, seen time.Time, actor Actor) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Admit", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	started := time.Now()

	a, err := s.admit(ctx, cand, excludeID, seen)

	outcome := "admitted"
	if err != nil {
		outcome = string(appointment.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(
		attribute.String("appointment.outcome", outcome),
		attribute.Bool("appointment.update", excludeID != nil),
	)
	if s.metrics != nil {
		s.metrics.AdmissionsTotal.WithLabelValues(outcome).Inc()
		s.metrics.AdmissionDuration.Observe(time.Since(started).Seconds())
	}

	if err != nil {
		s.logRejection(cand, err)
		return nil, err
	}

	action := domain.ActionCreate
	if excludeID != nil {
		action = domain.ActionUpdate
	}
	s.log.Info("appointment admitted",
		zap.String("appointment_id", a.ID.String()),
		zap.String("client_id", a.ClientID.String()),
		zap.Time("start_time", a.StartTime),
		zap.Time("end_time", a.EndTime),
		zap.String("action", string(action)),
	)
	s.auditSvc.LogAsync(AuditEntry{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceAppointment,
		ResourceID:   a.ID.String(),
		Changes: map[string]any{
			"startTime": a.StartTime,
			"duration":  a.Duration,
			"treatment": a.Treatment,
			"status":    a.Status,
		},
	})

	return a, nil
}

func (s *AppointmentService) admit(ctx context.Context, cand appointment.Candidate, excludeID *uuid.UUID, seen time.Time) (*appointment.Appointment, error) {
	if missing := missingFields(cand); len(missing) > 0 {
		return nil, &appointment.MissingFieldsError{Fields: missing}
	}

	start, err := s.hours.ParseStartTime(cand.StartTime)
	if err != nil {
		return nil, err
	}

	if err := validateCategories(&cand.Treatment, &cand.Duration, &cand.Status, &cand.PaymentStatus); err != nil {
		return nil, err
	}

	end := appointment.EndTimeFor(start, cand.Duration)
	if err := s.hours.Validate(start, end); err != nil {
		return nil, err
	}

	from, to := s.hours.DayWindow(start)
	var admitted *appointment.Appointment

	err = s.repo.WithinDay(ctx, s.hours.DayKey(start), func(repo appointment.Repository) error {
		a := &appointment.Appointment{
			ClientID:      cand.ClientID,
			Status:        appointment.StatusConfirmed,
			PaymentStatus: appointment.PaymentUnpaid,
		}
		if excludeID != nil {
			stored, err := repo.GetByID(ctx, *excludeID)
			if err != nil {
				return err
			}
			if !seen.IsZero() && !stored.UpdatedAt.Equal(seen) {
				return errConcurrentUpdate
			}
			a = stored
		}
		a.Treatment = cand.Treatment
		if cand.Status != "" {
			a.Status = cand.Status
		}
		if cand.PaymentStatus != "" {
			a.PaymentStatus = cand.PaymentStatus
		}

		// A cancelled appointment holds no slot, so only the hours apply.
		if a.IsActive() {
			sameDay, err := repo.ListActiveInWindow(ctx, from, to, excludeID)
			if err != nil {
				return fmt.Errorf("listing same-day appointments: %w", err)
			}
			if c := appointment.FindConflict(appointment.Interval{Start: start, End: end}, sameDay); c != nil {
				return &appointment.ConflictError{AppointmentID: c.ID, Start: c.StartTime, End: c.EndTime}
			}
		}

		a.Schedule(start, cand.Duration)
		if excludeID == nil {
			if err := repo.Create(ctx, a); err != nil {
				return fmt.Errorf("creating appointment: %w", err)
			}
		} else if err := repo.Update(ctx, a); err != nil {
			return fmt.Errorf("updating appointment: %w", err)
		}
		admitted = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admitted, nil
}

func (s *AppointmentService) logRejection(cand appointment.Candidate, err error) {
	kind := appointment.KindOf(err)
	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("client_id", cand.ClientID.String()),
		zap.String("start_time", cand.StartTime),
		zap.Error(err),
	}
	if kind.IsCallerError() {
		s.log.Info("appointment rejected", fields...)
		return
	}
	s.log.Error("appointment admission failed", fields...)
}

// UpdateAppointment applies a partial update. Changing the start time or the
// duration, or moving a cancelled appointment back into the calendar, sends
// the merged appointment through Admit again. Any other change writes only
// the columns it names.
//
// Both paths check that the appointment has not changed since it was read
// and start over from a fresh read when it has.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand, actor Actor) (*appointment.Appointment, error) {
	if err := validateCategories(cmd.Treatment, cmd.Duration, cmd.Status, cmd.PaymentStatus); err != nil {
		return nil, err
	}

	var (
		a   *appointment.Appointment
		err error
	)
	for range maxUpdateAttempts {
		a, err = s.updateOnce(ctx, id, cmd, actor)
		if !errors.Is(err, errConcurrentUpdate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) updateOnce(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand, actor Actor) (*appointment.Appointment, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reactivates := !current.IsActive() && cmd.Status != nil && *cmd.Status != appointment.StatusCancelled
	if cmd.Reschedules() || reactivates {
		cand := appointment.Candidate{
			ClientID:  current.ClientID,
			Treatment: current.Treatment,
			Duration:  current.Duration,
			StartTime: current.StartTime.Format(time.RFC3339Nano),
		}
		if cmd.StartTime != nil {
			cand.StartTime = *cmd.StartTime
		}
		if cmd.Duration != nil {
			cand.Duration = *cmd.Duration
		}
		if cmd.Treatment != nil {
			cand.Treatment = *cmd.Treatment
		}
		if cmd.Status != nil {
			cand.Status = *cmd.Status
		}
		if cmd.PaymentStatus != nil {
			cand.PaymentStatus = *cmd.PaymentStatus
		}
		return s.admitAs(ctx, cand, &id, current.UpdatedAt, actor)
	}

	fields := cmd.Fields()
	var updated *appointment.Appointment
	if cmd.Status != nil && *cmd.Status != appointment.StatusCancelled {
		// The row must still be the active one we read, or this write could
		// put a concurrently cancelled appointment back over a new booking.
		err = s.repo.WithinDay(ctx, s.hours.DayKey(current.StartTime), func(repo appointment.Repository) error {
			stored, err := repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !stored.UpdatedAt.Equal(current.UpdatedAt) {
				return errConcurrentUpdate
			}
			updated, err = repo.UpdateFields(ctx, id, fields)
			return err
		})
	} else {
		updated, err = s.repo.UpdateFields(ctx, id, fields)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, errConcurrentUpdate) {
			s.log.Error("failed to update appointment", zap.String("appointment_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	changes := map[string]any{}
	if fields.Treatment != nil {
		changes["treatment"] = *fields.Treatment
	}
	if fields.Status != nil {
		changes["status"] = *fields.Status
	}
	if fields.PaymentStatus != nil {
		changes["paymentStatus"] = *fields.PaymentStatus
	}
	s.auditSvc.LogAsync(AuditEntry{
		Actor:        actor,
		Action:       domain.ActionUpdate,
		ResourceType: resourceAppointment,
		ResourceID:   id.String(),
		Changes:      changes,
	})
	return updated, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetails, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, []*appointment.Appointment{a})[0], nil
}

// ListAppointments returns the calendar filtered by q, earliest first.
func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*AppointmentDetails, error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, &ValidationError{Fields: []string{"endDate must not be before startDate"}}
	}
	list, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, list), nil
}

// ClientHistory returns every appointment of one client, most recent first.
func (s *AppointmentService) ClientHistory(ctx context.Context, clientID uuid.UUID) ([]*AppointmentDetails, error) {
	list, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, list), nil
}

func (s *AppointmentService) DeleteAppointment(ctx context.Context, id uuid.UUID, actor Actor) (*appointment.Appointment, error) {
	a, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment deleted", zap.String("appointment_id", id.String()))
	s.auditSvc.LogAsync(AuditEntry{
		Actor:        actor,
		Action:       domain.ActionDelete,
		ResourceType: resourceAppointment,
		ResourceID:   id.String(),
	})
	return a, nil
}

// enrich attaches client records. A failing directory degrades the response
// instead of failing it.
func (s *AppointmentService) enrich(ctx context.Context, list []*appointment.Appointment) []*AppointmentDetails {
	out := make([]*AppointmentDetails, len(list))
	ids := make([]uuid.UUID, 0, len(list))
	seen := make(map[uuid.UUID]struct{}, len(list))
	for i, a := range list {
		out[i] = &AppointmentDetails{Appointment: a}
		if _, ok := seen[a.ClientID]; !ok {
			seen[a.ClientID] = struct{}{}
			ids = append(ids, a.ClientID)
		}
	}
	if len(ids) == 0 {
		return out
	}

	byID, err := s.clients.GetByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("client directory unavailable, returning appointments without client data", zap.Error(err))
		return out
	}
	for _, d := range out {
		d.Client = byID[d.ClientID]
	}
	return out
}

func missingFields(c appointment.Candidate) []string {
	var missing []string
	if c.ClientID == uuid.Nil {
		missing = append(missing, "clientId")
	}
	if strings.TrimSpace(string(c.Treatment)) == "" {
		missing = append(missing, "treatment")
	}
	if c.Duration == 0 {
		missing = append(missing, "duration")
	}
	if strings.TrimSpace(c.StartTime) == "" {
		missing = append(missing, "startTime")
	}
	return missing
}

// validateCategories checks each given enumeration. Nil pointers and empty
// status values are treated as absent.
func validateCategories(t *appointment.Treatment, d *appointment.Duration, st *appointment.Status, ps *appointment.PaymentStatus) error {
	switch {
	case t != nil && !t.IsValid():
		return fmt.Errorf("%w: %q", appointment.ErrInvalidTreatment, *t)
	case d != nil && !d.IsValid():
		return fmt.Errorf("%w: got %d", appointment.ErrInvalidDuration, *d)
	case st != nil && *st != "" && !st.IsValid():
		return fmt.Errorf("%w: %q", appointment.ErrInvalidStatus, *st)
	case ps != nil && *ps != "" && !ps.IsValid():
		return fmt.Errorf("%w: %q", appointment.ErrInvalidPaymentStatus, *ps)
	}
	return nil
}
