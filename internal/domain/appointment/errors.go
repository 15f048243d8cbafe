package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidTimeFormat    = errors.New("invalid startTime format, use ISO 8601 (e.g. 2025-03-15T14:00:00Z)")
	ErrInvalidTreatment     = errors.New("invalid treatment")
	ErrInvalidDuration      = errors.New("duration must be one of 30, 60, 90 or 120 minutes")
	ErrInvalidStatus        = errors.New("invalid appointment status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrOutsideBusinessHours = errors.New("appointments must be within business hours")
	ErrSlotUnavailable      = errors.New("this time slot is unavailable due to an existing appointment")
	ErrAppointmentNotFound  = fmt.Errorf("appointment %w", domain.ErrNotFound)
)

// Kind classifies every error the scheduling engine can return.
type Kind string

const (
	KindMissingFields        Kind = "MISSING_FIELDS"
	KindInvalidTimeFormat    Kind = "INVALID_TIME_FORMAT"
	KindInvalidField         Kind = "INVALID_FIELD"
	KindOutsideBusinessHours Kind = "OUTSIDE_BUSINESS_HOURS"
	KindSlotUnavailable      Kind = "SLOT_UNAVAILABLE"
	KindNotFound             Kind = "NOT_FOUND"
	KindStoreUnavailable     Kind = "STORE_UNAVAILABLE"
	KindInternal             Kind = "INTERNAL"
)

// IsCallerError reports whether the caller can fix the request and resubmit.
func (k Kind) IsCallerError() bool {
	switch k {
	case KindMissingFields, KindInvalidTimeFormat, KindInvalidField, KindOutsideBusinessHours, KindSlotUnavailable, KindNotFound:
		return true
	}
	return false
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFields):
		return KindMissingFields
	case errors.Is(err, ErrInvalidTimeFormat):
		return KindInvalidTimeFormat
	case errors.Is(err, ErrInvalidTreatment),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPaymentStatus):
		return KindInvalidField
	case errors.Is(err, ErrOutsideBusinessHours):
		return KindOutsideBusinessHours
	case errors.Is(err, ErrSlotUnavailable):
		return KindSlotUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return KindStoreUnavailable
	}
	return KindInternal
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

type Boundary string

const (
	BoundaryStartBeforeOpen Boundary = "start_before_open"
	BoundaryStartAfterClose Boundary = "start_after_close"
	BoundaryEndAfterClose   Boundary = "end_after_close"
)

// BusinessHoursError names the opening-hours boundary a candidate crossed.
type BusinessHoursError struct {
	Boundary Boundary
	Hour     int // offending local hour
	Limit    int // opening or closing hour it was compared against
}

func (e *BusinessHoursError) Error() string {
	return fmt.Sprintf("%s: %s (hour %d, limit %d)", ErrOutsideBusinessHours, e.Boundary, e.Hour, e.Limit)
}

func (e *BusinessHoursError) Unwrap() error { return ErrOutsideBusinessHours }

// ConflictError identifies the appointment occupying the requested slot.
// It carries the time range only, never the other client's details.
type ConflictError struct {
	AppointmentID uuid.UUID
	Start         time.Time
	End           time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (%s, %s - %s)", ErrSlotUnavailable, e.AppointmentID,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error { return ErrSlotUnavailable }
