package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Treatment string

const (
	TreatmentHotStoneMassage     Treatment = "Hot Stone Massage"
	TreatmentDeepTissueMassage   Treatment = "Deep Tissue Massage"
	TreatmentAromatherapyMassage Treatment = "Aromatherapy Massage"
	TreatmentFacial              Treatment = "Facial"
)

func (t Treatment) IsValid() bool {
	switch t {
	case TreatmentHotStoneMassage, TreatmentDeepTissueMassage, TreatmentAromatherapyMassage, TreatmentFacial:
		return true
	}
	return false
}

// Duration is an appointment length in minutes.
type Duration int

const (
	Duration30  Duration = 30
	Duration60  Duration = 60
	Duration90  Duration = 90
	Duration120 Duration = 120
)

func (d Duration) IsValid() bool {
	switch d {
	case Duration30, Duration60, Duration90, Duration120:
		return true
	}
	return false
}

func (d Duration) Std() time.Duration {
	return time.Duration(d) * time.Minute
}

// Only Cancelled takes an appointment out of the calendar; the other two
// statuses occupy their slot.
type Status string

const (
	StatusConfirmed  Status = "Confirmed"
	StatusInProgress Status = "In Progress"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusInProgress, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPending PaymentStatus = "Pending"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPaid, PaymentUnpaid, PaymentPending:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// ClientID references the client directory; the appointment does not own the record.
	ClientID uuid.UUID `gorm:"column:client_id;type:uuid;not null;index"`

	Treatment Treatment `gorm:"column:treatment;type:varchar(50);not null"`
	Duration  Duration  `gorm:"column:duration_mins;not null"`
	StartTime time.Time `gorm:"column:start_time;not null;index"`
	// EndTime is always StartTime + Duration. Set it through Schedule only.
	EndTime time.Time `gorm:"column:end_time;not null"`

	Status        Status        `gorm:"column:status;type:varchar(30);not null;default:'Confirmed';index"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null;default:'Unpaid'"`
}

func (Appointment) TableName() string {
	return "spa.appointments"
}

// EndTimeFor derives the end of an appointment starting at start.
func EndTimeFor(start time.Time, d Duration) time.Time {
	return start.Add(d.Std())
}

// Schedule moves the appointment and recomputes its end.
func (a *Appointment) Schedule(start time.Time, d Duration) {
	a.StartTime = start
	a.Duration = d
	a.EndTime = EndTimeFor(start, d)
}

func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// Candidate is the raw input of an admission. StartTime stays a string
// so that unparseable input is reported as its own rejection kind.
type Candidate struct {
	ClientID      uuid.UUID
	Treatment     Treatment
	Duration      Duration
	StartTime     string
	Status        Status        // zero value means Confirmed
	PaymentStatus PaymentStatus // zero value means Unpaid
}

// UpdateAppointmentCommand carries a partial update. Nil fields are left untouched.
type UpdateAppointmentCommand struct {
	StartTime     *string
	Duration      *Duration
	Treatment     *Treatment
	Status        *Status
	PaymentStatus *PaymentStatus
}

// Reschedules reports whether applying the command moves the appointment in time.
func (c *UpdateAppointmentCommand) Reschedules() bool {
	return c.StartTime != nil || c.Duration != nil
}

// Fields returns the part of the command that leaves the schedule alone.
func (c *UpdateAppointmentCommand) Fields() FieldUpdate {
	return FieldUpdate{Treatment: c.Treatment, Status: c.Status, PaymentStatus: c.PaymentStatus}
}

// FieldUpdate names the columns a direct update may touch. Nil fields are
// left untouched; the schedule columns are never written.
type FieldUpdate struct {
	Treatment     *Treatment
	Status        *Status
	PaymentStatus *PaymentStatus
}

type ListAppointmentsQuery struct {
	From          *time.Time
	To            *time.Time
	Status        *Status
	PaymentStatus *PaymentStatus
	ClientName    string // case-insensitive substring
	Phone         string // case-insensitive substring
}
