package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/google/uuid"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"missing", &MissingFieldsError{Fields: []string{"clientId"}}, KindMissingFields},
		{"time format", ErrInvalidTimeFormat, KindInvalidTimeFormat},
		{"treatment", fmt.Errorf("%w: %q", ErrInvalidTreatment, "Reiki"), KindInvalidField},
		{"payment", ErrInvalidPaymentStatus, KindInvalidField},
		{"hours", &BusinessHoursError{Boundary: BoundaryEndAfterClose, Hour: 21, Limit: 20}, KindOutsideBusinessHours},
		{"conflict", &ConflictError{AppointmentID: uuid.New()}, KindSlotUnavailable},
		{"wrapped conflict", fmt.Errorf("creating: %w", ErrSlotUnavailable), KindSlotUnavailable},
		{"not found", ErrAppointmentNotFound, KindNotFound},
		{"store", fmt.Errorf("%w: dial tcp", domain.ErrStoreUnavailable), KindStoreUnavailable},
		{"other", context.DeadlineExceeded, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailErrorsUnwrap(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("admit: %w", &ConflictError{AppointmentID: id, Start: at(14, 0), End: at(15, 0)})

	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.AppointmentID != id {
		t.Fatalf("errors.As failed for %v", err)
	}
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Error("conflict does not unwrap to ErrSlotUnavailable")
	}

	missing := &MissingFieldsError{Fields: []string{"treatment", "startTime"}}
	if got := missing.Error(); got != "missing required fields: treatment, startTime" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindIsCallerError(t *testing.T) {
	if KindStoreUnavailable.IsCallerError() || KindInternal.IsCallerError() {
		t.Error("infrastructure kinds reported as caller errors")
	}
	if !KindSlotUnavailable.IsCallerError() || !KindMissingFields.IsCallerError() {
		t.Error("caller kinds not reported as caller errors")
	}
}
