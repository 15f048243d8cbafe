package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type harness struct {
	store   *memory.Store
	metrics *metrics.Collector
	audit   *service.AuditService
	appts   *service.AppointmentService
	clients *service.ClientService
	actor   service.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, memory.NewStore(), appointment.DefaultBusinessHours())
}

func newHarnessWith(t *testing.T, store *memory.Store, hours appointment.BusinessHours) *harness {
	t.Helper()
	log := zap.NewNop()
	m := metrics.NewCollector("spabook_test", prometheus.NewRegistry())
	audit := service.NewAuditService(store.Audit(), m, log)
	t.Cleanup(audit.Shutdown)

	return &harness{
		store:   store,
		metrics: m,
		audit:   audit,
		appts:   service.NewAppointmentService(store.Appointments(), store.Clients(), hours, audit, m, log),
		clients: service.NewClientService(store.Clients(), audit, m, log),
		actor:   service.Actor{UserID: uuid.New(), Role: domain.RoleReceptionist, RequestID: "test"},
	}
}

func (h *harness) client(t *testing.T, name, email string) *client.Client {
	t.Helper()
	c, err := h.clients.CreateClient(context.Background(), &client.CreateClientCommand{Name: name, Email: email, Phone: "555-0100"}, h.actor)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return c
}

func (h *harness) admit(t *testing.T, clientID uuid.UUID, start string, d appointment.Duration) *appointment.Appointment {
	t.Helper()
	a, err := h.appts.Admit(context.Background(), candidate(clientID, start, d), nil, h.actor)
	if err != nil {
		t.Fatalf("Admit(%s, %d): %v", start, d, err)
	}
	return a
}

func candidate(clientID uuid.UUID, start string, d appointment.Duration) appointment.Candidate {
	return appointment.Candidate{
		ClientID:  clientID,
		Treatment: appointment.TreatmentFacial,
		Duration:  d,
		StartTime: start,
	}
}

func ptr[T any](v T) *T { return &v }

func TestAdmitScenario(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, "Ada", "ada@example.com")
	existing := h.admit(t, c.ID, "2025-03-15T14:00:00Z", appointment.Duration60)

	if existing.Status != appointment.StatusConfirmed || existing.PaymentStatus != appointment.PaymentUnpaid {
		t.Errorf("defaults = %q/%q", existing.Status, existing.PaymentStatus)
	}
	if want := time.Date(2025, 3, 15, 15, 0, 0, 0, time.UTC); !existing.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", existing.EndTime, want)
	}

	tests := []struct {
		name  string
		start string
		want  appointment.Kind
	}{
		{"overlaps existing", "2025-03-15T14:30:00Z", appointment.KindSlotUnavailable},
		{"touches existing end", "2025-03-15T15:00:00Z", ""},
		{"before opening", "2025-03-15T07:00:00Z", appointment.KindOutsideBusinessHours},
		{"unparseable", "not-a-date", appointment.KindInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.appts.Admit(context.Background(), candidate(c.ID, tt.start, appointment.Duration30), nil, h.actor)
			if got := appointment.KindOf(err); got != tt.want {
				t.Fatalf("KindOf(%v) = %q, want %q", err, got, tt.want)
			}
		})
	}

	t.Run("conflict names the occupying appointment", func(t *testing.T) {
		_, err := h.appts.Admit(context.Background(), candidate(c.ID, "2025-03-15T13:30:00Z", appointment.Duration60), nil, h.actor)
		var conflict *appointment.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("err = %v, want *ConflictError", err)
		}
		if conflict.AppointmentID != existing.ID {
			t.Errorf("AppointmentID = %s, want %s", conflict.AppointmentID, existing.ID)
		}
		if !conflict.Start.Equal(existing.StartTime) || !conflict.End.Equal(existing.EndTime) {
			t.Errorf("range = %v-%v", conflict.Start, conflict.End)
		}
	})

	if got := testutil.ToFloat64(h.metrics.AdmissionsTotal.WithLabelValues("admitted")); got != 2 {
		t.Errorf("admitted count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.metrics.AdmissionsTotal.WithLabelValues(string(appointment.KindSlotUnavailable))); got != 2 {
		t.Errorf("slot unavailable count = %v, want 2", got)
	}
}

func TestAdmitMissingFields(t *testing.T) {
	h := newHarness(t)

	_, err := h.appts.Admit(context.Background(), appointment.Candidate{}, nil, h.actor)

	var missing *appointment.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *MissingFieldsError", err)
	}
	want := []string{"clientId", "treatment", "duration", "startTime"}
	if fmt.Sprint(missing.Fields) != fmt.Sprint(want) {
		t.Errorf("Fields = %v, want %v", missing.Fields, want)
	}
	if appointment.KindOf(err) != appointment.KindMissingFields {
		t.Errorf("KindOf = %q", appointment.KindOf(err))
	}
}

func TestAdmitInvalidFields(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	tests := []struct {
		name string
		mod  func(c *appointment.Candidate)
		want error
	}{
		{"treatment", func(c *appointment.Candidate) { c.Treatment = "Reiki" }, appointment.ErrInvalidTreatment},
		{"duration", func(c *appointment.Candidate) { c.Duration = 45 }, appointment.ErrInvalidDuration},
		{"status", func(c *appointment.Candidate) { c.Status = "Done" }, appointment.ErrInvalidStatus},
		{"payment status", func(c *appointment.Candidate) { c.PaymentStatus = "Refunded" }, appointment.ErrInvalidPaymentStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate(id, "2025-03-15T10:00:00Z", appointment.Duration60)
			tt.mod(&c)
			_, err := h.appts.Admit(context.Background(), c, nil, h.actor)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if appointment.KindOf(err) != appointment.KindInvalidField {
				t.Errorf("KindOf = %q", appointment.KindOf(err))
			}
		})
	}
}

func TestAdmitBusinessHourBoundaries(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	tests := []struct {
		name     string
		start    string
		duration appointment.Duration
		boundary appointment.Boundary
	}{
		{"start at closing hour, end half past", "2025-04-01T20:00:00Z", appointment.Duration30, ""},
		{"end at 21:00", "2025-04-02T19:30:00Z", appointment.Duration90, appointment.BoundaryEndAfterClose},
		{"start at 21:00", "2025-04-03T21:00:00Z", appointment.Duration30, appointment.BoundaryStartAfterClose},
		{"start 07:59", "2025-04-04T07:59:00Z", appointment.Duration30, appointment.BoundaryStartBeforeOpen},
		{"start at opening", "2025-04-05T08:00:00Z", appointment.Duration120, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.appts.Admit(context.Background(), candidate(id, tt.start, tt.duration), nil, h.actor)
			if tt.boundary == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var bh *appointment.BusinessHoursError
			if !errors.As(err, &bh) {
				t.Fatalf("err = %v, want *BusinessHoursError", err)
			}
			if bh.Boundary != tt.boundary {
				t.Errorf("Boundary = %q, want %q", bh.Boundary, tt.boundary)
			}
		})
	}
}

func TestAdmitLocalTimeInBusinessLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	h := newHarnessWith(t, memory.NewStore(), appointment.BusinessHours{Location: loc, OpenHour: 8, CloseHour: 20})
	id := uuid.New()

	a := h.admit(t, id, "2025-03-15T09:00", appointment.Duration60)
	if got := a.StartTime.UTC().Hour(); got != 7 {
		t.Errorf("UTC start hour = %d, want 7", got)
	}

	// 07:30Z is 09:30 local and overlaps the appointment above.
	_, err := h.appts.Admit(context.Background(), candidate(id, "2025-03-15T07:30:00Z", appointment.Duration30), nil, h.actor)
	if !errors.Is(err, appointment.ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestCancelledAppointmentsDoNotBlock(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	a := h.admit(t, id, "2025-03-15T10:00:00Z", appointment.Duration60)

	if _, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		Status: ptr(appointment.StatusCancelled),
	}, h.actor); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	h.admit(t, id, "2025-03-15T10:00:00Z", appointment.Duration60)
}

func TestUpdateRescheduleExcludesItself(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	a := h.admit(t, id, "2025-03-15T10:00:00Z", appointment.Duration60)
	b := h.admit(t, id, "2025-03-15T12:00:00Z", appointment.Duration60)

	got, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		Duration: ptr(appointment.Duration90),
	}, h.actor)
	if err != nil {
		t.Fatalf("extending into own slot: %v", err)
	}
	if want := time.Date(2025, 3, 15, 11, 30, 0, 0, time.UTC); !got.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, want)
	}

	_, err = h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		StartTime: ptr("2025-03-15T11:30:00Z"),
	}, h.actor)
	var conflict *appointment.ConflictError
	if !errors.As(err, &conflict) || conflict.AppointmentID != b.ID {
		t.Fatalf("err = %v, want conflict with %s", err, b.ID)
	}

	// The rejected update must leave the stored appointment untouched.
	stored, err := h.appts.GetAppointment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if stored.Duration != appointment.Duration90 || stored.StartTime.Hour() != 10 {
		t.Errorf("stored = %s/%d, want 10:00/90", stored.StartTime, stored.Duration)
	}
}

func TestStatusOnlyUpdateSkipsAdmission(t *testing.T) {
	store := memory.NewStore()
	h := newHarnessWith(t, store, appointment.DefaultBusinessHours())
	a := h.admit(t, uuid.New(), "2025-03-15T19:00:00Z", appointment.Duration60)

	// Hours shrink after booking; payment updates must still go through.
	narrow := newHarnessWith(t, store, appointment.BusinessHours{Location: time.UTC, OpenHour: 8, CloseHour: 12})
	got, err := narrow.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		PaymentStatus: ptr(appointment.PaymentPaid),
		Status:        ptr(appointment.StatusInProgress),
	}, h.actor)
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if got.PaymentStatus != appointment.PaymentPaid || got.Status != appointment.StatusInProgress {
		t.Errorf("got %q/%q", got.Status, got.PaymentStatus)
	}
	if !got.EndTime.Equal(a.EndTime) {
		t.Errorf("EndTime changed: %v -> %v", a.EndTime, got.EndTime)
	}
}

func TestUpdateReactivationRunsAdmission(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	a := h.admit(t, id, "2025-03-15T10:00:00Z", appointment.Duration60)

	if _, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		Status: ptr(appointment.StatusCancelled),
	}, h.actor); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	taker := h.admit(t, id, "2025-03-15T10:30:00Z", appointment.Duration30)

	_, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		Status: ptr(appointment.StatusConfirmed),
	}, h.actor)
	var conflict *appointment.ConflictError
	if !errors.As(err, &conflict) || conflict.AppointmentID != taker.ID {
		t.Fatalf("err = %v, want conflict with %s", err, taker.ID)
	}
}

// interleavingAppointments runs each hook once, on the same goroutine, just before the matching
// call reaches the store, to stage a competing request at that point.
type interleavingAppointments struct {
	appointment.Repository
	beforeUpdateFields func()
	beforeWithinDay    func()
}

func (r *interleavingAppointments) UpdateFields(ctx context.Context, id uuid.UUID, f appointment.FieldUpdate) (*appointment.Appointment, error) {
	if hook := r.beforeUpdateFields; hook != nil {
		r.beforeUpdateFields = nil
		hook()
	}
	return r.Repository.UpdateFields(ctx, id, f)
}

func (r *interleavingAppointments) WithinDay(ctx context.Context, day string, fn func(appointment.Repository) error) error {
	if hook := r.beforeWithinDay; hook != nil {
		r.beforeWithinDay = nil
		hook()
	}
	return r.Repository.WithinDay(ctx, day, fn)
}

func newInterleavedService(t *testing.T) (*service.AppointmentService, *interleavingAppointments) {
	t.Helper()
	store := memory.NewStore()
	repo := &interleavingAppointments{Repository: store.Appointments()}
	audit := service.NewAuditService(store.Audit(), nil, zap.NewNop())
	t.Cleanup(audit.Shutdown)
	svc := service.NewAppointmentService(repo, store.Clients(), appointment.DefaultBusinessHours(), audit, nil, zap.NewNop())
	return svc, repo
}

func TestPaymentUpdateKeepsConcurrentReschedule(t *testing.T) {
	svc, repo := newInterleavedService(t)
	ctx := context.Background()

	x, err := svc.Admit(ctx, candidate(uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60), nil, service.Actor{})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}

	var other *appointment.Appointment
	repo.beforeUpdateFields = func() {
		if _, err := svc.UpdateAppointment(ctx, x.ID, &appointment.UpdateAppointmentCommand{
			StartTime: ptr("2025-03-15T15:00:00Z"),
		}, service.Actor{}); err != nil {
			t.Errorf("reschedule: %v", err)
		}
		other, err = svc.Admit(ctx, candidate(uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60), nil, service.Actor{})
		if err != nil {
			t.Errorf("book freed slot: %v", err)
		}
	}

	got, err := svc.UpdateAppointment(ctx, x.ID, &appointment.UpdateAppointmentCommand{
		PaymentStatus: ptr(appointment.PaymentPaid),
	}, service.Actor{})
	if err != nil {
		t.Fatalf("payment update: %v", err)
	}
	if got.PaymentStatus != appointment.PaymentPaid {
		t.Errorf("PaymentStatus = %q", got.PaymentStatus)
	}

	stored, err := svc.GetAppointment(ctx, x.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if stored.StartTime.Hour() != 15 || stored.EndTime.Hour() != 16 {
		t.Errorf("stored = %s-%s, want 15:00-16:00", stored.StartTime, stored.EndTime)
	}
	if other == nil || appointment.Overlaps(stored.Interval(), other.Interval()) {
		t.Errorf("appointments overlap: %v and %v", stored.Interval(), other)
	}
}

func TestStatusUpdateRechecksConcurrentCancel(t *testing.T) {
	svc, repo := newInterleavedService(t)
	ctx := context.Background()

	x, err := svc.Admit(ctx, candidate(uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60), nil, service.Actor{})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}

	var taker *appointment.Appointment
	repo.beforeWithinDay = func() {
		if _, err := svc.UpdateAppointment(ctx, x.ID, &appointment.UpdateAppointmentCommand{
			Status: ptr(appointment.StatusCancelled),
		}, service.Actor{}); err != nil {
			t.Errorf("cancel: %v", err)
		}
		taker, err = svc.Admit(ctx, candidate(uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60), nil, service.Actor{})
		if err != nil {
			t.Errorf("book freed slot: %v", err)
		}
	}

	_, err = svc.UpdateAppointment(ctx, x.ID, &appointment.UpdateAppointmentCommand{
		Status: ptr(appointment.StatusInProgress),
	}, service.Actor{})
	var conflict *appointment.ConflictError
	if !errors.As(err, &conflict) || taker == nil || conflict.AppointmentID != taker.ID {
		t.Fatalf("err = %v, want conflict with the new booking", err)
	}

	stored, err := svc.GetAppointment(ctx, x.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if stored.Status != appointment.StatusCancelled {
		t.Errorf("Status = %q, want Cancelled", stored.Status)
	}
}

func TestRescheduleCancelledSkipsConflictCheck(t *testing.T) {
	h := newHarness(t)
	a := h.admit(t, uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60)
	if _, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		Status: ptr(appointment.StatusCancelled),
	}, h.actor); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	h.admit(t, uuid.New(), "2025-03-15T14:00:00Z", appointment.Duration60)

	got, err := h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		StartTime: ptr("2025-03-15T14:30:00Z"),
	}, h.actor)
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if got.Status != appointment.StatusCancelled || got.StartTime.Hour() != 14 {
		t.Errorf("got %q at %s", got.Status, got.StartTime)
	}

	_, err = h.appts.UpdateAppointment(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{
		StartTime: ptr("2025-03-15T21:30:00Z"),
	}, h.actor)
	if got := appointment.KindOf(err); got != appointment.KindOutsideBusinessHours {
		t.Fatalf("KindOf(%v) = %q, want hours still enforced", err, got)
	}
}

func TestUpdateValidatesFields(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		id   uuid.UUID
		cmd  *appointment.UpdateAppointmentCommand
		want appointment.Kind
	}{
		{"unknown id", uuid.New(), &appointment.UpdateAppointmentCommand{Status: ptr(appointment.StatusConfirmed)}, appointment.KindNotFound},
		{"bad status", uuid.New(), &appointment.UpdateAppointmentCommand{Status: ptr(appointment.Status("Done"))}, appointment.KindInvalidField},
		{"bad duration", uuid.New(), &appointment.UpdateAppointmentCommand{Duration: ptr(appointment.Duration(15))}, appointment.KindInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.appts.UpdateAppointment(context.Background(), tt.id, tt.cmd, h.actor)
			if got := appointment.KindOf(err); got != tt.want {
				t.Fatalf("KindOf(%v) = %q, want %q", err, got, tt.want)
			}
		})
	}
}

func TestConcurrentAdmissionsAdmitOne(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		other    []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.appts.Admit(context.Background(), candidate(id, "2025-03-15T10:00:00Z", appointment.Duration60), nil, h.actor)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case !errors.Is(err, appointment.ErrSlotUnavailable):
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Errorf("admitted = %d, want 1", admitted)
	}
	if len(other) > 0 {
		t.Errorf("unexpected errors: %v", other)
	}
}

type failingAppointments struct {
	appointment.Repository
}

func (failingAppointments) WithinDay(context.Context, string, func(appointment.Repository) error) error {
	return fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
}

func TestAdmitStoreUnavailable(t *testing.T) {
	store := memory.NewStore()
	audit := service.NewAuditService(store.Audit(), nil, zap.NewNop())
	t.Cleanup(audit.Shutdown)
	svc := service.NewAppointmentService(failingAppointments{store.Appointments()}, store.Clients(),
		appointment.DefaultBusinessHours(), audit, nil, zap.NewNop())

	_, err := svc.Admit(context.Background(), candidate(uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60), nil, service.Actor{})
	if got := appointment.KindOf(err); got != appointment.KindStoreUnavailable {
		t.Fatalf("KindOf(%v) = %q", err, got)
	}
	if appointment.KindOf(err).IsCallerError() {
		t.Error("store failure reported as caller error")
	}
}

type failingDirectory struct {
	client.Repository
}

func (failingDirectory) GetByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]*client.Client, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestListDegradesWithoutDirectory(t *testing.T) {
	store := memory.NewStore()
	h := newHarnessWith(t, store, appointment.DefaultBusinessHours())
	h.admit(t, uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60)

	svc := service.NewAppointmentService(store.Appointments(), failingDirectory{store.Clients()},
		appointment.DefaultBusinessHours(), h.audit, nil, zap.NewNop())
	got, err := svc.ListAppointments(context.Background(), &appointment.ListAppointmentsQuery{})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(got) != 1 || got[0].Client != nil {
		t.Fatalf("got %d appointments, client = %v", len(got), got)
	}
}

func TestListAndHistory(t *testing.T) {
	h := newHarness(t)
	ada := h.client(t, "Ada Lovelace", "ada@example.com")
	bob := h.client(t, "Bob Marley", "bob@example.com")

	first := h.admit(t, ada.ID, "2025-03-15T09:00:00Z", appointment.Duration60)
	h.admit(t, bob.ID, "2025-03-15T11:00:00Z", appointment.Duration60)
	last := h.admit(t, ada.ID, "2025-03-16T09:00:00Z", appointment.Duration60)

	t.Run("filter by client name", func(t *testing.T) {
		got, err := h.appts.ListAppointments(context.Background(), &appointment.ListAppointmentsQuery{ClientName: "lovelace"})
		if err != nil {
			t.Fatalf("ListAppointments: %v", err)
		}
		if len(got) != 2 || got[0].ID != first.ID || got[1].ID != last.ID {
			t.Fatalf("got %+v", got)
		}
		if got[0].Client == nil || got[0].Client.Email != "ada@example.com" {
			t.Errorf("Client = %+v", got[0].Client)
		}
	})

	t.Run("filter by date range", func(t *testing.T) {
		from := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)
		got, err := h.appts.ListAppointments(context.Background(), &appointment.ListAppointmentsQuery{From: &from, To: &to})
		if err != nil {
			t.Fatalf("ListAppointments: %v", err)
		}
		if len(got) != 1 || got[0].ClientID != bob.ID {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		from := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
		to := from.Add(-time.Hour)
		_, err := h.appts.ListAppointments(context.Background(), &appointment.ListAppointmentsQuery{From: &from, To: &to})
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})

	t.Run("history most recent first", func(t *testing.T) {
		got, err := h.appts.ClientHistory(context.Background(), ada.ID)
		if err != nil {
			t.Fatalf("ClientHistory: %v", err)
		}
		if len(got) != 2 || got[0].ID != last.ID || got[1].ID != first.ID {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestDeleteAppointment(t *testing.T) {
	h := newHarness(t)
	a := h.admit(t, uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60)

	deleted, err := h.appts.DeleteAppointment(context.Background(), a.ID, h.actor)
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if deleted.ID != a.ID {
		t.Errorf("deleted %s, want %s", deleted.ID, a.ID)
	}

	_, err = h.appts.DeleteAppointment(context.Background(), a.ID, h.actor)
	if !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	// The freed slot is bookable again.
	h.admit(t, uuid.New(), "2025-03-15T10:00:00Z", appointment.Duration60)
}
