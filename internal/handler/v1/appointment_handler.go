package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	svc   *service.AppointmentService
	hours appointment.BusinessHours
}

func NewAppointmentHandler(svc *service.AppointmentService, hours appointment.BusinessHours) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, hours: hours}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cand := appointment.Candidate{
		Treatment:     appointment.Treatment(strings.TrimSpace(req.Treatment)),
		Duration:      appointment.Duration(req.Duration),
		StartTime:     req.StartTime,
		Status:        appointment.Status(req.Status),
		PaymentStatus: appointment.PaymentStatus(req.PaymentStatus),
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, string(appointment.KindInvalidField), "invalid clientId: must be a valid UUID")
			return
		}
		cand.ClientID = id
	}

	a, err := h.svc.Admit(c.Request.Context(), cand, nil, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toAppointmentResponse(a, nil))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(d.Appointment, d.Client))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q, err := h.listQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list, err := h.svc.ListAppointments(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDetailResponses(list))
}

func (h *AppointmentHandler) ClientHistory(c *gin.Context) {
	clientID, ok := parseUUID(c, "clientId")
	if !ok {
		return
	}

	list, err := h.svc.ClientHistory(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDetailResponses(list))
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.UpdateAppointment(c.Request.Context(), id, req.toCommand(), actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a, nil))
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteAppointment(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Message: "appointment deleted"})
}

// listQuery reads the calendar filters. Dates may be full timestamps or
// plain days; a plain endDate covers that whole day.
func (h *AppointmentHandler) listQuery(c *gin.Context) (*appointment.ListAppointmentsQuery, error) {
	q := &appointment.ListAppointmentsQuery{
		ClientName: strings.TrimSpace(c.Query("clientName")),
		Phone:      strings.TrimSpace(c.Query("phone")),
	}

	if raw := c.Query("startDate"); raw != "" {
		from, _, err := h.parseDate(raw)
		if err != nil {
			return nil, err
		}
		q.From = &from
	}
	if raw := c.Query("endDate"); raw != "" {
		to, dayOnly, err := h.parseDate(raw)
		if err != nil {
			return nil, err
		}
		if dayOnly {
			_, to = h.hours.DayWindow(to)
		}
		q.To = &to
	}

	if raw := c.Query("status"); raw != "" {
		s := appointment.Status(raw)
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: %q", appointment.ErrInvalidStatus, raw)
		}
		q.Status = &s
	}
	if raw := c.Query("paymentStatus"); raw != "" {
		p := appointment.PaymentStatus(raw)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: %q", appointment.ErrInvalidPaymentStatus, raw)
		}
		q.PaymentStatus = &p
	}
	return q, nil
}

func (h *AppointmentHandler) parseDate(raw string) (time.Time, bool, error) {
	loc := h.hours.Location
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, true, nil
	}
	t, err := h.hours.ParseStartTime(raw)
	return t, false, err
}
