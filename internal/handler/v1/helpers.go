package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields"`
}

const (
	codeValidationFailed = "VALIDATION_FAILED"
	codeConflict         = "CONFLICT"
	codeUnauthorized     = "UNAUTHORIZED"
	codeForbidden        = "FORBIDDEN"
	codeAccountLocked    = "ACCOUNT_LOCKED"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// statusByKind maps every scheduling error kind onto its HTTP status.
var statusByKind = map[appointment.Kind]int{
	appointment.KindMissingFields:        http.StatusBadRequest,
	appointment.KindInvalidTimeFormat:    http.StatusBadRequest,
	appointment.KindInvalidField:         http.StatusBadRequest,
	appointment.KindOutsideBusinessHours: http.StatusBadRequest,
	appointment.KindSlotUnavailable:      http.StatusConflict,
	appointment.KindNotFound:             http.StatusNotFound,
	appointment.KindStoreUnavailable:     http.StatusServiceUnavailable,
}

func respondServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Code:   codeValidationFailed,
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, client.ErrClientAlreadyExists),
		errors.Is(err, service.ErrUserAlreadyExists):
		respondError(c, http.StatusConflict, codeConflict, err.Error())
		return

	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, codeForbidden, "access denied")
		return

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive):
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		return

	case errors.Is(err, service.ErrAccountLocked):
		respondError(c, http.StatusTooManyRequests, codeAccountLocked, "account temporarily locked")
		return
	}

	kind := appointment.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		respondError(c, http.StatusInternalServerError, string(appointment.KindInternal), "internal server error")
		return
	}
	if kind == appointment.KindStoreUnavailable {
		respondError(c, status, string(kind), "service temporarily unavailable, retry later")
		return
	}

	c.JSON(status, ErrorResponse{Error: err.Error(), Code: string(kind), Details: errorDetails(err)})
}

// errorDetails exposes the structured part of scheduling rejections.
func errorDetails(err error) map[string]string {
	var (
		conflict *appointment.ConflictError
		hours    *appointment.BusinessHoursError
	)
	switch {
	case errors.As(err, &conflict):
		return map[string]string{
			"conflictingAppointmentId": conflict.AppointmentID.String(),
			"conflictStart":            conflict.Start.Format(time.RFC3339),
			"conflictEnd":              conflict.End.Format(time.RFC3339),
		}
	case errors.As(err, &hours):
		return map[string]string{"boundary": string(hours.Boundary)}
	}
	return nil
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, codeValidationFailed, "invalid request: "+err.Error())
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, string(appointment.KindInvalidField), "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom identifies the authenticated caller for the audit trail.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{
		IPAddress: c.ClientIP(),
		RequestID: middleware.RequestIDFrom(c),
	}
	if claims, ok := middleware.ClaimsFrom(c); ok {
		actor.UserID = claims.UserID
		actor.Role = claims.Role
	}
	return actor
}
