package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrForbidden         = errors.New("forbidden: insufficient permissions")
	ErrUserNotFound      = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Actor identifies the staff member behind a call, for auditing.
type Actor struct {
	UserID    uuid.UUID
	Role      domain.Role
	IPAddress string
	RequestID string
}

type AuditEntry struct {
	Actor        Actor
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      map[string]any
}
