package memory

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/google/uuid"
)

type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = uuid.New()
	entry.OccurredAt = time.Now().UTC()
	if entry.Changes == "" {
		entry.Changes = "{}"
	}
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

// Entries returns a snapshot of everything written so far, oldest first.
func (r *AuditRepository) Entries() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.AuditLog(nil), r.s.audit...)
}
