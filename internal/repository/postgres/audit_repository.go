package postgres

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.Changes == "" {
		entry.Changes = "{}"
	}
	return translate(r.db.WithContext(ctx).Create(entry).Error, nil)
}
