package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return client.ErrClientAlreadyExists
	}
	return translate(err, nil)
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, client.ErrClientNotFound)
	}
	return &c, nil
}

func (r *ClientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*client.Client, error) {
	out := make(map[uuid.UUID]*client.Client, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []*client.Client
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err, nil)
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

func (r *ClientRepository) Search(ctx context.Context, term string) ([]*client.Client, error) {
	tx := r.db.WithContext(ctx)
	if term = strings.TrimSpace(term); term != "" {
		p := likePattern(term)
		tx = tx.Where("name ILIKE ? OR email ILIKE ?", p, p)
	}

	var out []*client.Client
	if err := tx.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

func (r *ClientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, translate(err, nil)
	}
	return count > 0, nil
}
