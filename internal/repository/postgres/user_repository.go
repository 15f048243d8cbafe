package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return service.ErrUserAlreadyExists
	}
	return translate(err, nil)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err, service.ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, service.ErrUserNotFound)
	}
	return &u, nil
}

// UpdateLoginAttempt resets the failure counter on success. On failure it
// increments the counter and locks the account once it reaches maxFailures.
func (r *UserRepository) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool, maxFailures int, lockFor time.Duration) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id)

	if success {
		return translate(tx.Updates(map[string]any{
			"failed_login_count": 0,
			"locked_until":       nil,
			"last_login_at":      now,
		}).Error, nil)
	}

	return translate(tx.Updates(map[string]any{
		"failed_login_count": gorm.Expr("failed_login_count + 1"),
		"locked_until": gorm.Expr(
			"CASE WHEN failed_login_count + 1 >= ? THEN ?::timestamptz ELSE locked_until END",
			maxFailures, now.Add(lockFor),
		),
	}).Error, nil)
}
