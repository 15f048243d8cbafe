package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/google/uuid"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return service.ErrUserAlreadyExists
		}
	}

	now := time.Now().UTC()
	u.ID = uuid.New()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, service.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool, maxFailures int, lockFor time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return service.ErrUserNotFound
	}

	now := time.Now().UTC()
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		u.LastLoginAt = &now
	} else {
		u.FailedLoginCount++
		if u.FailedLoginCount >= maxFailures {
			until := now.Add(lockFor)
			u.LockedUntil = &until
		}
	}
	u.UpdatedAt = now
	r.s.users[id] = u
	return nil
}
