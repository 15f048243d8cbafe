package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/google/uuid"
)

type ClientRepository struct {
	s *Store
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(c.Email)
	for _, existing := range r.s.clients {
		if existing.Email == email {
			return client.ErrClientAlreadyExists
		}
	}

	now := time.Now().UTC()
	c.ID = uuid.New()
	c.Email = email
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, client.ErrClientNotFound
	}
	return &c, nil
}

func (r *ClientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID]*client.Client, len(ids))
	for _, id := range ids {
		if c, ok := r.s.clients[id]; ok {
			out[id] = &c
		}
	}
	return out, nil
}

func (r *ClientRepository) Search(ctx context.Context, term string) ([]*client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term = strings.TrimSpace(term)
	var out []*client.Client
	for _, c := range r.s.clients {
		c := c
		if term == "" || containsFold(c.Name, term) || containsFold(c.Email, term) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *client.Client) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *ClientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, c := range r.s.clients {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}
