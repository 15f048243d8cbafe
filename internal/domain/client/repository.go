package client

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new client. Returns ErrClientAlreadyExists on duplicate email.
	Create(ctx context.Context, c *Client) error

	// GetByID resolves a client reference. Returns ErrClientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// GetByIDs resolves many references at once; unknown ids are absent from the map.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Client, error)

	// Search matches term case-insensitively against name and email, newest first.
	// An empty term lists every client.
	Search(ctx context.Context, term string) ([]*Client, error)

	// ExistsByEmail checks for uniqueness without fetching the full record.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
