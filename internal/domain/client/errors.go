package client

import (
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
)

var (
	ErrClientNotFound      = fmt.Errorf("client %w", domain.ErrNotFound)
	ErrClientAlreadyExists = errors.New("client with this email already exists")
)
