package service

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resourceClient = "client"

type ClientService struct {
	repo     client.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewClientService(repo client.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *ClientService {
	return &ClientService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

func (s *ClientService) CreateClient(ctx context.Context, cmd *client.CreateClientCommand, actor Actor) (*client.Client, error) {
	cmd.Normalize()

	var invalid []string
	if cmd.Name == "" {
		invalid = append(invalid, "name is required")
	}
	if cmd.Email == "" {
		invalid = append(invalid, "email is required")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	exists, err := s.repo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, client.ErrClientAlreadyExists
	}

	c := &client.Client{
		Name:           cmd.Name,
		Email:          cmd.Email,
		Phone:          cmd.Phone,
		AreasOfConcern: cmd.AreasOfConcern,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if !errors.Is(err, client.ErrClientAlreadyExists) {
			s.log.Error("failed to create client", zap.Error(err))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ClientsCreated.Inc()
	}
	s.log.Info("client created", zap.String("client_id", c.ID.String()))
	s.auditSvc.LogAsync(AuditEntry{
		Actor:        actor,
		Action:       domain.ActionCreate,
		ResourceType: resourceClient,
		ResourceID:   c.ID.String(),
	})

	return c, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchClients matches term against name and email, newest clients first.
func (s *ClientService) SearchClients(ctx context.Context, term string) ([]*client.Client, error) {
	return s.repo.Search(ctx, term)
}
