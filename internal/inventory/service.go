package inventory

import (
	"context"
	"strings"
)

// RepositoryPort defines data access methods for parts.
type RepositoryPort interface {
	List(ctx context.Context, companyID int64) ([]Part, error)
	Get(ctx context.Context, companyID, id int64) (*Part, error)
	Create(ctx context.Context, p *Part) (*Part, error)
	AdjustStock(ctx context.Context, companyID, id, delta int64) (*Part, error)
	Delete(ctx context.Context, companyID, id int64) error
}

// Service handles part business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the company's parts.
func (s *Service) List(ctx context.Context, companyID int64) ([]Part, error) {
	return s.repo.List(ctx, companyID)
}

// Get fetches one part.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*Part, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Create registers a new part.
func (s *Service) Create(ctx context.Context, p Part) (*Part, error) {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	p.Name = strings.TrimSpace(p.Name)
	if p.UOM == "" {
		p.UOM = "ea"
	}
	return s.repo.Create(ctx, &p)
}

// AdjustStock applies a signed quantity change to a part.
func (s *Service) AdjustStock(ctx context.Context, companyID, id, delta int64) (*Part, error) {
	return s.repo.AdjustStock(ctx, companyID, id, delta)
}

// Delete removes a part.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	return s.repo.Delete(ctx, companyID, id)
}
