package users

import "context"

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListByCompany(ctx context.Context, companyID int64) ([]User, error)
}

// Service handles user administration logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListByCompany returns the users visible to the active company.
func (s *Service) ListByCompany(ctx context.Context, companyID int64) ([]User, error) {
	return s.repo.ListByCompany(ctx, companyID)
}
