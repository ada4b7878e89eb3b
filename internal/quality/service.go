package quality

import "context"

// RepositoryPort defines data access methods for inspections.
type RepositoryPort interface {
	List(ctx context.Context, companyID int64) ([]Inspection, error)
	Get(ctx context.Context, companyID, id int64) (*Inspection, error)
	Create(ctx context.Context, in *Inspection) (*Inspection, error)
	Close(ctx context.Context, companyID, id int64, result, notes string, inspectorID int64) (*Inspection, error)
}

// Service handles inspection business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the company's inspections.
func (s *Service) List(ctx context.Context, companyID int64) ([]Inspection, error) {
	return s.repo.List(ctx, companyID)
}

// Get fetches one inspection.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*Inspection, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Open creates a pending inspection for a part.
func (s *Service) Open(ctx context.Context, in Inspection) (*Inspection, error) {
	in.Result = ResultPending
	return s.repo.Create(ctx, &in)
}

// Close records a pass or fail result on a pending inspection.
func (s *Service) Close(ctx context.Context, companyID, id int64, result, notes string, inspectorID int64) (*Inspection, error) {
	return s.repo.Close(ctx, companyID, id, result, notes, inspectorID)
}
