package sales

import (
	"context"
	"strings"
)

// RepositoryPort defines data access methods for quotations.
type RepositoryPort interface {
	List(ctx context.Context, companyID int64) ([]Quotation, error)
	Get(ctx context.Context, companyID, id int64) (*Quotation, error)
	Create(ctx context.Context, q *Quotation) (*Quotation, error)
	Update(ctx context.Context, q *Quotation) (*Quotation, error)
	Delete(ctx context.Context, companyID, id int64) error
}

// Service handles quotation business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the company's quotations.
func (s *Service) List(ctx context.Context, companyID int64) ([]Quotation, error) {
	return s.repo.List(ctx, companyID)
}

// Get fetches one quotation.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Create inserts a new draft quotation.
func (s *Service) Create(ctx context.Context, q Quotation) (*Quotation, error) {
	q.Number = strings.TrimSpace(q.Number)
	q.CustomerName = strings.TrimSpace(q.CustomerName)
	if q.Status == "" {
		q.Status = StatusDraft
	}
	return s.repo.Create(ctx, &q)
}

// Update edits a quotation that is still editable.
func (s *Service) Update(ctx context.Context, q Quotation) (*Quotation, error) {
	current, err := s.repo.Get(ctx, q.CompanyID, q.ID)
	if err != nil {
		return nil, err
	}
	if !current.Editable() {
		return nil, ErrStatusLocked
	}
	q.CustomerName = strings.TrimSpace(q.CustomerName)
	if q.Status == "" {
		q.Status = current.Status
	}
	return s.repo.Update(ctx, &q)
}

// Delete removes a quotation unless it has been accepted.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if current.Status == StatusAccepted {
		return ErrStatusLocked
	}
	return s.repo.Delete(ctx, companyID, id)
}
