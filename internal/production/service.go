package production

import (
	"context"
	"strings"

	"github.com/forgeline/forgeline/internal/inventory"
)

// RepositoryPort defines data access methods for work orders.
type RepositoryPort interface {
	List(ctx context.Context, companyID int64) ([]WorkOrder, error)
	Get(ctx context.Context, companyID, id int64) (*WorkOrder, error)
	Create(ctx context.Context, wo *WorkOrder) (*WorkOrder, error)
	SetStatus(ctx context.Context, companyID, id int64, from, to string) (*WorkOrder, error)
}

// StockPort books finished goods into inventory.
type StockPort interface {
	AdjustStock(ctx context.Context, companyID, id, delta int64) (*inventory.Part, error)
}

// Service handles work order business rules.
type Service struct {
	repo  RepositoryPort
	stock StockPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, stock StockPort) *Service {
	return &Service{repo: repo, stock: stock}
}

// List returns the company's work orders.
func (s *Service) List(ctx context.Context, companyID int64) ([]WorkOrder, error) {
	return s.repo.List(ctx, companyID)
}

// Get fetches one work order.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*WorkOrder, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Create inserts a planned work order.
func (s *Service) Create(ctx context.Context, wo WorkOrder) (*WorkOrder, error) {
	wo.Number = strings.TrimSpace(wo.Number)
	wo.Status = StatusPlanned
	return s.repo.Create(ctx, &wo)
}

// Release moves a planned work order to the shop floor.
func (s *Service) Release(ctx context.Context, companyID, id int64) (*WorkOrder, error) {
	return s.repo.SetStatus(ctx, companyID, id, StatusPlanned, StatusReleased)
}

// Complete finishes a released work order and books the produced quantity
// into stock. The status guard prevents double completion from double
// counting.
func (s *Service) Complete(ctx context.Context, companyID, id int64) (*WorkOrder, error) {
	wo, err := s.repo.SetStatus(ctx, companyID, id, StatusReleased, StatusComplete)
	if err != nil {
		return nil, err
	}
	if _, err := s.stock.AdjustStock(ctx, companyID, wo.PartID, wo.Quantity); err != nil {
		return nil, err
	}
	return wo, nil
}

// Cancel abandons a planned work order.
func (s *Service) Cancel(ctx context.Context, companyID, id int64) (*WorkOrder, error) {
	return s.repo.SetStatus(ctx, companyID, id, StatusPlanned, StatusCancelled)
}
