package procurement

import (
	"context"
	"errors"
	"strings"

	"github.com/forgeline/forgeline/internal/inventory"
)

// RepositoryPort defines data access methods for purchase orders.
type RepositoryPort interface {
	List(ctx context.Context, companyID int64) ([]PurchaseOrder, error)
	Get(ctx context.Context, companyID, id int64) (*PurchaseOrder, error)
	Create(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error)
	SetStatus(ctx context.Context, companyID, id int64, from, to string) (*PurchaseOrder, error)
}

// StockPort is the slice of the inventory service procurement needs.
type StockPort interface {
	AdjustStock(ctx context.Context, companyID, id, delta int64) (*inventory.Part, error)
}

// Service handles purchase order business rules.
type Service struct {
	repo  RepositoryPort
	stock StockPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, stock StockPort) *Service {
	return &Service{repo: repo, stock: stock}
}

// List returns the company's purchase orders.
func (s *Service) List(ctx context.Context, companyID int64) ([]PurchaseOrder, error) {
	return s.repo.List(ctx, companyID)
}

// Get fetches one purchase order.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Create inserts a new draft purchase order.
func (s *Service) Create(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error) {
	po.Number = strings.TrimSpace(po.Number)
	po.SupplierName = strings.TrimSpace(po.SupplierName)
	po.Status = StatusDraft
	return s.repo.Create(ctx, &po)
}

// Submit moves a draft order to submitted.
func (s *Service) Submit(ctx context.Context, companyID, id int64) (*PurchaseOrder, error) {
	return s.repo.SetStatus(ctx, companyID, id, StatusDraft, StatusSubmitted)
}

// Cancel cancels a draft or submitted order.
func (s *Service) Cancel(ctx context.Context, companyID, id int64) (*PurchaseOrder, error) {
	po, err := s.repo.SetStatus(ctx, companyID, id, StatusDraft, StatusCancelled)
	if errors.Is(err, ErrBadTransition) {
		return s.repo.SetStatus(ctx, companyID, id, StatusSubmitted, StatusCancelled)
	}
	return po, err
}

// Receive marks a submitted order received and books the quantity into
// stock. The status guard runs first, so a double receive cannot double
// count inventory.
func (s *Service) Receive(ctx context.Context, companyID, id int64) (*PurchaseOrder, error) {
	po, err := s.repo.SetStatus(ctx, companyID, id, StatusSubmitted, StatusReceived)
	if err != nil {
		return nil, err
	}
	if _, err := s.stock.AdjustStock(ctx, companyID, po.PartID, po.Quantity); err != nil {
		return nil, err
	}
	return po, nil
}
