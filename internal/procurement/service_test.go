package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/forgeline/internal/inventory"
)

type mockRepository struct {
	orders map[int64]*PurchaseOrder
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]*PurchaseOrder), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, companyID int64) ([]PurchaseOrder, error) {
	out := []PurchaseOrder{}
	for _, po := range m.orders {
		if po.CompanyID == companyID {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, companyID, id int64) (*PurchaseOrder, error) {
	po, ok := m.orders[id]
	if !ok || po.CompanyID != companyID {
		return nil, ErrNotFound
	}
	copied := *po
	return &copied, nil
}

func (m *mockRepository) Create(_ context.Context, po *PurchaseOrder) (*PurchaseOrder, error) {
	created := *po
	created.ID = m.nextID
	m.nextID++
	m.orders[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) SetStatus(_ context.Context, companyID, id int64, from, to string) (*PurchaseOrder, error) {
	po, ok := m.orders[id]
	if !ok || po.CompanyID != companyID {
		return nil, ErrNotFound
	}
	if po.Status != from {
		return nil, ErrBadTransition
	}
	po.Status = to
	copied := *po
	return &copied, nil
}

type mockStock struct {
	adjustments []int64
	err         error
}

func (m *mockStock) AdjustStock(_ context.Context, _, _ int64, delta int64) (*inventory.Part, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.adjustments = append(m.adjustments, delta)
	return &inventory.Part{}, nil
}

func setupService() (*Service, *mockRepository, *mockStock) {
	repo := newMockRepository()
	stock := &mockStock{}
	return NewService(repo, stock), repo, stock
}

func draftOrder(repo *mockRepository, companyID int64) *PurchaseOrder {
	po, _ := repo.Create(context.Background(), &PurchaseOrder{
		CompanyID:    companyID,
		Number:       "PO-1001",
		SupplierName: "Acme Steel",
		PartID:       7,
		Quantity:     25,
		UnitCents:    1200,
		Status:       StatusDraft,
	})
	return po
}

func TestCreateNormalizesAndDrafts(t *testing.T) {
	svc, _, _ := setupService()

	po, err := svc.Create(context.Background(), PurchaseOrder{
		CompanyID:    1,
		Number:       "  PO-2001 ",
		SupplierName: " Acme Steel ",
		PartID:       7,
		Quantity:     5,
		Status:       "received", // caller cannot pick a status
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-2001", po.Number)
	assert.Equal(t, "Acme Steel", po.SupplierName)
	assert.Equal(t, StatusDraft, po.Status)
}

func TestSubmitOnlyFromDraft(t *testing.T) {
	svc, repo, _ := setupService()
	po := draftOrder(repo, 1)

	submitted, err := svc.Submit(context.Background(), 1, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)

	_, err = svc.Submit(context.Background(), 1, po.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestReceiveBooksStockOnce(t *testing.T) {
	svc, repo, stock := setupService()
	po := draftOrder(repo, 1)
	_, err := svc.Submit(context.Background(), 1, po.ID)
	require.NoError(t, err)

	received, err := svc.Receive(context.Background(), 1, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)
	assert.Equal(t, []int64{25}, stock.adjustments)

	// A second receive fails the status guard before touching stock.
	_, err = svc.Receive(context.Background(), 1, po.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
	assert.Equal(t, []int64{25}, stock.adjustments)
}

func TestReceiveRequiresSubmitted(t *testing.T) {
	svc, repo, stock := setupService()
	po := draftOrder(repo, 1)

	_, err := svc.Receive(context.Background(), 1, po.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
	assert.Empty(t, stock.adjustments)
}

func TestReceivePropagatesStockFailure(t *testing.T) {
	svc, repo, stock := setupService()
	po := draftOrder(repo, 1)
	_, err := svc.Submit(context.Background(), 1, po.ID)
	require.NoError(t, err)

	stock.err = errors.New("stock below zero")
	_, err = svc.Receive(context.Background(), 1, po.ID)
	assert.Error(t, err)
}

func TestCancelFromDraftOrSubmitted(t *testing.T) {
	svc, repo, _ := setupService()

	po := draftOrder(repo, 1)
	cancelled, err := svc.Cancel(context.Background(), 1, po.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	po2 := draftOrder(repo, 1)
	_, err = svc.Submit(context.Background(), 1, po2.ID)
	require.NoError(t, err)
	cancelled, err = svc.Cancel(context.Background(), 1, po2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), 1, po2.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestCompanyScoping(t *testing.T) {
	svc, repo, _ := setupService()
	po := draftOrder(repo, 1)

	_, err := svc.Get(context.Background(), 2, po.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Submit(context.Background(), 2, po.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
