package production

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/forgeline/internal/inventory"
)

type mockRepository struct {
	orders map[int64]*WorkOrder
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]*WorkOrder), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, companyID int64) ([]WorkOrder, error) {
	out := []WorkOrder{}
	for _, wo := range m.orders {
		if wo.CompanyID == companyID {
			out = append(out, *wo)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, companyID, id int64) (*WorkOrder, error) {
	wo, ok := m.orders[id]
	if !ok || wo.CompanyID != companyID {
		return nil, ErrNotFound
	}
	copied := *wo
	return &copied, nil
}

func (m *mockRepository) Create(_ context.Context, wo *WorkOrder) (*WorkOrder, error) {
	created := *wo
	created.ID = m.nextID
	m.nextID++
	m.orders[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) SetStatus(_ context.Context, companyID, id int64, from, to string) (*WorkOrder, error) {
	wo, ok := m.orders[id]
	if !ok || wo.CompanyID != companyID {
		return nil, ErrNotFound
	}
	if wo.Status != from {
		return nil, ErrBadTransition
	}
	wo.Status = to
	copied := *wo
	return &copied, nil
}

type mockStock struct {
	adjustments []int64
}

func (m *mockStock) AdjustStock(_ context.Context, _, _ int64, delta int64) (*inventory.Part, error) {
	m.adjustments = append(m.adjustments, delta)
	return &inventory.Part{}, nil
}

func plannedOrder(t *testing.T, svc *Service) *WorkOrder {
	t.Helper()
	wo, err := svc.Create(context.Background(), WorkOrder{
		CompanyID: 1,
		Number:    "WO-3001",
		PartID:    7,
		Quantity:  50,
	})
	require.NoError(t, err)
	return wo
}

func TestWorkOrderLifecycle(t *testing.T) {
	repo := newMockRepository()
	stock := &mockStock{}
	svc := NewService(repo, stock)
	wo := plannedOrder(t, svc)
	assert.Equal(t, StatusPlanned, wo.Status)

	released, err := svc.Release(context.Background(), 1, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, released.Status)

	done, err := svc.Complete(context.Background(), 1, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, done.Status)
	assert.Equal(t, []int64{50}, stock.adjustments)
}

func TestCompleteRequiresReleased(t *testing.T) {
	repo := newMockRepository()
	stock := &mockStock{}
	svc := NewService(repo, stock)
	wo := plannedOrder(t, svc)

	_, err := svc.Complete(context.Background(), 1, wo.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
	assert.Empty(t, stock.adjustments)
}

func TestCompleteBooksStockOnce(t *testing.T) {
	repo := newMockRepository()
	stock := &mockStock{}
	svc := NewService(repo, stock)
	wo := plannedOrder(t, svc)
	_, err := svc.Release(context.Background(), 1, wo.ID)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), 1, wo.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), 1, wo.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
	assert.Equal(t, []int64{50}, stock.adjustments)
}

func TestCancelOnlyPlanned(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockStock{})
	wo := plannedOrder(t, svc)
	_, err := svc.Release(context.Background(), 1, wo.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 1, wo.ID)
	assert.ErrorIs(t, err, ErrBadTransition)
}
