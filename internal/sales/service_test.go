package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	quotations map[int64]*Quotation
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{quotations: make(map[int64]*Quotation), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, companyID int64) ([]Quotation, error) {
	out := []Quotation{}
	for _, q := range m.quotations {
		if q.CompanyID == companyID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, companyID, id int64) (*Quotation, error) {
	q, ok := m.quotations[id]
	if !ok || q.CompanyID != companyID {
		return nil, ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (m *mockRepository) Create(_ context.Context, q *Quotation) (*Quotation, error) {
	created := *q
	created.ID = m.nextID
	m.nextID++
	m.quotations[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) Update(_ context.Context, q *Quotation) (*Quotation, error) {
	existing, ok := m.quotations[q.ID]
	if !ok || existing.CompanyID != q.CompanyID {
		return nil, ErrNotFound
	}
	existing.CustomerName = q.CustomerName
	existing.Status = q.Status
	existing.TotalCents = q.TotalCents
	existing.Notes = q.Notes
	copied := *existing
	return &copied, nil
}

func (m *mockRepository) Delete(_ context.Context, companyID, id int64) error {
	q, ok := m.quotations[id]
	if !ok || q.CompanyID != companyID {
		return ErrNotFound
	}
	delete(m.quotations, id)
	return nil
}

func seedQuote(t *testing.T, svc *Service, status string) *Quotation {
	t.Helper()
	q, err := svc.Create(context.Background(), Quotation{
		CompanyID:    1,
		Number:       "Q-1001",
		CustomerName: "Vega Robotics",
		Status:       status,
		TotalCents:   250000,
	})
	require.NoError(t, err)
	return q
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc := NewService(newMockRepository())

	q, err := svc.Create(context.Background(), Quotation{
		CompanyID:    1,
		Number:       "  Q-2001 ",
		CustomerName: " Vega Robotics ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q-2001", q.Number)
	assert.Equal(t, "Vega Robotics", q.CustomerName)
	assert.Equal(t, StatusDraft, q.Status)
}

func TestUpdateEditableQuotation(t *testing.T) {
	svc := NewService(newMockRepository())
	q := seedQuote(t, svc, StatusDraft)

	q.CustomerName = "Vega Robotics GmbH"
	q.Status = StatusSent
	updated, err := svc.Update(context.Background(), *q)
	require.NoError(t, err)
	assert.Equal(t, "Vega Robotics GmbH", updated.CustomerName)
	assert.Equal(t, StatusSent, updated.Status)
}

func TestUpdateLockedQuotation(t *testing.T) {
	svc := NewService(newMockRepository())

	for _, status := range []string{StatusAccepted, StatusRejected} {
		q := seedQuote(t, svc, status)
		q.CustomerName = "Changed"
		_, err := svc.Update(context.Background(), *q)
		assert.ErrorIs(t, err, ErrStatusLocked, status)
	}
}

func TestDeleteAcceptedQuotationRefused(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	q := seedQuote(t, svc, StatusAccepted)

	err := svc.Delete(context.Background(), 1, q.ID)
	assert.ErrorIs(t, err, ErrStatusLocked)
	assert.Contains(t, repo.quotations, q.ID)
}

func TestDeleteDraftQuotation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	q := seedQuote(t, svc, StatusDraft)

	require.NoError(t, svc.Delete(context.Background(), 1, q.ID))
	assert.NotContains(t, repo.quotations, q.ID)
}

func TestCompanyScoping(t *testing.T) {
	svc := NewService(newMockRepository())
	q := seedQuote(t, svc, StatusDraft)

	_, err := svc.Get(context.Background(), 2, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), 2, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
