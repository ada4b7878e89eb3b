package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for work orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workOrderColumns = `id, company_id, number, part_id, quantity, status, due_date, created_by, created_at, updated_at`

func scanWorkOrder(row pgx.Row) (*WorkOrder, error) {
	var wo WorkOrder
	err := row.Scan(&wo.ID, &wo.CompanyID, &wo.Number, &wo.PartID, &wo.Quantity,
		&wo.Status, &wo.DueDate, &wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// List returns the company's work orders, newest first.
func (r *Repository) List(ctx context.Context, companyID int64) ([]WorkOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE company_id = $1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wo)
	}
	return out, rows.Err()
}

// Get fetches one work order within the company scope.
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*WorkOrder, error) {
	return scanWorkOrder(r.pool.QueryRow(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE company_id = $1 AND id = $2`, companyID, id))
}

// Create inserts a planned work order.
func (r *Repository) Create(ctx context.Context, wo *WorkOrder) (*WorkOrder, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO work_orders (company_id, number, part_id, quantity, status, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+workOrderColumns,
		wo.CompanyID, wo.Number, wo.PartID, wo.Quantity, wo.Status, wo.DueDate, wo.CreatedBy)
	created, err := scanWorkOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: work order number %s", httpx.ErrDuplicate, wo.Number)
		}
		return nil, err
	}
	return created, nil
}

// SetStatus moves a work order between statuses with a current-status guard.
func (r *Repository) SetStatus(ctx context.Context, companyID, id int64, from, to string) (*WorkOrder, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE work_orders SET status = $4, updated_at = now()
		WHERE company_id = $1 AND id = $2 AND status = $3
		RETURNING `+workOrderColumns,
		companyID, id, from, to)
	wo, err := scanWorkOrder(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.Get(ctx, companyID, id); getErr == nil {
				return nil, ErrBadTransition
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return wo, nil
}
