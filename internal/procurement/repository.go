package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for purchase orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const poColumns = `id, company_id, number, supplier_name, part_id, quantity, unit_cents, status, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.CompanyID, &po.Number, &po.SupplierName, &po.PartID,
		&po.Quantity, &po.UnitCents, &po.Status, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// List returns the company's purchase orders, newest first.
func (r *Repository) List(ctx context.Context, companyID int64) ([]PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+poColumns+` FROM purchase_orders WHERE company_id = $1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *po)
	}
	return out, rows.Err()
}

// Get fetches one purchase order within the company scope.
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*PurchaseOrder, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+poColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2`, companyID, id))
}

// Create inserts a purchase order.
func (r *Repository) Create(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO purchase_orders (company_id, number, supplier_name, part_id, quantity, unit_cents, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+poColumns,
		po.CompanyID, po.Number, po.SupplierName, po.PartID, po.Quantity, po.UnitCents, po.Status, po.CreatedBy)
	created, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: order number %s", httpx.ErrDuplicate, po.Number)
		}
		return nil, err
	}
	return created, nil
}

// SetStatus moves an order between statuses, guarded by the expected current
// status so concurrent transitions cannot double-apply.
func (r *Repository) SetStatus(ctx context.Context, companyID, id int64, from, to string) (*PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE purchase_orders SET status = $4, updated_at = now()
		WHERE company_id = $1 AND id = $2 AND status = $3
		RETURNING `+poColumns,
		companyID, id, from, to)
	po, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.Get(ctx, companyID, id); getErr == nil {
				return nil, ErrBadTransition
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return po, nil
}
