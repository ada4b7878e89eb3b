package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for parts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partColumns = `id, company_id, sku, name, uom, qty_on_hand, reorder_point, created_at, updated_at`

func scanPart(row pgx.Row) (*Part, error) {
	var p Part
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.UOM,
		&p.QtyOnHand, &p.ReorderPoint, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns the company's parts ordered by SKU.
func (r *Repository) List(ctx context.Context, companyID int64) ([]Part, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+partColumns+` FROM inventory_parts WHERE company_id = $1 ORDER BY sku`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Get fetches one part within the company scope.
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*Part, error) {
	return scanPart(r.pool.QueryRow(ctx,
		`SELECT `+partColumns+` FROM inventory_parts WHERE company_id = $1 AND id = $2`, companyID, id))
}

// Create inserts a part.
func (r *Repository) Create(ctx context.Context, p *Part) (*Part, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO inventory_parts (company_id, sku, name, uom, qty_on_hand, reorder_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+partColumns,
		p.CompanyID, p.SKU, p.Name, p.UOM, p.QtyOnHand, p.ReorderPoint)
	created, err := scanPart(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: sku %s", httpx.ErrDuplicate, p.SKU)
		}
		return nil, err
	}
	return created, nil
}

// AdjustStock applies a signed quantity delta atomically, refusing to go
// below zero at the database level.
func (r *Repository) AdjustStock(ctx context.Context, companyID, id, delta int64) (*Part, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE inventory_parts
		SET qty_on_hand = qty_on_hand + $3, updated_at = now()
		WHERE company_id = $1 AND id = $2 AND qty_on_hand + $3 >= 0
		RETURNING `+partColumns,
		companyID, id, delta)
	p, err := scanPart(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Either absent or the guard refused; look the part up to tell.
			if _, getErr := r.Get(ctx, companyID, id); getErr == nil {
				return nil, ErrStockBelowZero
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a part. Returns ErrNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM inventory_parts WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
