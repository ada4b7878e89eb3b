package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for quotations. Every
// query is scoped by company id; the authorization gate certifies access,
// the repository enforces the row boundary.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quotationColumns = `id, company_id, number, customer_name, status, total_cents, notes, created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.CompanyID, &q.Number, &q.CustomerName, &q.Status,
		&q.TotalCents, &q.Notes, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// List returns the company's quotations, newest first.
func (r *Repository) List(ctx context.Context, companyID int64) ([]Quotation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quotationColumns+` FROM sales_quotations WHERE company_id = $1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// Get fetches one quotation within the company scope.
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*Quotation, error) {
	return scanQuotation(r.pool.QueryRow(ctx,
		`SELECT `+quotationColumns+` FROM sales_quotations WHERE company_id = $1 AND id = $2`, companyID, id))
}

// Create inserts a quotation and returns it with generated fields.
func (r *Repository) Create(ctx context.Context, q *Quotation) (*Quotation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sales_quotations (company_id, number, customer_name, status, total_cents, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+quotationColumns,
		q.CompanyID, q.Number, q.CustomerName, q.Status, q.TotalCents, q.Notes, q.CreatedBy)
	created, err := scanQuotation(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: quotation number %s", httpx.ErrDuplicate, q.Number)
		}
		return nil, err
	}
	return created, nil
}

// Update rewrites the mutable fields of a quotation.
func (r *Repository) Update(ctx context.Context, q *Quotation) (*Quotation, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sales_quotations
		SET customer_name = $3, status = $4, total_cents = $5, notes = $6, updated_at = now()
		WHERE company_id = $1 AND id = $2
		RETURNING `+quotationColumns,
		q.CompanyID, q.ID, q.CustomerName, q.Status, q.TotalCents, q.Notes)
	return scanQuotation(row)
}

// Delete removes a quotation. Returns ErrNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sales_quotations WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
