package quality

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for inspections.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const inspectionColumns = `id, company_id, part_id, work_order_id, result, notes, inspected_by, created_at, closed_at`

func scanInspection(row pgx.Row) (*Inspection, error) {
	var in Inspection
	err := row.Scan(&in.ID, &in.CompanyID, &in.PartID, &in.WorkOrderID,
		&in.Result, &in.Notes, &in.InspectedBy, &in.CreatedAt, &in.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

// List returns the company's inspections, open ones first.
func (r *Repository) List(ctx context.Context, companyID int64) ([]Inspection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+inspectionColumns+` FROM quality_inspections
		WHERE company_id = $1
		ORDER BY (closed_at IS NULL) DESC, id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Inspection
	for rows.Next() {
		in, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// Get fetches one inspection within the company scope.
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*Inspection, error) {
	return scanInspection(r.pool.QueryRow(ctx,
		`SELECT `+inspectionColumns+` FROM quality_inspections WHERE company_id = $1 AND id = $2`, companyID, id))
}

// Create opens a pending inspection.
func (r *Repository) Create(ctx context.Context, in *Inspection) (*Inspection, error) {
	return scanInspection(r.pool.QueryRow(ctx, `
		INSERT INTO quality_inspections (company_id, part_id, work_order_id, result, notes, inspected_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING `+inspectionColumns,
		in.CompanyID, in.PartID, in.WorkOrderID, in.Result, in.Notes, in.InspectedBy))
}

// Close records the result for a still-pending inspection.
func (r *Repository) Close(ctx context.Context, companyID, id int64, result, notes string, inspectorID int64) (*Inspection, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE quality_inspections
		SET result = $3, notes = $4, inspected_by = $5, closed_at = now()
		WHERE company_id = $1 AND id = $2 AND result = 'pending'
		RETURNING `+inspectionColumns,
		companyID, id, result, notes, inspectorID)
	in, err := scanInspection(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.Get(ctx, companyID, id); getErr == nil {
				return nil, ErrAlreadyClosed
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return in, nil
}
