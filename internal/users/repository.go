package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByCompany returns the users that belong to a company.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.is_active, u.created_at, u.updated_at
		FROM users u
		JOIN user_companies uc ON uc.user_id = u.id
		WHERE uc.company_id = $1
		ORDER BY u.id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
