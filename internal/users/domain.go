package users

import "time"

// User is the admin-facing account summary.
type User struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
