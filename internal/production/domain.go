// Package production tracks manufacturing work orders from release to
// completion.
package production

import (
	"errors"
	"time"
)

// Work order statuses.
const (
	StatusPlanned   = "planned"
	StatusReleased  = "released"
	StatusComplete  = "complete"
	StatusCancelled = "cancelled"
)

// ErrNotFound indicates the work order does not exist in the company scope.
var ErrNotFound = errors.New("production: work order not found")

// ErrBadTransition indicates the status change is not allowed.
var ErrBadTransition = errors.New("production: invalid status transition")

// WorkOrder is an instruction to produce a quantity of one part.
type WorkOrder struct {
	ID        int64
	CompanyID int64
	Number    string
	PartID    int64
	Quantity  int64
	Status    string
	DueDate   *time.Time
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
