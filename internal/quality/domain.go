// Package quality records inspections against parts and work orders.
package quality

import (
	"errors"
	"time"
)

// Inspection results.
const (
	ResultPending = "pending"
	ResultPass    = "pass"
	ResultFail    = "fail"
)

// ErrNotFound indicates the inspection does not exist in the company scope.
var ErrNotFound = errors.New("quality: inspection not found")

// ErrAlreadyClosed indicates the inspection result has been recorded.
var ErrAlreadyClosed = errors.New("quality: inspection already closed")

// Inspection is one quality check on a part.
type Inspection struct {
	ID          int64
	CompanyID   int64
	PartID      int64
	WorkOrderID int64
	Result      string
	Notes       string
	InspectedBy int64
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

// Open reports whether the inspection still awaits a result.
func (i Inspection) Open() bool {
	return i.Result == ResultPending
}
