// Package procurement implements purchase orders from draft through receipt.
package procurement

import (
	"errors"
	"time"
)

// Purchase order statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// ErrNotFound indicates the purchase order does not exist in the company scope.
var ErrNotFound = errors.New("procurement: purchase order not found")

// ErrBadTransition indicates the status change is not allowed.
var ErrBadTransition = errors.New("procurement: invalid status transition")

// PurchaseOrder is a request to buy a quantity of one part from a supplier.
type PurchaseOrder struct {
	ID           int64
	CompanyID    int64
	Number       string
	SupplierName string
	PartID       int64
	Quantity     int64
	UnitCents    int64
	Status       string
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanReceive reports whether the order may be marked received.
func (po PurchaseOrder) CanReceive() bool {
	return po.Status == StatusSubmitted
}
