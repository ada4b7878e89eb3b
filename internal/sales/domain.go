// Package sales implements quotation management: the entry point of the
// quote-to-order flow.
package sales

import (
	"errors"
	"time"
)

// Quotation statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ErrNotFound indicates the quotation does not exist in the company scope.
var ErrNotFound = errors.New("sales: quotation not found")

// ErrStatusLocked indicates the quotation can no longer be edited.
var ErrStatusLocked = errors.New("sales: quotation is no longer editable")

// Quotation is a priced offer to a customer.
type Quotation struct {
	ID           int64
	CompanyID    int64
	Number       string
	CustomerName string
	Status       string
	TotalCents   int64
	Notes        string
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Editable reports whether the quotation still accepts changes.
func (q Quotation) Editable() bool {
	return q.Status == StatusDraft || q.Status == StatusSent
}
