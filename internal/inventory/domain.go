// Package inventory manages the part master and on-hand stock levels.
package inventory

import (
	"errors"
	"time"
)

// ErrNotFound indicates the part does not exist in the company scope.
var ErrNotFound = errors.New("inventory: part not found")

// ErrStockBelowZero indicates an adjustment would drive stock negative.
var ErrStockBelowZero = errors.New("inventory: adjustment would make stock negative")

// Part is one inventory item.
type Part struct {
	ID           int64
	CompanyID    int64
	SKU          string
	Name         string
	UOM          string
	QtyOnHand    int64
	ReorderPoint int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
