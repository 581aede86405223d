// Package model defines the food-sales records shared by every layer.
package model

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Record represents a single food-sales transaction row.
type Record struct {
	Date       civil.Date      `json:"date"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"` // Taken as given from the source, never recomputed
	ID         string          `json:"id"`
	Region     string          `json:"region"`
	City       string          `json:"city"`
	Category   string          `json:"category"`
	Product    string          `json:"product"`
	Quantity   int             `json:"qty"`
}

// Validate checks the fields the filter engine depends on.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if !r.Date.IsValid() {
		return fmt.Errorf("%w: record %s has no valid date", ErrInvalidRecord, r.ID)
	}
	if r.City == "" {
		return fmt.Errorf("%w: record %s has no city", ErrInvalidRecord, r.ID)
	}
	if r.Category == "" {
		return fmt.Errorf("%w: record %s has no category", ErrInvalidRecord, r.ID)
	}
	if r.Quantity < 0 {
		return fmt.Errorf("%w: record %s has negative quantity %d", ErrInvalidRecord, r.ID, r.Quantity)
	}
	if r.UnitPrice.IsNegative() || r.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: record %s has a negative price", ErrInvalidRecord, r.ID)
	}
	return nil
}
