package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is the tenant every record is scoped to. The engine only reads it.
type Company struct {
	ID            int32            `json:"id"`
	Name          string           `json:"name"`
	BookingPrefix string           `json:"booking_prefix"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"` // nil means the configured default
	CreatedAt     time.Time        `json:"created_at"`
}

// EffectiveTaxRate returns the company override or fallback.
func (c *Company) EffectiveTaxRate(fallback decimal.Decimal) decimal.Decimal {
	if c == nil || c.TaxRate == nil {
		return fallback
	}
	return *c.TaxRate
}

type Location struct {
	ID                 int32           `json:"id"`
	CompanyID          int32           `json:"company_id"`
	Name               string          `json:"name"`
	DifferentReturnFee decimal.Decimal `json:"different_return_fee"`
	IsActive           bool            `json:"is_active"`
}

// Extra is a catalog item (child seat, GPS, additional driver) that can be
// attached to a booking.
type Extra struct {
	ID          int32           `json:"id"`
	CompanyID   int32           `json:"company_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsPerRental bool            `json:"is_per_rental"`
	IsActive    bool            `json:"is_active"`
}
