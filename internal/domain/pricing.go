package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when neither config nor company set one.
var DefaultTaxRate = decimal.RequireFromString("0.21")

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ExtraLine is one priced extra on a quote or booking.
type ExtraLine struct {
	ExtraID     int32           `json:"extra_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsPerRental bool            `json:"is_per_rental"`
	Total       decimal.Decimal `json:"total"`
}

// LineTotal is unit*qty for per-rental extras and unit*qty*days otherwise.
func (e ExtraLine) LineTotal(days int) decimal.Decimal {
	t := e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
	if !e.IsPerRental {
		t = t.Mul(decimal.NewFromInt(int64(days)))
	}
	return RoundMoney(t)
}

type PriceInput struct {
	DailyPrice     decimal.Decimal
	Days           int
	Extras         []ExtraLine
	PickupLocation Location
	ReturnLocation Location
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	DepositAmount  decimal.Decimal
}

type PriceBreakdown struct {
	Days              int             `json:"days"`
	DailyPrice        decimal.Decimal `json:"daily_price"`
	BasePrice         decimal.Decimal `json:"base_price"`
	Extras            []ExtraLine     `json:"extras"`
	ExtrasTotal       decimal.Decimal `json:"extras_total"`
	LocationSurcharge decimal.Decimal `json:"location_surcharge"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
}

// CalculatePrice is the single price computation used for both the
// pre-booking estimate and the persisted booking amount. It is pure: equal
// inputs give equal breakdowns.
func CalculatePrice(in PriceInput) PriceBreakdown {
	days := in.Days
	if days < 1 {
		days = 1
	}
	base := RoundMoney(in.DailyPrice.Mul(decimal.NewFromInt(int64(days))))

	extras := make([]ExtraLine, len(in.Extras))
	extrasTotal := decimal.Zero
	for i, e := range in.Extras {
		e.Total = e.LineTotal(days)
		extras[i] = e
		extrasTotal = extrasTotal.Add(e.Total)
	}

	surcharge := decimal.Zero
	if in.PickupLocation.ID != in.ReturnLocation.ID {
		surcharge = in.ReturnLocation.DifferentReturnFee
	}

	subtotal := base.Add(extrasTotal).Add(surcharge).Sub(in.DiscountAmount)
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	tax := RoundMoney(subtotal.Mul(in.TaxRate))

	return PriceBreakdown{
		Days:              days,
		DailyPrice:        in.DailyPrice,
		BasePrice:         base,
		Extras:            extras,
		ExtrasTotal:       extrasTotal,
		LocationSurcharge: surcharge,
		DiscountAmount:    in.DiscountAmount,
		Subtotal:          subtotal,
		TaxRate:           in.TaxRate,
		TaxAmount:         tax,
		TotalPrice:        subtotal.Add(tax),
		DepositAmount:     in.DepositAmount,
	}
}

// PreDiscountAmount is the amount a discount code is validated and computed
// against: base rental plus extras plus location surcharge.
func PreDiscountAmount(in PriceInput) decimal.Decimal {
	in.DiscountAmount = decimal.Zero
	b := CalculatePrice(in)
	return b.Subtotal
}
