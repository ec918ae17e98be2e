package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/utils"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type DiscountCode struct {
	ID          int32            `json:"id"`
	CompanyID   int32            `json:"company_id"`
	Code        string           `json:"code"`
	Type        DiscountType     `json:"discount_type"`
	Value       decimal.Decimal  `json:"value"`
	ValidFrom   *time.Time       `json:"valid_from,omitempty"`
	ValidUntil  *time.Time       `json:"valid_until,omitempty"`
	MaxUses     *int             `json:"max_uses,omitempty"`
	CurrentUses int              `json:"current_uses"`
	MinDays     *int             `json:"min_days,omitempty"`
	MinAmount   *decimal.Decimal `json:"min_amount,omitempty"`
	GroupID     *int32           `json:"group_id,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NormalizeDiscountCode is applied on every write and lookup so codes are
// unique per company regardless of case.
func NormalizeDiscountCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func (d *DiscountCode) Validate() error {
	d.Code = NormalizeDiscountCode(d.Code)
	if d.Code == "" {
		return ValidationError{Field: "code", Msg: "is required"}
	}
	switch d.Type {
	case DiscountTypePercentage:
		if !d.Value.IsPositive() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return ValidationError{Field: "value", Msg: "percentage must be between 0 and 100"}
		}
	case DiscountTypeFixed:
		if !d.Value.IsPositive() {
			return ValidationError{Field: "value", Msg: "must be positive"}
		}
	default:
		return ValidationError{Field: "discount_type", Msg: "must be percentage or fixed"}
	}
	if d.MaxUses != nil && d.CurrentUses > *d.MaxUses {
		return ValidationError{Field: "current_uses", Msg: "exceeds max_uses"}
	}
	if d.ValidFrom != nil && d.ValidUntil != nil && d.ValidUntil.Before(*d.ValidFrom) {
		return ValidationError{Field: "valid_until", Msg: "must not be before valid_from"}
	}
	return nil
}

// DiscountCheck is the input of the discount validator.
type DiscountCheck struct {
	CompanyID  int32           `json:"company_id"`
	Code       string          `json:"code"`
	CustomerID *int32          `json:"customer_id,omitempty"`
	TotalDays  int             `json:"total_days"`
	Amount     decimal.Decimal `json:"amount"`
	GroupID    *int32          `json:"group_id,omitempty"`
}

type DiscountResult struct {
	IsValid      bool            `json:"is_valid"`
	DiscountID   int32           `json:"discount_id,omitempty"`
	Type         DiscountType    `json:"discount_type,omitempty"`
	Value        decimal.Decimal `json:"discount_value"`
	Amount       decimal.Decimal `json:"discount_amount"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

func invalidDiscount(msg string) *DiscountResult {
	return &DiscountResult{IsValid: false, ErrorMessage: msg}
}

// EvaluateDiscount applies the constraint checks in order and stops at the
// first failure. code may be nil when the lookup found nothing.
func EvaluateDiscount(code *DiscountCode, check DiscountCheck, now time.Time) *DiscountResult {
	if code == nil || !code.IsActive {
		return invalidDiscount("discount code not found or inactive")
	}
	today := utils.DateOf(now)
	if code.ValidFrom != nil && today.Before(utils.DateOf(*code.ValidFrom)) {
		return invalidDiscount("discount code is not valid yet")
	}
	if code.ValidUntil != nil && today.After(utils.DateOf(*code.ValidUntil)) {
		return invalidDiscount("discount code has expired")
	}
	if code.MaxUses != nil && code.CurrentUses >= *code.MaxUses {
		return invalidDiscount("discount code usage limit reached")
	}
	if code.MinDays != nil && check.TotalDays < *code.MinDays {
		return invalidDiscount("rental is shorter than the minimum days for this code")
	}
	if code.MinAmount != nil && check.Amount.LessThan(*code.MinAmount) {
		return invalidDiscount("amount is below the minimum for this code")
	}
	if code.GroupID != nil && (check.GroupID == nil || *check.GroupID != *code.GroupID) {
		return invalidDiscount("discount code does not apply to this vehicle group")
	}

	return &DiscountResult{
		IsValid:    true,
		DiscountID: code.ID,
		Type:       code.Type,
		Value:      code.Value,
		Amount:     DiscountAmount(code.Type, code.Value, check.Amount),
	}
}

// DiscountAmount never exceeds amount, so a discount cannot push a subtotal
// below zero.
func DiscountAmount(t DiscountType, value, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	var off decimal.Decimal
	switch t {
	case DiscountTypePercentage:
		off = RoundMoney(amount.Mul(value).Div(decimal.NewFromInt(100)))
	case DiscountTypeFixed:
		off = value
	default:
		return decimal.Zero
	}
	return decimal.Min(off, amount)
}
