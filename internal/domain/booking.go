package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Allowed lifecycle edges. Terminal states have none.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreationState marks whether every step of the multi-step creation landed.
type CreationState string

const (
	CreationStateIncomplete CreationState = "incomplete"
	CreationStateComplete   CreationState = "complete"
	CreationStateFailed     CreationState = "failed"
)

// InspectionRecord is the data captured at handover or at return.
type InspectionRecord struct {
	Mileage   int32    `json:"mileage"`
	FuelLevel int      `json:"fuel_level"` // percent of tank
	Notes     string   `json:"notes,omitempty"`
	Photos    []string `json:"photos,omitempty"`
}

func (r InspectionRecord) Validate() error {
	if r.Mileage < 0 {
		return ValidationError{Field: "mileage", Msg: "must not be negative"}
	}
	if r.FuelLevel < 0 || r.FuelLevel > 100 {
		return ValidationError{Field: "fuel_level", Msg: "must be between 0 and 100"}
	}
	return nil
}

type AdditionalCharges struct {
	Damage     decimal.Decimal `json:"damage"`
	Fuel       decimal.Decimal `json:"fuel"`
	Cleaning   decimal.Decimal `json:"cleaning"`
	ExtraKm    decimal.Decimal `json:"extra_km"`
	LateReturn decimal.Decimal `json:"late_return"`
}

func (c AdditionalCharges) Sum() decimal.Decimal {
	return c.Damage.Add(c.Fuel).Add(c.Cleaning).Add(c.ExtraKm).Add(c.LateReturn)
}

func (c AdditionalCharges) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"damage": c.Damage, "fuel": c.Fuel, "cleaning": c.Cleaning, "extra_km": c.ExtraKm, "late_return": c.LateReturn,
	} {
		if v.IsNegative() {
			return ValidationError{Field: name + "_charge", Msg: "must not be negative"}
		}
	}
	return nil
}

type BookingExtra struct {
	ID          int32           `json:"id"`
	BookingID   int32           `json:"booking_id"`
	ExtraID     int32           `json:"extra_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsPerRental bool            `json:"is_per_rental"`
	Total       decimal.Decimal `json:"total"`
}

type Booking struct {
	ID               int32  `json:"id"`
	CompanyID        int32  `json:"company_id"`
	Number           string `json:"booking_number"`
	CustomerID       int32  `json:"customer_id"`
	GroupID          int32  `json:"group_id"`
	VehicleID        *int32 `json:"vehicle_id,omitempty"`
	PickupLocationID int32  `json:"pickup_location_id"`
	ReturnLocationID int32  `json:"return_location_id"`

	PickupDate time.Time `json:"pickup_date"`
	PickupTime string    `json:"pickup_time"`
	ReturnDate time.Time `json:"return_date"`
	ReturnTime string    `json:"return_time"`

	Days              int             `json:"days"`
	RateName          string          `json:"rate_name"`
	DailyPrice        decimal.Decimal `json:"daily_price"`
	KmPerDay          int32           `json:"km_per_day"`
	BasePrice         decimal.Decimal `json:"base_price"`
	ExtrasTotal       decimal.Decimal `json:"extras_total"`
	LocationSurcharge decimal.Decimal `json:"location_surcharge"`
	DiscountCodeID    *int32          `json:"discount_code_id,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`

	IsPaid        bool       `json:"is_paid"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`

	Status        BookingStatus `json:"status"`
	CreationState CreationState `json:"creation_state"`
	CancelReason  string        `json:"cancel_reason,omitempty"`

	Handover          *InspectionRecord `json:"handover,omitempty"`
	Return            *InspectionRecord `json:"return,omitempty"`
	AdditionalCharges AdditionalCharges `json:"additional_charges"`
	HandoverAt        *time.Time        `json:"handover_at,omitempty"`
	ReturnAt          *time.Time        `json:"return_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`

	Extras    []BookingExtra `json:"extras,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ApplyPrice copies a breakdown onto the booking.
func (b *Booking) ApplyPrice(p PriceBreakdown) {
	b.Days = p.Days
	b.DailyPrice = p.DailyPrice
	b.BasePrice = p.BasePrice
	b.ExtrasTotal = p.ExtrasTotal
	b.LocationSurcharge = p.LocationSurcharge
	b.DiscountAmount = p.DiscountAmount
	b.Subtotal = p.Subtotal
	b.TaxRate = p.TaxRate
	b.TaxAmount = p.TaxAmount
	b.TotalPrice = p.TotalPrice
	b.DepositAmount = p.DepositAmount
}

// FinalTotal is subtotal + tax + all additional charges recorded at return.
func (b *Booking) FinalTotal() decimal.Decimal {
	return b.Subtotal.Add(b.TaxAmount).Add(b.AdditionalCharges.Sum())
}

// Transition moves the booking to status `to` and stamps the side-effect
// timestamps. It refuses edges outside the lifecycle graph.
func (b *Booking) Transition(to BookingStatus, at time.Time) error {
	if !CanTransition(b.Status, to) {
		return ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("cannot move booking from %s to %s", b.Status, to),
			Err:   ErrInvalidTransition,
		}
	}
	if b.CreationState != CreationStateComplete && to != BookingStatusCancelled {
		return ValidationError{Field: "creation_state", Msg: "booking creation did not complete", Err: ErrBookingIncomplete}
	}
	b.Status = to
	switch to {
	case BookingStatusInProgress:
		b.HandoverAt = &at
	case BookingStatusCompleted:
		b.ReturnAt = &at
	case BookingStatusCancelled:
		b.CancelledAt = &at
	}
	b.UpdatedAt = at
	return nil
}

// FormatBookingNumber renders PREFIX-YEAR-NNNN.
func FormatBookingNumber(prefix string, year int, seq int64) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "BK"
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ExtraSelection references a catalog extra; prices come from the catalog.
type ExtraSelection struct {
	ExtraID  int32 `json:"extra_id"`
	Quantity int   `json:"quantity"`
}

// QuoteRequest drives both the estimate and booking creation.
type QuoteRequest struct {
	CompanyID        int32            `json:"company_id"`
	CustomerID       *int32           `json:"customer_id,omitempty"`
	GroupID          int32            `json:"group_id"`
	PickupLocationID int32            `json:"pickup_location_id"`
	ReturnLocationID int32            `json:"return_location_id"`
	PickupDate       time.Time        `json:"pickup_date"`
	PickupTime       string           `json:"pickup_time"`
	ReturnDate       time.Time        `json:"return_date"`
	ReturnTime       string           `json:"return_time"`
	Extras           []ExtraSelection `json:"extras,omitempty"`
	DiscountCode     string           `json:"discount_code,omitempty"`
}

func (r QuoteRequest) Validate() error {
	if r.CompanyID <= 0 {
		return ValidationError{Field: "company_id", Msg: "is required"}
	}
	if r.GroupID <= 0 {
		return ValidationError{Field: "group_id", Msg: "is required"}
	}
	if r.PickupLocationID <= 0 || r.ReturnLocationID <= 0 {
		return ValidationError{Field: "location", Msg: "pickup and return locations are required"}
	}
	if r.PickupDate.IsZero() || r.ReturnDate.IsZero() {
		return ValidationError{Field: "dates", Msg: "pickup and return dates are required"}
	}
	if r.ReturnDate.Before(r.PickupDate) {
		return ValidationError{Field: "return_date", Msg: "must not be before pickup_date"}
	}
	for _, e := range r.Extras {
		if e.ExtraID <= 0 || e.Quantity <= 0 {
			return ValidationError{Field: "extras", Msg: "each extra needs an id and a positive quantity"}
		}
	}
	return nil
}

// Quote is a priced offer for one group.
type Quote struct {
	Rate      RateQuote       `json:"rate"`
	Price     PriceBreakdown  `json:"price"`
	Discount  *DiscountResult `json:"discount,omitempty"`
	GroupName string          `json:"group_name"`
}

type CreateBookingRequest struct {
	QuoteRequest
	VehicleID *int32 `json:"vehicle_id,omitempty"`
}

func (r CreateBookingRequest) Validate() error {
	if err := r.QuoteRequest.Validate(); err != nil {
		return err
	}
	if r.CustomerID == nil || *r.CustomerID <= 0 {
		return ValidationError{Field: "customer_id", Msg: "is required"}
	}
	if r.VehicleID != nil && *r.VehicleID <= 0 {
		return ValidationError{Field: "vehicle_id", Msg: "is invalid"}
	}
	return nil
}

type HandoverRequest struct {
	CompanyID int32 `json:"company_id"`
	BookingID int32 `json:"booking_id"`
	VehicleID int32 `json:"vehicle_id"`
	InspectionRecord
}

type ReturnRequest struct {
	CompanyID int32             `json:"company_id"`
	BookingID int32             `json:"booking_id"`
	Charges   AdditionalCharges `json:"charges"`
	InspectionRecord
}

// BookingFilter lists a company's bookings.
type BookingFilter struct {
	CompanyID int32
	Status    BookingStatus
	From      *time.Time
	To        *time.Time
	Page      int32
	PageSize  int32
}
