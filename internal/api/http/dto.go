package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/utils"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return domain.ValidationError{Msg: "request body is required"}
		}
		return domain.ValidationError{Msg: fmt.Sprintf("malformed request body: %v", err)}
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		return 0, domain.ValidationError{Field: name, Msg: "must be a positive integer"}
	}
	return int32(v), nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "is required"}
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Msg: err.Error()}
	}
	return t, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseInt32(field, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, domain.ValidationError{Field: field, Msg: "must be an integer"}
	}
	return int32(v), nil
}

// quoteBody is the wire form of a quote or booking request. Dates are
// yyyy-mm-dd, times HH:MM.
type quoteBody struct {
	CustomerID       *int32                  `json:"customer_id,omitempty"`
	VehicleID        *int32                  `json:"vehicle_id,omitempty"`
	GroupID          int32                   `json:"group_id"`
	PickupLocationID int32                   `json:"pickup_location_id"`
	ReturnLocationID int32                   `json:"return_location_id"`
	PickupDate       string                  `json:"pickup_date"`
	PickupTime       string                  `json:"pickup_time"`
	ReturnDate       string                  `json:"return_date"`
	ReturnTime       string                  `json:"return_time"`
	Extras           []domain.ExtraSelection `json:"extras,omitempty"`
	DiscountCode     string                  `json:"discount_code,omitempty"`
}

func (b quoteBody) toQuoteRequest(companyID int32) (domain.QuoteRequest, error) {
	pickup, err := parseDate("pickup_date", b.PickupDate)
	if err != nil {
		return domain.QuoteRequest{}, err
	}
	ret, err := parseDate("return_date", b.ReturnDate)
	if err != nil {
		return domain.QuoteRequest{}, err
	}
	returnLocation := b.ReturnLocationID
	if returnLocation == 0 {
		returnLocation = b.PickupLocationID
	}
	return domain.QuoteRequest{
		CompanyID:        companyID,
		CustomerID:       b.CustomerID,
		GroupID:          b.GroupID,
		PickupLocationID: b.PickupLocationID,
		ReturnLocationID: returnLocation,
		PickupDate:       pickup,
		PickupTime:       b.PickupTime,
		ReturnDate:       ret,
		ReturnTime:       b.ReturnTime,
		Extras:           b.Extras,
		DiscountCode:     b.DiscountCode,
	}, nil
}

type discountCheckBody struct {
	Code       string          `json:"code"`
	CustomerID *int32          `json:"customer_id,omitempty"`
	GroupID    *int32          `json:"group_id,omitempty"`
	TotalDays  int             `json:"total_days"`
	Amount     decimal.Decimal `json:"amount"`
}

type discountCodeBody struct {
	Code       string           `json:"code"`
	Type       string           `json:"discount_type"`
	Value      decimal.Decimal  `json:"value"`
	ValidFrom  string           `json:"valid_from,omitempty"`
	ValidUntil string           `json:"valid_until,omitempty"`
	MaxUses    *int             `json:"max_uses,omitempty"`
	MinDays    *int             `json:"min_days,omitempty"`
	MinAmount  *decimal.Decimal `json:"min_amount,omitempty"`
	GroupID    *int32           `json:"group_id,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

func (b discountCodeBody) toDiscountCode(companyID int32) (*domain.DiscountCode, error) {
	from, err := parseOptionalDate("valid_from", b.ValidFrom)
	if err != nil {
		return nil, err
	}
	until, err := parseOptionalDate("valid_until", b.ValidUntil)
	if err != nil {
		return nil, err
	}
	active := true
	if b.IsActive != nil {
		active = *b.IsActive
	}
	return &domain.DiscountCode{
		CompanyID:  companyID,
		Code:       b.Code,
		Type:       domain.DiscountType(b.Type),
		Value:      b.Value,
		ValidFrom:  from,
		ValidUntil: until,
		MaxUses:    b.MaxUses,
		MinDays:    b.MinDays,
		MinAmount:  b.MinAmount,
		GroupID:    b.GroupID,
		IsActive:   active,
	}, nil
}

type priceTierBody struct {
	MinDays    int             `json:"min_days"`
	MaxDays    *int            `json:"max_days,omitempty"`
	DailyPrice decimal.Decimal `json:"daily_price"`
	KmPerDay   int32           `json:"km_per_day"`
}

type confirmBody struct {
	PaymentMethod string `json:"payment_method,omitempty"`
}

type handoverBody struct {
	VehicleID int32 `json:"vehicle_id,omitempty"`
	domain.InspectionRecord
}

type returnBody struct {
	Charges domain.AdditionalCharges `json:"charges"`
	domain.InspectionRecord
}

type cancelBody struct {
	Reason string `json:"reason"`
}

type statusBody struct {
	Status domain.BookingStatus `json:"status"`
}

type photoUploadBody struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type bookingListResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

type photoDownloadResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}
