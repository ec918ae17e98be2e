package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentInfo is recorded on a booking when it is confirmed as paid.
type PaymentInfo struct {
	Method string    `json:"payment_method"`
	PaidAt time.Time `json:"paid_at"`
}

type PaymentIntent struct {
	BookingID int32           `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentResult is what the payment subsystem reports back.
type PaymentResult struct {
	Success   bool   `json:"success"`
	Method    string `json:"payment_method"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

// PhotoUpload is a presigned slot for one inspection photo.
type PhotoUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	ExpiresAt int64  `json:"expires_at"`
}
