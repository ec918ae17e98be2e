package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
)

type RateService interface {
	// Resolve returns the daily price for a group over [start, end]. A missing
	// rate or tier is reported as domain.NotFoundError.
	Resolve(ctx context.Context, companyID, groupID int32, start, end time.Time) (*domain.RateQuote, error)
	SetPriceTiers(ctx context.Context, companyID, rateID, groupID int32, tiers []domain.PriceTier) error
}

type AvailabilityService interface {
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.GroupOffer, error)
}

type DiscountService interface {
	// Validate reports constraint failures in the result, not as an error.
	Validate(ctx context.Context, check domain.DiscountCheck) (*domain.DiscountResult, error)
	CreateCode(ctx context.Context, code *domain.DiscountCode) error
}

type PricingService interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, companyID, bookingID int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	ConfirmBooking(ctx context.Context, companyID, bookingID int32, payment *domain.PaymentInfo) (*domain.Booking, error)
	StartRental(ctx context.Context, req domain.HandoverRequest) (*domain.Booking, error)
	CompleteRental(ctx context.Context, req domain.ReturnRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, companyID, bookingID int32, reason string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, companyID, bookingID int32, to domain.BookingStatus) (*domain.Booking, error)
}

type PaymentService interface {
	RequestPayment(ctx context.Context, companyID, bookingID int32) (*domain.PaymentIntent, error)
	RecordPaymentResult(ctx context.Context, companyID, bookingID int32, result domain.PaymentResult) (*domain.Booking, error)
}

type PhotoService interface {
	GetUploadURL(ctx context.Context, companyID, bookingID int32, filename, contentType string) (*domain.PhotoUpload, error)
	GetDownloadURL(ctx context.Context, companyID, bookingID int32, key string) (string, int64, error) // url, expiresAt
}

// PhotoVerifier checks that an uploaded inspection photo exists.
type PhotoVerifier interface {
	FileExists(ctx context.Context, key string) (bool, int64, error)
}

// PaymentGateway talks to the payment subsystem.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, bookingID int32, amount decimal.Decimal) (*domain.PaymentIntent, error)
}
