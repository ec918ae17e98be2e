package http_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"fleetrent-backend/internal/domain"
)

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.GroupOffer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupOffer), args.Error(1)
}

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) Validate(ctx context.Context, check domain.DiscountCheck) (*domain.DiscountResult, error) {
	args := m.Called(ctx, check)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountResult), args.Error(1)
}
func (m *MockDiscountService) CreateCode(ctx context.Context, code *domain.DiscountCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Resolve(ctx context.Context, companyID, groupID int32, start, end time.Time) (*domain.RateQuote, error) {
	args := m.Called(ctx, companyID, groupID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}
func (m *MockRateService) SetPriceTiers(ctx context.Context, companyID, rateID, groupID int32, tiers []domain.PriceTier) error {
	args := m.Called(ctx, companyID, rateID, groupID, tiers)
	return args.Error(0)
}

type MockBookingService struct {
	mock.Mock
}

func bookingResult(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, req))
}
func (m *MockBookingService) GetBooking(ctx context.Context, companyID, bookingID int32) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, companyID, bookingID))
}
func (m *MockBookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) ConfirmBooking(ctx context.Context, companyID, bookingID int32, payment *domain.PaymentInfo) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, companyID, bookingID, payment))
}
func (m *MockBookingService) StartRental(ctx context.Context, req domain.HandoverRequest) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, req))
}
func (m *MockBookingService) CompleteRental(ctx context.Context, req domain.ReturnRequest) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, req))
}
func (m *MockBookingService) CancelBooking(ctx context.Context, companyID, bookingID int32, reason string) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, companyID, bookingID, reason))
}
func (m *MockBookingService) UpdateStatus(ctx context.Context, companyID, bookingID int32, to domain.BookingStatus) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, companyID, bookingID, to))
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RequestPayment(ctx context.Context, companyID, bookingID int32) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, companyID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}
func (m *MockPaymentService) RecordPaymentResult(ctx context.Context, companyID, bookingID int32, result domain.PaymentResult) (*domain.Booking, error) {
	return bookingResult(m.Called(ctx, companyID, bookingID, result))
}

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) GetUploadURL(ctx context.Context, companyID, bookingID int32, filename, contentType string) (*domain.PhotoUpload, error) {
	args := m.Called(ctx, companyID, bookingID, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhotoUpload), args.Error(1)
}
func (m *MockPhotoService) GetDownloadURL(ctx context.Context, companyID, bookingID int32, key string) (string, int64, error) {
	args := m.Called(ctx, companyID, bookingID, key)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
