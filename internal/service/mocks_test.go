package service_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"fleetrent-backend/internal/domain"
)

// MockCompanyRepo
type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id int32) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

// MockLocationRepo
type MockLocationRepo struct {
	mock.Mock
}

func (m *MockLocationRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.Location, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

// MockExtraRepo
type MockExtraRepo struct {
	mock.Mock
}

func (m *MockExtraRepo) ListByIDs(ctx context.Context, companyID int32, ids []int32) ([]domain.Extra, error) {
	args := m.Called(ctx, companyID, ids)
	return args.Get(0).([]domain.Extra), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) GetGroup(ctx context.Context, companyID, groupID int32) (*domain.VehicleGroup, error) {
	args := m.Called(ctx, companyID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleGroup), args.Error(1)
}
func (m *MockVehicleRepo) ListCandidates(ctx context.Context, filter domain.SearchFilter) ([]domain.CandidateVehicle, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CandidateVehicle), args.Error(1)
}

// MockRateRepo
type MockRateRepo struct {
	mock.Mock
}

func (m *MockRateRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.Rate, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rate), args.Error(1)
}
func (m *MockRateRepo) ListActive(ctx context.Context, companyID int32) ([]domain.Rate, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.Rate), args.Error(1)
}
func (m *MockRateRepo) ListTiers(ctx context.Context, rateID, groupID int32) ([]domain.PriceTier, error) {
	args := m.Called(ctx, rateID, groupID)
	return args.Get(0).([]domain.PriceTier), args.Error(1)
}
func (m *MockRateRepo) ReplaceTiers(ctx context.Context, rateID, groupID int32, tiers []domain.PriceTier) error {
	args := m.Called(ctx, rateID, groupID, tiers)
	return args.Error(0)
}

// MockDiscountRepo
type MockDiscountRepo struct {
	mock.Mock
}

func (m *MockDiscountRepo) GetByCode(ctx context.Context, companyID int32, code string) (*domain.DiscountCode, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountCode), args.Error(1)
}
func (m *MockDiscountRepo) Create(ctx context.Context, d *domain.DiscountCode) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) CreatePending(ctx context.Context, b *domain.Booking, prefix string) error {
	args := m.Called(ctx, b, prefix)
	return args.Error(0)
}
func (m *MockBookingRepo) FinalizeCreation(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) AbandonCreation(ctx context.Context, companyID, bookingID int32, reason string) error {
	args := m.Called(ctx, companyID, bookingID, reason)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListBlockingVehicleIDs(ctx context.Context, companyID int32, from, to time.Time) ([]int32, error) {
	args := m.Called(ctx, companyID, from, to)
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockBookingRepo) StartRental(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	args := m.Called(ctx, b, from)
	return args.Error(0)
}
func (m *MockBookingRepo) CompleteRental(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	args := m.Called(ctx, b, from)
	return args.Error(0)
}
func (m *MockBookingRepo) RecordPayment(ctx context.Context, companyID, bookingID int32, info domain.PaymentInfo) error {
	args := m.Called(ctx, companyID, bookingID, info)
	return args.Error(0)
}
func (m *MockBookingRepo) ListIncompleteBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListStalePending(ctx context.Context, pickupBefore time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, pickupBefore)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockPricingService
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

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	return bookingResult(args)
}
func (m *MockBookingService) GetBooking(ctx context.Context, companyID, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, companyID, bookingID)
	return bookingResult(args)
}
func (m *MockBookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) ConfirmBooking(ctx context.Context, companyID, bookingID int32, payment *domain.PaymentInfo) (*domain.Booking, error) {
	args := m.Called(ctx, companyID, bookingID, payment)
	return bookingResult(args)
}
func (m *MockBookingService) StartRental(ctx context.Context, req domain.HandoverRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	return bookingResult(args)
}
func (m *MockBookingService) CompleteRental(ctx context.Context, req domain.ReturnRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	return bookingResult(args)
}
func (m *MockBookingService) CancelBooking(ctx context.Context, companyID, bookingID int32, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, companyID, bookingID, reason)
	return bookingResult(args)
}
func (m *MockBookingService) UpdateStatus(ctx context.Context, companyID, bookingID int32, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, companyID, bookingID, to)
	return bookingResult(args)
}

func bookingResult(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockStorage) SaveFile(key string, reader io.Reader) error {
	args := m.Called(key, reader)
	return args.Error(0)
}
func (m *MockStorage) ReadFile(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
