package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

// manualGateway records desk payments (cash, card terminal). It only issues a
// reference the staff quotes when reporting the result.
type manualGateway struct{}

func NewManualGateway() PaymentGateway {
	return manualGateway{}
}

func (manualGateway) CreateIntent(ctx context.Context, bookingID int32, amount decimal.Decimal) (*domain.PaymentIntent, error) {
	return &domain.PaymentIntent{
		BookingID: bookingID,
		Amount:    amount,
		Reference: "pay_" + uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

type paymentService struct {
	bookingRepo repository.BookingRepository
	bookingSvc  BookingService
	gateway     PaymentGateway
}

func NewPaymentService(bookingRepo repository.BookingRepository, bookingSvc BookingService, gateway PaymentGateway) PaymentService {
	return &paymentService{bookingRepo: bookingRepo, bookingSvc: bookingSvc, gateway: gateway}
}

func (s *paymentService) RequestPayment(ctx context.Context, companyID, bookingID int32) (*domain.PaymentIntent, error) {
	logger.EnterMethod("paymentService.RequestPayment", "companyID", companyID, "bookingID", bookingID)

	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.RequestPayment", err, "bookingID", bookingID)
		return nil, err
	}
	if b.IsPaid {
		err := domain.ConflictError{Resource: "booking", Msg: "booking is already paid"}
		logger.ExitMethodWithError("paymentService.RequestPayment", err, "bookingID", bookingID)
		return nil, err
	}
	if b.Status == domain.BookingStatusCancelled || b.CreationState != domain.CreationStateComplete {
		err := domain.ValidationError{Field: "status", Msg: "booking cannot be paid"}
		logger.ExitMethodWithError("paymentService.RequestPayment", err, "bookingID", bookingID)
		return nil, err
	}

	logger.ExternalServiceCall("payments", "CreateIntent", "bookingID", bookingID, "amount", b.TotalPrice.StringFixed(2))
	intent, err := s.gateway.CreateIntent(ctx, b.ID, b.TotalPrice)
	logger.ExternalServiceResult("payments", "CreateIntent", err, "bookingID", bookingID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.RequestPayment", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("paymentService.RequestPayment", "bookingID", bookingID, "reference", intent.Reference)
	return intent, nil
}

// RecordPaymentResult stores a successful payment and confirms a pending
// booking. Failed payments leave the booking untouched.
func (s *paymentService) RecordPaymentResult(ctx context.Context, companyID, bookingID int32, result domain.PaymentResult) (*domain.Booking, error) {
	logger.EnterMethod("paymentService.RecordPaymentResult", "companyID", companyID, "bookingID", bookingID, "success", result.Success)

	if !result.Success {
		logger.Warn("Payment failed", "bookingID", bookingID, "reference", result.Reference, "reason", result.Reason)
		b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
		if err != nil {
			logger.ExitMethodWithError("paymentService.RecordPaymentResult", err, "bookingID", bookingID)
			return nil, err
		}
		logger.ExitMethod("paymentService.RecordPaymentResult", "bookingID", bookingID, "recorded", false)
		return b, nil
	}

	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.RecordPaymentResult", err, "bookingID", bookingID)
		return nil, err
	}
	info := domain.PaymentInfo{Method: result.Method, PaidAt: time.Now().UTC()}

	if b.Status == domain.BookingStatusPending {
		b, err = s.bookingSvc.ConfirmBooking(ctx, companyID, bookingID, &info)
		if err != nil {
			logger.ExitMethodWithError("paymentService.RecordPaymentResult", err, "bookingID", bookingID)
			return nil, err
		}
		logger.ExitMethod("paymentService.RecordPaymentResult", "bookingID", bookingID, "confirmed", true)
		return b, nil
	}

	if err := s.bookingRepo.RecordPayment(ctx, companyID, bookingID, info); err != nil {
		logger.ExitMethodWithError("paymentService.RecordPaymentResult", err, "bookingID", bookingID)
		return nil, err
	}
	b.IsPaid = true
	b.PaidAt = &info.PaidAt
	b.PaymentMethod = info.Method
	logger.ExitMethod("paymentService.RecordPaymentResult", "bookingID", bookingID, "confirmed", false)
	return b, nil
}
