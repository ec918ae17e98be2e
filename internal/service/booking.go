package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

type bookingService struct {
	bookingRepo   repository.BookingRepository
	companyRepo   repository.CompanyRepository
	vehicleRepo   repository.VehicleRepository
	pricingSvc    PricingService
	photos        PhotoVerifier
	defaultPrefix string
	now           func() time.Time
}

// NewBookingService wires the lifecycle manager. photos may be nil, in which
// case inspection photo keys are stored without checking the storage.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	companyRepo repository.CompanyRepository,
	vehicleRepo repository.VehicleRepository,
	pricingSvc PricingService,
	photos PhotoVerifier,
	defaultPrefix string,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		companyRepo:   companyRepo,
		vehicleRepo:   vehicleRepo,
		pricingSvc:    pricingSvc,
		photos:        photos,
		defaultPrefix: defaultPrefix,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "companyID", req.CompanyID, "groupID", req.GroupID, "vehicleID", req.VehicleID)

	if err := req.Validate(); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "companyID", req.CompanyID)
		return nil, err
	}

	// Same computation as the estimate; the client total is never trusted.
	quote, err := s.pricingSvc.Quote(ctx, req.QuoteRequest)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "companyID", req.CompanyID)
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "companyID", req.CompanyID)
		return nil, err
	}
	prefix := company.BookingPrefix
	if strings.TrimSpace(prefix) == "" {
		prefix = s.defaultPrefix
	}

	b := newBookingFromQuote(req, quote)

	if err := s.bookingRepo.CreatePending(ctx, b, prefix); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "companyID", req.CompanyID)
		return nil, err
	}

	if err := s.bookingRepo.FinalizeCreation(ctx, b); err != nil {
		perr := s.compensate(ctx, b, err)
		logger.ExitMethodWithError("bookingService.CreateBooking", perr, "bookingID", b.ID, "number", b.Number)
		return nil, perr
	}

	logger.Info("Booking created", "bookingID", b.ID, "number", b.Number, "total", b.TotalPrice.StringFixed(2))
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID, "number", b.Number)
	return b, nil
}

func newBookingFromQuote(req domain.CreateBookingRequest, quote *domain.Quote) *domain.Booking {
	b := &domain.Booking{
		CompanyID:        req.CompanyID,
		CustomerID:       *req.CustomerID,
		GroupID:          req.GroupID,
		VehicleID:        req.VehicleID,
		PickupLocationID: req.PickupLocationID,
		ReturnLocationID: req.ReturnLocationID,
		PickupDate:       req.PickupDate,
		PickupTime:       req.PickupTime,
		ReturnDate:       req.ReturnDate,
		ReturnTime:       req.ReturnTime,
		RateName:         quote.Rate.RateName,
		KmPerDay:         quote.Rate.KmPerDay,
	}
	b.ApplyPrice(quote.Price)
	if quote.Discount != nil && quote.Discount.IsValid {
		id := quote.Discount.DiscountID
		b.DiscountCodeID = &id
	}
	for _, line := range quote.Price.Extras {
		b.Extras = append(b.Extras, domain.BookingExtra{
			ExtraID:     line.ExtraID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			IsPerRental: line.IsPerRental,
			Total:       line.Total,
		})
	}
	return b
}

// compensate cancels a booking whose second creation phase failed. When the
// compensation itself fails the row stays incomplete and the reconciliation
// job picks it up.
func (s *bookingService) compensate(ctx context.Context, b *domain.Booking, cause error) error {
	step := repository.StepMarkComplete
	var stepErr repository.StepError
	if errors.As(cause, &stepErr) {
		step = stepErr.Step
	}

	perr := domain.PartialWriteInconsistencyError{BookingID: b.ID, Number: b.Number, Step: step, Err: cause}

	reason := fmt.Sprintf("creation failed at %s", step)
	if err := s.bookingRepo.AbandonCreation(context.WithoutCancel(ctx), b.CompanyID, b.ID, reason); err != nil {
		logger.Error("Booking compensation failed, left for reconciliation",
			"bookingID", b.ID, "number", b.Number, "step", step, "cause", cause, "error", err)
		return perr
	}
	perr.Compensated = true
	logger.Warn("Booking creation compensated", "bookingID", b.ID, "number", b.Number, "step", step, "cause", cause)
	return perr
}

func (s *bookingService) GetBooking(ctx context.Context, companyID, bookingID int32) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, companyID, bookingID)
}

func (s *bookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) ConfirmBooking(ctx context.Context, companyID, bookingID int32, payment *domain.PaymentInfo) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ConfirmBooking", "companyID", companyID, "bookingID", bookingID)

	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmBooking", err, "bookingID", bookingID)
		return nil, err
	}
	from := b.Status
	now := s.now()
	if err := b.Transition(domain.BookingStatusConfirmed, now); err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmBooking", err, "bookingID", bookingID, "status", from)
		return nil, err
	}
	if payment != nil {
		paidAt := payment.PaidAt
		if paidAt.IsZero() {
			paidAt = now
		}
		b.IsPaid = true
		b.PaidAt = &paidAt
		b.PaymentMethod = payment.Method
	}

	if err := s.bookingRepo.UpdateStatus(ctx, b, from); err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmBooking", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.ConfirmBooking", "bookingID", bookingID, "paid", b.IsPaid)
	return b, nil
}

func (s *bookingService) StartRental(ctx context.Context, req domain.HandoverRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.StartRental", "companyID", req.CompanyID, "bookingID", req.BookingID, "vehicleID", req.VehicleID)

	if err := req.InspectionRecord.Validate(); err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, req.CompanyID, req.BookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	vehicleID := req.VehicleID
	if vehicleID == 0 && b.VehicleID != nil {
		vehicleID = *b.VehicleID
	}
	if vehicleID <= 0 {
		err := domain.ValidationError{Field: "vehicle_id", Msg: "a vehicle must be assigned at handover"}
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.CompanyID, vehicleID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "vehicleID", vehicleID)
		return nil, err
	}
	if vehicle.GroupID != b.GroupID {
		err := domain.ValidationError{Field: "vehicle_id", Msg: "vehicle does not belong to the booked group"}
		logger.ExitMethodWithError("bookingService.StartRental", err, "vehicleID", vehicleID)
		return nil, err
	}
	if !vehicle.IsActive {
		err := domain.ValidationError{Field: "vehicle_id", Msg: "vehicle is not active"}
		logger.ExitMethodWithError("bookingService.StartRental", err, "vehicleID", vehicleID)
		return nil, err
	}

	if err := s.verifyPhotos(ctx, b, req.Photos); err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	from := b.Status
	if err := b.Transition(domain.BookingStatusInProgress, s.now()); err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID, "status", from)
		return nil, err
	}
	record := req.InspectionRecord
	b.VehicleID = &vehicleID
	b.Handover = &record

	// The repository re-checks the vehicle under a row lock.
	if err := s.bookingRepo.StartRental(ctx, b, from); err != nil {
		logger.ExitMethodWithError("bookingService.StartRental", err, "bookingID", req.BookingID, "vehicleID", vehicleID)
		return nil, err
	}
	logger.ExitMethod("bookingService.StartRental", "bookingID", b.ID, "vehicleID", vehicleID)
	return b, nil
}

func (s *bookingService) CompleteRental(ctx context.Context, req domain.ReturnRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CompleteRental", "companyID", req.CompanyID, "bookingID", req.BookingID)

	if err := req.InspectionRecord.Validate(); err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID)
		return nil, err
	}
	if err := req.Charges.Validate(); err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, req.CompanyID, req.BookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID)
		return nil, err
	}
	if err := s.verifyPhotos(ctx, b, req.Photos); err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID)
		return nil, err
	}

	if err := b.Transition(domain.BookingStatusCompleted, s.now()); err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID, "status", b.Status)
		return nil, err
	}
	record := req.InspectionRecord
	b.Return = &record
	b.AdditionalCharges = req.Charges
	b.TotalPrice = b.FinalTotal()

	if err := s.bookingRepo.CompleteRental(ctx, b); err != nil {
		logger.ExitMethodWithError("bookingService.CompleteRental", err, "bookingID", req.BookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.CompleteRental", "bookingID", b.ID, "totalPrice", b.TotalPrice.StringFixed(2))
	return b, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, companyID, bookingID int32, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CancelBooking", "companyID", companyID, "bookingID", bookingID)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := domain.ValidationError{Field: "reason", Msg: "is required"}
		logger.ExitMethodWithError("bookingService.CancelBooking", err, "bookingID", bookingID)
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CancelBooking", err, "bookingID", bookingID)
		return nil, err
	}
	if b.Status == domain.BookingStatusCancelled {
		logger.ExitMethod("bookingService.CancelBooking", "bookingID", bookingID, "noop", true)
		return b, nil
	}

	if b.CreationState == domain.CreationStateIncomplete {
		if err := s.bookingRepo.AbandonCreation(ctx, companyID, bookingID, reason); err != nil {
			return s.cancelRaced(ctx, companyID, bookingID, err)
		}
		return s.bookingRepo.GetByID(ctx, companyID, bookingID)
	}

	from := b.Status
	if err := b.Transition(domain.BookingStatusCancelled, s.now()); err != nil {
		logger.ExitMethodWithError("bookingService.CancelBooking", err, "bookingID", bookingID, "status", from)
		return nil, err
	}
	b.CancelReason = reason

	if err := s.bookingRepo.UpdateStatus(ctx, b, from); err != nil {
		return s.cancelRaced(ctx, companyID, bookingID, err)
	}
	logger.ExitMethod("bookingService.CancelBooking", "bookingID", bookingID, "from", from)
	return b, nil
}

// cancelRaced turns a lost race against another cancellation into the no-op
// success cancelling twice yields.
func (s *bookingService) cancelRaced(ctx context.Context, companyID, bookingID int32, cause error) (*domain.Booking, error) {
	if !domain.IsConflict(cause) {
		logger.ExitMethodWithError("bookingService.CancelBooking", cause, "bookingID", bookingID)
		return nil, cause
	}
	current, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err == nil && current.Status == domain.BookingStatusCancelled {
		logger.ExitMethod("bookingService.CancelBooking", "bookingID", bookingID, "noop", true)
		return current, nil
	}
	logger.ExitMethodWithError("bookingService.CancelBooking", cause, "bookingID", bookingID)
	return nil, cause
}

func (s *bookingService) UpdateStatus(ctx context.Context, companyID, bookingID int32, to domain.BookingStatus) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.UpdateStatus", "companyID", companyID, "bookingID", bookingID, "to", to)

	if !to.Valid() {
		err := domain.ValidationError{Field: "status", Msg: "unknown booking status"}
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}
	switch to {
	case domain.BookingStatusConfirmed:
	case domain.BookingStatusCancelled:
		err := domain.ValidationError{Field: "status", Msg: "cancellation requires a reason"}
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	case domain.BookingStatusInProgress, domain.BookingStatusCompleted:
		// Handover and return carry inspection records and the final total.
		err := domain.ValidationError{Field: "status", Msg: fmt.Sprintf("%s is set by the handover or return operation", to)}
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	default:
		err := domain.ValidationError{Field: "status", Msg: fmt.Sprintf("cannot set status %s directly", to)}
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}
	from := b.Status
	if err := b.Transition(to, s.now()); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID, "from", from)
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, b, from); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.UpdateStatus", "bookingID", bookingID, "from", from, "to", to)
	return b, nil
}

func (s *bookingService) verifyPhotos(ctx context.Context, b *domain.Booking, keys []string) error {
	prefix := photoKeyPrefix(b.CompanyID, b.ID)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			return domain.ValidationError{Field: "photos", Msg: fmt.Sprintf("photo %q does not belong to this booking", key)}
		}
		if s.photos == nil {
			continue
		}
		exists, _, err := s.photos.FileExists(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check photo %s: %w", key, err)
		}
		if !exists {
			return domain.ValidationError{Field: "photos", Msg: fmt.Sprintf("photo %q was not uploaded", key)}
		}
	}
	return nil
}
