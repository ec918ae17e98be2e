package repository

import (
	"context"
	"time"

	"fleetrent-backend/internal/domain"
)

// Lookups return domain.NotFoundError when no row matches.

type CompanyRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Company, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, companyID, id int32) (*domain.Location, error)
}

type ExtraRepository interface {
	// ListByIDs returns the active catalog extras among ids.
	ListByIDs(ctx context.Context, companyID int32, ids []int32) ([]domain.Extra, error)
}

type VehicleRepository interface {
	GetByID(ctx context.Context, companyID, id int32) (*domain.Vehicle, error)
	GetGroup(ctx context.Context, companyID, groupID int32) (*domain.VehicleGroup, error)
	// ListCandidates returns active, available vehicles of active and visible
	// groups matching the filter's type and location.
	ListCandidates(ctx context.Context, filter domain.SearchFilter) ([]domain.CandidateVehicle, error)
}

type RateRepository interface {
	GetByID(ctx context.Context, companyID, id int32) (*domain.Rate, error)
	ListActive(ctx context.Context, companyID int32) ([]domain.Rate, error)
	ListTiers(ctx context.Context, rateID, groupID int32) ([]domain.PriceTier, error)
	ReplaceTiers(ctx context.Context, rateID, groupID int32, tiers []domain.PriceTier) error
}

type DiscountRepository interface {
	GetByCode(ctx context.Context, companyID int32, code string) (*domain.DiscountCode, error)
	Create(ctx context.Context, d *domain.DiscountCode) error
}

type BookingRepository interface {
	// CreatePending allocates the booking number and inserts the booking with
	// creation_state=incomplete in one transaction.
	CreatePending(ctx context.Context, b *domain.Booking, prefix string) error
	// FinalizeCreation inserts the extras, redeems the discount code and marks
	// the booking complete in one transaction.
	FinalizeCreation(ctx context.Context, b *domain.Booking) error
	// AbandonCreation cancels a booking whose creation did not complete and
	// marks it failed.
	AbandonCreation(ctx context.Context, companyID, bookingID int32, reason string) error

	GetByID(ctx context.Context, companyID, id int32) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	// ListBlockingVehicleIDs returns the vehicles held by non-terminal
	// bookings overlapping [from, to] by date.
	ListBlockingVehicleIDs(ctx context.Context, companyID int32, from, to time.Time) ([]int32, error)

	// Lifecycle writes are guarded by the expected current status and return
	// a ConflictError when the row moved underneath.
	StartRental(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error
	CompleteRental(ctx context.Context, b *domain.Booking) error
	UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error
	RecordPayment(ctx context.Context, companyID, bookingID int32, info domain.PaymentInfo) error

	ListIncompleteBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	ListStalePending(ctx context.Context, pickupBefore time.Time) ([]domain.Booking, error)
}

// Pinger is satisfied by the store and used by health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Creation steps reported by StepError.
const (
	StepBookingExtras = "booking_extras"
	StepDiscountUsage = "discount_usage"
	StepMarkComplete  = "mark_complete"
)

// StepError names the booking creation step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e StepError) Unwrap() error { return e.Err }
