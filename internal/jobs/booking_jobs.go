package jobs

import (
	"context"
	"time"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
)

const (
	reconcileReason = "creation incomplete"
	expireReason    = "not confirmed before pickup"
)

// ReconcileIncompleteBookings cancels bookings whose creation never finished,
// after a grace period that lets in-flight requests complete.
func (jr *JobRunner) ReconcileIncompleteBookings() {
	jr.runWithRecovery("ReconcileIncompleteBookings", func() {
		count, err := jr.reconcileIncomplete(context.Background())
		if err != nil {
			logger.Error("Failed to reconcile incomplete bookings", "error", err)
			return
		}
		logger.Info("Reconciled incomplete bookings", "count", count)
	})
}

func (jr *JobRunner) reconcileIncomplete(ctx context.Context) (int, error) {
	grace := time.Duration(jr.config.Booking.IncompleteGraceMinutes) * time.Minute
	cutoff := jr.now().Add(-grace)

	stale, err := jr.bookings.ListIncompleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range stale {
		if err := jr.bookings.AbandonCreation(ctx, b.CompanyID, b.ID, reconcileReason); err != nil {
			if domain.IsConflict(err) {
				// Finished or abandoned since the listing.
				logger.Debug("Incomplete booking already resolved", "booking_id", b.ID)
				continue
			}
			logger.Error("Failed to abandon incomplete booking", "booking_id", b.ID, "number", b.Number, "error", err)
			continue
		}
		logger.Warn("Abandoned incomplete booking",
			"booking_id", b.ID,
			"company_id", b.CompanyID,
			"number", b.Number,
			"created_at", b.CreatedAt)
		count++
	}
	return count, nil
}

// ExpireUnconfirmedBookings cancels pending bookings whose pickup is long past.
func (jr *JobRunner) ExpireUnconfirmedBookings() {
	jr.runWithRecovery("ExpireUnconfirmedBookings", func() {
		count, err := jr.expireUnconfirmed(context.Background())
		if err != nil {
			logger.Error("Failed to expire unconfirmed bookings", "error", err)
			return
		}
		logger.Info("Expired unconfirmed bookings", "count", count)
	})
}

func (jr *JobRunner) expireUnconfirmed(ctx context.Context) (int, error) {
	expiry := time.Duration(jr.config.Booking.PendingExpiryHours) * time.Hour
	pickupBefore := jr.now().Add(-expiry)

	stale, err := jr.bookings.ListStalePending(ctx, pickupBefore)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range stale {
		if _, err := jr.services.Booking.CancelBooking(ctx, b.CompanyID, b.ID, expireReason); err != nil {
			logger.Error("Failed to expire booking", "booking_id", b.ID, "number", b.Number, "error", err)
			continue
		}
		logger.Debug("Expired pending booking", "booking_id", b.ID, "pickup_date", b.PickupDate)
		count++
	}
	return count, nil
}
