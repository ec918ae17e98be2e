package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/repository/postgres"
)

var bookingCols = []string{
	"id", "company_id", "booking_number", "customer_id", "group_id", "vehicle_id", "pickup_location_id", "return_location_id",
	"pickup_date", "pickup_time", "return_date", "return_time", "days", "rate_name", "daily_price", "km_per_day",
	"base_price", "extras_total", "location_surcharge", "discount_code_id", "discount_amount", "subtotal", "tax_rate", "tax_amount", "total_price", "deposit_amount",
	"is_paid", "paid_at", "payment_method", "status", "creation_state", "cancel_reason",
	"handover_mileage", "handover_fuel_level", "handover_notes", "handover_photos",
	"return_mileage", "return_fuel_level", "return_notes", "return_photos",
	"damage_charge", "fuel_charge", "cleaning_charge", "extra_km_charge", "late_return_charge",
	"handover_at", "return_at", "cancelled_at", "created_at", "updated_at",
}

func bookingRows(id int32, status string, vehicleID interface{}) *sqlmock.Rows {
	pickup := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	return sqlmock.NewRows(bookingCols).AddRow(
		id, 1, "BK-2024-0001", 5, 10, vehicleID, 1, 2,
		pickup, "10:00", pickup.AddDate(0, 0, 4), "10:00", 4, "Standard", "30.00", 250,
		"120.00", "0.00", "25.00", nil, "0.00", "145.00", "0.2100", "30.45", "175.45", "300.00",
		false, nil, "", status, "complete", "",
		nil, nil, "", "{}",
		nil, nil, "", "{}",
		"0.00", "0.00", "0.00", "0.00", "0.00",
		nil, nil, nil, now, now,
	)
}

func newBooking() *domain.Booking {
	return &domain.Booking{
		CompanyID:        1,
		CustomerID:       5,
		GroupID:          10,
		PickupLocationID: 1,
		ReturnLocationID: 2,
		PickupDate:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		PickupTime:       "10:00",
		ReturnDate:       time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		ReturnTime:       "10:00",
		Days:             4,
		RateName:         "Standard",
		DailyPrice:       decimal.NewFromInt(30),
		BasePrice:        decimal.NewFromInt(120),
		Subtotal:         decimal.NewFromInt(120),
		TaxRate:          domain.DefaultTaxRate,
		TaxAmount:        decimal.RequireFromString("25.20"),
		TotalPrice:       decimal.RequireFromString("145.20"),
	}
}

func TestBookingRepository_CreatePending(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO booking_sequences").
			WithArgs(int32(1), time.Now().UTC().Year()).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, time.Now(), time.Now()))
		mock.ExpectCommit()

		err = repo.CreatePending(ctx, b, "mad")
		require.NoError(t, err)
		assert.Equal(t, int32(7), b.ID)
		assert.Equal(t, domain.FormatBookingNumber("MAD", time.Now().UTC().Year(), 42), b.Number)
		assert.Equal(t, domain.CreationStateIncomplete, b.CreationState)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Vehicle already booked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		vehicleID := int32(3)
		b := newBooking()
		b.VehicleID = &vehicleID

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO booking_sequences").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM vehicles WHERE id = \\$1 AND company_id = \\$2 FOR UPDATE").
			WithArgs(vehicleID, int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "group_id", "location_id", "plate", "status", "is_active"}).
				AddRow(3, 1, 10, 1, "1234ABC", "available", true))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err = repo.CreatePending(ctx, b, "BK")
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion constraint maps to conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		vehicleID := int32(3)
		b := newBooking()
		b.VehicleID = &vehicleID

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO booking_sequences").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
		mock.ExpectQuery("FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "group_id", "location_id", "plate", "status", "is_active"}).
				AddRow(3, 1, 10, 1, "1234ABC", "available", true))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_vehicle_no_overlap"})
		mock.ExpectRollback()

		err = repo.CreatePending(ctx, b, "BK")
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Vehicle from another group", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		vehicleID := int32(3)
		b := newBooking()
		b.VehicleID = &vehicleID

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO booking_sequences").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
		mock.ExpectQuery("FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "group_id", "location_id", "plate", "status", "is_active"}).
				AddRow(3, 1, 99, 1, "1234ABC", "available", true))
		mock.ExpectRollback()

		err = repo.CreatePending(ctx, b, "BK")
		assert.True(t, domain.IsValidation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_FinalizeCreation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success with extras and discount", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		discountID := int32(9)
		b := newBooking()
		b.ID = 7
		b.DiscountCodeID = &discountID
		b.Extras = []domain.BookingExtra{{ExtraID: 2, Name: "Child seat", Quantity: 1, UnitPrice: decimal.NewFromInt(5), Total: decimal.NewFromInt(20)}}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO booking_extras").
			WithArgs(int32(7), int32(2), "Child seat", 1, sqlmock.AnyArg(), false, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectExec("UPDATE discount_codes SET current_uses = current_uses \\+ 1").
			WithArgs(discountID, int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE bookings SET creation_state = 'complete'").
			WithArgs(sqlmock.AnyArg(), int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.FinalizeCreation(ctx, b))
		assert.Equal(t, domain.CreationStateComplete, b.CreationState)
		assert.Equal(t, int32(100), b.Extras[0].ID)
		assert.Equal(t, int32(7), b.Extras[0].BookingID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Discount cap reached", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		discountID := int32(9)
		b := newBooking()
		b.ID = 7
		b.CreationState = domain.CreationStateIncomplete
		b.DiscountCodeID = &discountID

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE discount_codes").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.FinalizeCreation(ctx, b)
		require.Error(t, err)
		var stepErr repository.StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, repository.StepDiscountUsage, stepErr.Step)
		assert.True(t, errors.Is(err, domain.ErrDiscountExhausted))
		assert.Equal(t, domain.CreationStateIncomplete, b.CreationState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_AbandonCreation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	mock.ExpectExec("UPDATE bookings SET status = 'cancelled', creation_state = 'failed'").
		WithArgs("creation incomplete", sqlmock.AnyArg(), int32(7), int32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.AbandonCreation(context.Background(), 1, 7, "creation incomplete"))

	mock.ExpectExec("UPDATE bookings SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.AbandonCreation(context.Background(), 1, 7, "creation incomplete")
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 AND company_id = \\$2").
			WithArgs(int32(7), int32(1)).
			WillReturnRows(bookingRows(7, "confirmed", 3))
		mock.ExpectQuery("FROM booking_extras WHERE booking_id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "extra_id", "name", "quantity", "unit_price", "is_per_rental", "total"}).
				AddRow(1, 7, 2, "GPS", 1, "5.00", false, "20.00"))

		b, err := repo.GetByID(ctx, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		require.NotNil(t, b.VehicleID)
		assert.Equal(t, int32(3), *b.VehicleID)
		assert.Equal(t, "145.00", b.Subtotal.StringFixed(2))
		assert.Nil(t, b.Handover)
		require.Len(t, b.Extras, 1)
		assert.Equal(t, "GPS", b.Extras[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows(bookingCols))

		_, err = repo.GetByID(ctx, 1, 404)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestBookingRepository_StartRental(t *testing.T) {
	ctx := context.Background()
	vehicleID := int32(3)
	handoverAt := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	handover := func() *domain.Booking {
		b := newBooking()
		b.ID = 7
		b.VehicleID = &vehicleID
		b.Status = domain.BookingStatusInProgress
		b.Handover = &domain.InspectionRecord{Mileage: 12000, FuelLevel: 100}
		b.HandoverAt = &handoverAt
		return b
	}
	vehicleRow := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "company_id", "group_id", "location_id", "plate", "status", "is_active"}).
			AddRow(3, 1, 10, 1, "1234ABC", status, true)
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM vehicles WHERE id = \\$1 AND company_id = \\$2 FOR UPDATE").WillReturnRows(vehicleRow("available"))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(vehicleID, int32(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("UPDATE bookings SET vehicle_id = \\$1, status = 'in_progress'").
			WithArgs(vehicleID, int32(12000), 100, "", sqlmock.AnyArg(), handoverAt, int32(7), int32(1), domain.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE vehicles SET status = 'rented'").
			WithArgs(vehicleID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.StartRental(ctx, handover(), domain.BookingStatusConfirmed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Vehicle out on another rental", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM vehicles").WillReturnRows(vehicleRow("rented"))
		mock.ExpectRollback()

		err = repo.StartRental(ctx, handover(), domain.BookingStatusConfirmed)
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Status changed concurrently", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM vehicles").WillReturnRows(vehicleRow("available"))
		mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("UPDATE bookings SET vehicle_id").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.StartRental(ctx, handover(), domain.BookingStatusConfirmed)
		assert.True(t, domain.IsConflict(err))
		assert.False(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_CompleteRental(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	vehicleID := int32(3)
	returnAt := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	b := newBooking()
	b.ID = 7
	b.VehicleID = &vehicleID
	b.Return = &domain.InspectionRecord{Mileage: 12650, FuelLevel: 80}
	b.ReturnAt = &returnAt
	b.AdditionalCharges = domain.AdditionalCharges{Damage: decimal.NewFromInt(60)}
	b.TotalPrice = b.FinalTotal()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status = 'completed'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE vehicles SET status = 'available'").
		WithArgs(vehicleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CompleteRental(context.Background(), b))
	assert.Equal(t, "205.20", b.TotalPrice.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancel pending booking without vehicle", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		now := time.Now()
		b := newBooking()
		b.ID = 7
		b.Status = domain.BookingStatusCancelled
		b.CancelReason = "customer request"
		b.CancelledAt = &now

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs(domain.BookingStatusCancelled, "customer request", nil, nil, sqlmock.AnyArg(),
				false, nil, "", sqlmock.AnyArg(), int32(7), int32(1), domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.UpdateStatus(ctx, b, domain.BookingStatusPending))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancel in progress releases vehicle", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		vehicleID := int32(3)
		b := newBooking()
		b.ID = 7
		b.VehicleID = &vehicleID
		b.Status = domain.BookingStatusCancelled

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE vehicles SET status = \\$1").
			WithArgs(domain.VehicleStatusAvailable, vehicleID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.UpdateStatus(ctx, b, domain.BookingStatusInProgress))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale status", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		b := newBooking()
		b.ID = 7
		b.Status = domain.BookingStatusConfirmed

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.UpdateStatus(ctx, b, domain.BookingStatusPending)
		assert.True(t, domain.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ListBlockingVehicleIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	from := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT DISTINCT vehicle_id FROM bookings").
		WithArgs(int32(1), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(3).AddRow(4))

	ids, err := repo.ListBlockingVehicleIDs(context.Background(), 1, from, to)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_RecordPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	paidAt := time.Now()
	mock.ExpectExec("UPDATE bookings SET is_paid = true").
		WithArgs(paidAt, "card", sqlmock.AnyArg(), int32(7), int32(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.RecordPayment(context.Background(), 1, 7, domain.PaymentInfo{Method: "card", PaidAt: paidAt})
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
