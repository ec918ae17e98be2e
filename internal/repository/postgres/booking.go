package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/utils"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, company_id, booking_number, customer_id, group_id, vehicle_id, pickup_location_id, return_location_id,
	pickup_date, pickup_time, return_date, return_time, days, rate_name, daily_price, km_per_day,
	base_price, extras_total, location_surcharge, discount_code_id, discount_amount, subtotal, tax_rate, tax_amount, total_price, deposit_amount,
	is_paid, paid_at, payment_method, status, creation_state, cancel_reason,
	handover_mileage, handover_fuel_level, handover_notes, handover_photos,
	return_mileage, return_fuel_level, return_notes, return_photos,
	damage_charge, fuel_charge, cleaning_charge, extra_km_charge, late_return_charge,
	handover_at, return_at, cancelled_at, created_at, updated_at`

// Statuses that hold a vehicle for their dates.
const blockingStatusClause = `status NOT IN ('cancelled', 'completed')`

func scanBooking(row interface{ Scan(...interface{}) error }) (*domain.Booking, error) {
	var (
		b                     domain.Booking
		vehicleID, discountID sql.NullInt32
		paidAt                sql.NullTime
		handoverAt, returnAt  sql.NullTime
		cancelledAt           sql.NullTime
		hoMileage, hoFuel     sql.NullInt32
		rtMileage, rtFuel     sql.NullInt32
		hoNotes, rtNotes      string
		hoPhotos, rtPhotos    []string
	)
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.Number, &b.CustomerID, &b.GroupID, &vehicleID, &b.PickupLocationID, &b.ReturnLocationID,
		&b.PickupDate, &b.PickupTime, &b.ReturnDate, &b.ReturnTime, &b.Days, &b.RateName, &b.DailyPrice, &b.KmPerDay,
		&b.BasePrice, &b.ExtrasTotal, &b.LocationSurcharge, &discountID, &b.DiscountAmount, &b.Subtotal, &b.TaxRate, &b.TaxAmount, &b.TotalPrice, &b.DepositAmount,
		&b.IsPaid, &paidAt, &b.PaymentMethod, &b.Status, &b.CreationState, &b.CancelReason,
		&hoMileage, &hoFuel, &hoNotes, pq.Array(&hoPhotos),
		&rtMileage, &rtFuel, &rtNotes, pq.Array(&rtPhotos),
		&b.AdditionalCharges.Damage, &b.AdditionalCharges.Fuel, &b.AdditionalCharges.Cleaning, &b.AdditionalCharges.ExtraKm, &b.AdditionalCharges.LateReturn,
		&handoverAt, &returnAt, &cancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.PickupDate = utils.DateOf(b.PickupDate)
	b.ReturnDate = utils.DateOf(b.ReturnDate)
	if vehicleID.Valid {
		v := vehicleID.Int32
		b.VehicleID = &v
	}
	if discountID.Valid {
		d := discountID.Int32
		b.DiscountCodeID = &d
	}
	b.PaidAt = timePtr(paidAt)
	b.HandoverAt = timePtr(handoverAt)
	b.ReturnAt = timePtr(returnAt)
	b.CancelledAt = timePtr(cancelledAt)
	if hoMileage.Valid {
		b.Handover = &domain.InspectionRecord{Mileage: hoMileage.Int32, FuelLevel: int(hoFuel.Int32), Notes: hoNotes, Photos: hoPhotos}
	}
	if rtMileage.Valid {
		b.Return = &domain.InspectionRecord{Mileage: rtMileage.Int32, FuelLevel: int(rtFuel.Int32), Notes: rtNotes, Photos: rtPhotos}
	}
	return &b, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// nextBookingNumber bumps the company's sequence for year. The upsert holds
// the sequence row lock until the surrounding transaction ends, so concurrent
// creations get distinct numbers.
func nextBookingNumber(ctx context.Context, q queryer, companyID int32, prefix string, year int) (string, error) {
	query := `INSERT INTO booking_sequences (company_id, year, last_value) VALUES ($1, $2, 1)
	          ON CONFLICT (company_id, year) DO UPDATE SET last_value = booking_sequences.last_value + 1
	          RETURNING last_value`
	var seq int64
	if err := q.QueryRowContext(ctx, query, companyID, year).Scan(&seq); err != nil {
		return "", err
	}
	return domain.FormatBookingNumber(prefix, year, seq), nil
}

// lockVehicle takes a row lock on the vehicle and rejects vehicles that are
// out of service.
func lockVehicle(ctx context.Context, q queryer, companyID, vehicleID int32, allowed ...domain.VehicleStatus) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, company_id, group_id, location_id, plate, status, is_active FROM vehicles WHERE id = $1 AND company_id = $2 FOR UPDATE`
	err := q.QueryRowContext(ctx, query, vehicleID, companyID).Scan(&v.ID, &v.CompanyID, &v.GroupID, &v.LocationID, &v.Plate, &v.Status, &v.IsActive)
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	if !v.IsActive {
		return nil, domain.VehicleUnavailable(vehicleID)
	}
	for _, s := range allowed {
		if v.Status == s {
			return v, nil
		}
	}
	return nil, domain.VehicleUnavailable(vehicleID)
}

// vehicleBusy reports whether another non-terminal booking holds the vehicle
// on any date of [from, to].
func vehicleBusy(ctx context.Context, q queryer, vehicleID, exceptBookingID int32, from, to time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM bookings
	            WHERE vehicle_id = $1 AND id <> $2 AND ` + blockingStatusClause + `
	              AND pickup_date <= $4 AND return_date >= $3)`
	var busy bool
	err := q.QueryRowContext(ctx, query, vehicleID, exceptBookingID, utils.DateOf(from), utils.DateOf(to)).Scan(&busy)
	return busy, err
}

func (r *bookingRepository) CreatePending(ctx context.Context, b *domain.Booking, prefix string) error {
	logger.EnterMethod("bookingRepository.CreatePending", "companyID", b.CompanyID, "groupID", b.GroupID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	number, err := nextBookingNumber(ctx, tx, b.CompanyID, prefix, now.Year())
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.CreatePending", err, "step", "sequence")
		return err
	}
	b.Number = number

	if b.VehicleID != nil {
		v, err := lockVehicle(ctx, tx, b.CompanyID, *b.VehicleID,
			domain.VehicleStatusAvailable, domain.VehicleStatusReserved, domain.VehicleStatusRented)
		if err != nil {
			logger.ExitMethodWithError("bookingRepository.CreatePending", err, "vehicleID", *b.VehicleID)
			return err
		}
		if v.GroupID != b.GroupID {
			return domain.ValidationError{Field: "vehicle_id", Msg: "vehicle does not belong to the requested group"}
		}
		busy, err := vehicleBusy(ctx, tx, v.ID, 0, b.PickupDate, b.ReturnDate)
		if err != nil {
			return err
		}
		if busy {
			logger.ExitMethodWithError("bookingRepository.CreatePending", domain.ErrVehicleUnavailable, "vehicleID", v.ID)
			return domain.VehicleUnavailable(v.ID)
		}
	}

	b.Status = domain.BookingStatusPending
	b.CreationState = domain.CreationStateIncomplete
	query := `INSERT INTO bookings (
	            company_id, booking_number, customer_id, group_id, vehicle_id, pickup_location_id, return_location_id,
	            pickup_date, pickup_time, return_date, return_time, days, rate_name, daily_price, km_per_day,
	            base_price, extras_total, location_surcharge, discount_code_id, discount_amount, subtotal,
	            tax_rate, tax_amount, total_price, deposit_amount, status, creation_state, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
	                  $22, $23, $24, $25, $26, $27, $28, $29)
	          RETURNING id, created_at, updated_at`
	logger.DatabaseCall("insert_booking", "INSERT INTO bookings", "number", b.Number)
	err = tx.QueryRowContext(ctx, query,
		b.CompanyID, b.Number, b.CustomerID, b.GroupID, b.VehicleID, b.PickupLocationID, b.ReturnLocationID,
		utils.DateOf(b.PickupDate), b.PickupTime, utils.DateOf(b.ReturnDate), b.ReturnTime, b.Days, b.RateName, b.DailyPrice, b.KmPerDay,
		b.BasePrice, b.ExtrasTotal, b.LocationSurcharge, b.DiscountCodeID, b.DiscountAmount, b.Subtotal,
		b.TaxRate, b.TaxAmount, b.TotalPrice, b.DepositAmount, b.Status, b.CreationState, now, now,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		err = bookingWriteError(err, b.VehicleID)
		logger.DatabaseResult("insert_booking", 0, err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return bookingWriteError(err, b.VehicleID)
	}
	logger.DatabaseResult("insert_booking", 1, nil, "bookingID", b.ID)
	logger.ExitMethod("bookingRepository.CreatePending", "bookingID", b.ID, "number", b.Number)
	return nil
}

func (r *bookingRepository) FinalizeCreation(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.FinalizeCreation", "bookingID", b.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.StepError{Step: repository.StepBookingExtras, Err: err}
	}
	defer tx.Rollback()

	extraQuery := `INSERT INTO booking_extras (booking_id, extra_id, name, quantity, unit_price, is_per_rental, total)
	               VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	for i := range b.Extras {
		e := &b.Extras[i]
		e.BookingID = b.ID
		if err := tx.QueryRowContext(ctx, extraQuery, b.ID, e.ExtraID, e.Name, e.Quantity, e.UnitPrice, e.IsPerRental, e.Total).Scan(&e.ID); err != nil {
			logger.ExitMethodWithError("bookingRepository.FinalizeCreation", err, "step", repository.StepBookingExtras)
			return repository.StepError{Step: repository.StepBookingExtras, Err: err}
		}
	}

	if b.DiscountCodeID != nil {
		// Single statement increment: the row lock taken by UPDATE serializes
		// concurrent redemptions and the predicate re-reads the committed count.
		res, err := tx.ExecContext(ctx,
			`UPDATE discount_codes SET current_uses = current_uses + 1
			 WHERE id = $1 AND company_id = $2 AND is_active = true AND (max_uses IS NULL OR current_uses < max_uses)`,
			*b.DiscountCodeID, b.CompanyID)
		if err == nil {
			var n int64
			if n, err = res.RowsAffected(); err == nil && n == 0 {
				err = domain.ValidationError{Field: "discount_code", Msg: domain.ErrDiscountExhausted.Error(), Err: domain.ErrDiscountExhausted}
			}
		}
		if err != nil {
			logger.ExitMethodWithError("bookingRepository.FinalizeCreation", err, "step", repository.StepDiscountUsage)
			return repository.StepError{Step: repository.StepDiscountUsage, Err: err}
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET creation_state = 'complete', updated_at = $1 WHERE id = $2 AND creation_state = 'incomplete'`,
		time.Now().UTC(), b.ID)
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil && n == 0 {
			err = domain.ConflictError{Resource: "booking", Msg: "booking was abandoned before creation finished"}
		}
	}
	if err != nil {
		return repository.StepError{Step: repository.StepMarkComplete, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return repository.StepError{Step: repository.StepMarkComplete, Err: err}
	}
	b.CreationState = domain.CreationStateComplete
	logger.ExitMethod("bookingRepository.FinalizeCreation", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) AbandonCreation(ctx context.Context, companyID, bookingID int32, reason string) error {
	now := time.Now().UTC()
	query := `UPDATE bookings SET status = 'cancelled', creation_state = 'failed', cancel_reason = $1, cancelled_at = $2, updated_at = $2
	          WHERE id = $3 AND company_id = $4 AND creation_state = 'incomplete'`
	logger.DatabaseCall("abandon_booking", query, "bookingID", bookingID)
	res, err := r.db.ExecContext(ctx, query, reason, now, bookingID, companyID)
	if err != nil {
		logger.DatabaseResult("abandon_booking", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("abandon_booking", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "booking", Msg: "booking is no longer incomplete"}
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND company_id = $2`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		return nil, notFound(err, "booking")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, extra_id, name, quantity, unit_price, is_per_rental, total FROM booking_extras WHERE booking_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.BookingExtra
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ExtraID, &e.Name, &e.Quantity, &e.UnitPrice, &e.IsPerRental, &e.Total); err != nil {
			return nil, err
		}
		b.Extras = append(b.Extras, e)
	}
	return b, rows.Err()
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	offset := (f.Page - 1) * f.PageSize
	sql := `SELECT ` + bookingColumns + ` FROM bookings WHERE company_id = $1`

	args := []interface{}{f.CompanyID}
	argIdx := 2
	if f.Status != "" {
		sql += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.From != nil {
		sql += fmt.Sprintf(" AND return_date >= $%d", argIdx)
		args = append(args, utils.DateOf(*f.From))
		argIdx++
	}
	if f.To != nil {
		sql += fmt.Sprintf(" AND pickup_date <= $%d", argIdx)
		args = append(args, utils.DateOf(*f.To))
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY pickup_date DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, f.PageSize, offset)

	bookings, err := r.queryBookings(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListBlockingVehicleIDs(ctx context.Context, companyID int32, from, to time.Time) ([]int32, error) {
	query := `SELECT DISTINCT vehicle_id FROM bookings
	          WHERE company_id = $1 AND vehicle_id IS NOT NULL AND ` + blockingStatusClause + `
	            AND pickup_date <= $3 AND return_date >= $2`
	rows, err := r.db.QueryContext(ctx, query, companyID, utils.DateOf(from), utils.DateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// StartRental assigns the vehicle and records the handover. The vehicle row
// lock plus the overlap re-check run in the same transaction as the write;
// the exclusion constraint on bookings catches anything that slips past.
func (r *bookingRepository) StartRental(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	logger.EnterMethod("bookingRepository.StartRental", "bookingID", b.ID, "vehicleID", b.VehicleID)
	if b.VehicleID == nil || b.Handover == nil || b.HandoverAt == nil {
		return domain.ValidationError{Field: "handover", Msg: "vehicle and handover record are required"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	vehicleID := *b.VehicleID
	if _, err := lockVehicle(ctx, tx, b.CompanyID, vehicleID, domain.VehicleStatusAvailable, domain.VehicleStatusReserved); err != nil {
		logger.ExitMethodWithError("bookingRepository.StartRental", err, "vehicleID", vehicleID)
		return err
	}
	busy, err := vehicleBusy(ctx, tx, vehicleID, b.ID, b.PickupDate, b.ReturnDate)
	if err != nil {
		return err
	}
	if busy {
		logger.ExitMethodWithError("bookingRepository.StartRental", domain.ErrVehicleUnavailable, "vehicleID", vehicleID)
		return domain.VehicleUnavailable(vehicleID)
	}

	query := `UPDATE bookings SET vehicle_id = $1, status = 'in_progress',
	            handover_mileage = $2, handover_fuel_level = $3, handover_notes = $4, handover_photos = $5,
	            handover_at = $6, updated_at = $6
	          WHERE id = $7 AND company_id = $8 AND status = $9 AND creation_state = 'complete'`
	h := b.Handover
	res, err := tx.ExecContext(ctx, query, vehicleID, h.Mileage, h.FuelLevel, h.Notes, pq.Array(photos(h.Photos)),
		*b.HandoverAt, b.ID, b.CompanyID, from)
	if err != nil {
		err = bookingWriteError(err, b.VehicleID)
		logger.ExitMethodWithError("bookingRepository.StartRental", err)
		return err
	}
	if err := expectOneRow(res, b.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE vehicles SET status = 'rented' WHERE id = $1`, vehicleID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return bookingWriteError(err, b.VehicleID)
	}
	logger.ExitMethod("bookingRepository.StartRental", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) CompleteRental(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.CompleteRental", "bookingID", b.ID)
	if b.Return == nil || b.ReturnAt == nil {
		return domain.ValidationError{Field: "return", Msg: "return record is required"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c := b.AdditionalCharges
	rt := b.Return
	query := `UPDATE bookings SET status = 'completed',
	            return_mileage = $1, return_fuel_level = $2, return_notes = $3, return_photos = $4,
	            damage_charge = $5, fuel_charge = $6, cleaning_charge = $7, extra_km_charge = $8, late_return_charge = $9,
	            total_price = $10, return_at = $11, updated_at = $11
	          WHERE id = $12 AND company_id = $13 AND status = 'in_progress'`
	res, err := tx.ExecContext(ctx, query, rt.Mileage, rt.FuelLevel, rt.Notes, pq.Array(photos(rt.Photos)),
		c.Damage, c.Fuel, c.Cleaning, c.ExtraKm, c.LateReturn,
		b.TotalPrice, *b.ReturnAt, b.ID, b.CompanyID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.CompleteRental", err)
		return err
	}
	if err := expectOneRow(res, b.ID); err != nil {
		return err
	}

	if b.VehicleID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE vehicles SET status = 'available' WHERE id = $1`, *b.VehicleID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("bookingRepository.CompleteRental", "bookingID", b.ID, "totalPrice", b.TotalPrice.StringFixed(2))
	return nil
}

// UpdateStatus writes the status and its side-effect columns. Leaving
// in_progress releases the vehicle; entering it marks the vehicle rented.
func (r *bookingRepository) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	logger.EnterMethod("bookingRepository.UpdateStatus", "bookingID", b.ID, "from", from, "to", b.Status)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE bookings SET status = $1, cancel_reason = $2, handover_at = $3, return_at = $4, cancelled_at = $5,
	            is_paid = $6, paid_at = $7, payment_method = $8, updated_at = $9
	          WHERE id = $10 AND company_id = $11 AND status = $12`
	res, err := tx.ExecContext(ctx, query, b.Status, b.CancelReason, b.HandoverAt, b.ReturnAt, b.CancelledAt,
		b.IsPaid, b.PaidAt, b.PaymentMethod, time.Now().UTC(), b.ID, b.CompanyID, from)
	if err != nil {
		err = bookingWriteError(err, b.VehicleID)
		logger.ExitMethodWithError("bookingRepository.UpdateStatus", err)
		return err
	}
	if err := expectOneRow(res, b.ID); err != nil {
		logger.ExitMethodWithError("bookingRepository.UpdateStatus", err)
		return err
	}

	if b.VehicleID != nil {
		var vehicleStatus domain.VehicleStatus
		switch {
		case b.Status == domain.BookingStatusInProgress:
			vehicleStatus = domain.VehicleStatusRented
		case from == domain.BookingStatusInProgress && b.Status.IsTerminal():
			vehicleStatus = domain.VehicleStatusAvailable
		}
		if vehicleStatus != "" {
			if _, err := tx.ExecContext(ctx, `UPDATE vehicles SET status = $1 WHERE id = $2`, vehicleStatus, *b.VehicleID); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return bookingWriteError(err, b.VehicleID)
	}
	logger.ExitMethod("bookingRepository.UpdateStatus", "bookingID", b.ID, "status", b.Status)
	return nil
}

func (r *bookingRepository) RecordPayment(ctx context.Context, companyID, bookingID int32, info domain.PaymentInfo) error {
	query := `UPDATE bookings SET is_paid = true, paid_at = $1, payment_method = $2, updated_at = $3
	          WHERE id = $4 AND company_id = $5 AND status <> 'cancelled'`
	res, err := r.db.ExecContext(ctx, query, info.PaidAt, info.Method, time.Now().UTC(), bookingID, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

func (r *bookingRepository) ListIncompleteBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE creation_state = 'incomplete' AND created_at < $1 ORDER BY id LIMIT 500`
	return r.queryBookings(ctx, query, cutoff)
}

func (r *bookingRepository) ListStalePending(ctx context.Context, pickupBefore time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = 'pending' AND creation_state = 'complete' AND pickup_date < $1 ORDER BY id LIMIT 500`
	return r.queryBookings(ctx, query, utils.DateOf(pickupBefore))
}

// expectOneRow turns a zero-row guarded update into a conflict: the booking
// changed status between read and write.
func expectOneRow(res sql.Result, bookingID int32) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{
			Resource: "booking",
			Msg:      fmt.Sprintf("booking %d changed state concurrently", bookingID),
			Err:      errStaleStatus,
		}
	}
	return nil
}

var errStaleStatus = errors.New("stale booking status")

func photos(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
