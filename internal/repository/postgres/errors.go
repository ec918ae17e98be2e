package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"fleetrent-backend/internal/domain"
)

// PostgreSQL error codes the repositories translate.
const (
	codeUniqueViolation      = "23505"
	codeExclusionViolation   = "23P01"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
)

const bookingOverlapConstraint = "bookings_vehicle_no_overlap"

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// notFound maps sql.ErrNoRows to a NotFoundError for resource.
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

// bookingWriteError maps constraint failures raised by booking writes that
// hold a vehicle.
func bookingWriteError(err error, vehicleID *int32) error {
	if err == nil {
		return nil
	}
	code, constraint := pqCode(err)
	switch {
	case code == codeExclusionViolation && constraint == bookingOverlapConstraint,
		code == codeExclusionViolation && constraint == "",
		code == codeSerializationFailure:
		var id int32
		if vehicleID != nil {
			id = *vehicleID
		}
		return domain.VehicleUnavailable(id)
	case code == codeUniqueViolation:
		return domain.ConflictError{Resource: "booking", Msg: "booking number already taken", Err: err}
	}
	return err
}
