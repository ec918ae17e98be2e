package domain

import (
	"errors"
	"fmt"
)

var (
	ErrVehicleUnavailable = errors.New("vehicle no longer available")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrBookingIncomplete  = errors.New("booking creation is incomplete")
	ErrDiscountExhausted  = errors.New("discount code usage limit reached")
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// PartialWriteInconsistencyError reports a booking whose primary row was
// persisted while a later creation step failed. The booking is never exposed
// as complete; Compensated tells whether it was already cancelled or is still
// waiting for the reconciliation job.
type PartialWriteInconsistencyError struct {
	BookingID   int32
	Number      string
	Step        string
	Compensated bool
	Err         error
}

func (e PartialWriteInconsistencyError) Error() string {
	return fmt.Sprintf("booking %s (id %d) partially written, step %q failed: %v", e.Number, e.BookingID, e.Step, e.Err)
}

func (e PartialWriteInconsistencyError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsPartialWrite(err error) bool {
	var target PartialWriteInconsistencyError
	return errors.As(err, &target)
}

// VehicleUnavailable is the conflict returned to the loser of a booking or
// handover race.
func VehicleUnavailable(vehicleID int32) error {
	return ConflictError{
		Resource: "vehicle",
		Msg:      fmt.Sprintf("vehicle %d no longer available for these dates", vehicleID),
		Err:      ErrVehicleUnavailable,
	}
}
