package domain

import (
	"time"

	"fleetrent-backend/internal/utils"
)

// SearchFilter is the closed set of availability search parameters.
type SearchFilter struct {
	CompanyID   int32
	VehicleType *VehicleType
	LocationID  *int32
	PickupDate  time.Time
	PickupTime  string
	ReturnDate  time.Time
	ReturnTime  string
}

func (f SearchFilter) Validate() error {
	if f.CompanyID <= 0 {
		return ValidationError{Field: "company_id", Msg: "is required"}
	}
	if f.VehicleType != nil && !f.VehicleType.Valid() {
		return ValidationError{Field: "vehicle_type", Msg: "must be car or van"}
	}
	if f.LocationID != nil && *f.LocationID <= 0 {
		return ValidationError{Field: "location_id", Msg: "is invalid"}
	}
	if f.PickupDate.IsZero() || f.ReturnDate.IsZero() {
		return ValidationError{Field: "dates", Msg: "pickup and return dates are required"}
	}
	if utils.DateOf(f.ReturnDate).Before(utils.DateOf(f.PickupDate)) {
		return ValidationError{Field: "return_date", Msg: "must not be before pickup_date"}
	}
	if _, err := utils.ParseClock(f.PickupTime); err != nil {
		return ValidationError{Field: "pickup_time", Msg: err.Error()}
	}
	if _, err := utils.ParseClock(f.ReturnTime); err != nil {
		return ValidationError{Field: "return_time", Msg: err.Error()}
	}
	return nil
}

// Window returns the pickup and return instants.
func (f SearchFilter) Window() (time.Time, time.Time, error) {
	return RentalWindow(f.PickupDate, f.PickupTime, f.ReturnDate, f.ReturnTime)
}

// RentalWindow combines dates and clock values into the rental interval.
func RentalWindow(pickupDate time.Time, pickupTime string, returnDate time.Time, returnTime string) (time.Time, time.Time, error) {
	start, err := utils.CombineDateTime(pickupDate, pickupTime)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationError{Field: "pickup_time", Msg: err.Error()}
	}
	end, err := utils.CombineDateTime(returnDate, returnTime)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationError{Field: "return_time", Msg: err.Error()}
	}
	return start, end, nil
}

// CandidateVehicle is an available vehicle joined with its group.
type CandidateVehicle struct {
	Vehicle Vehicle
	Group   VehicleGroup
}

// GroupOffer is one search result row: a group with free vehicles and its price.
type GroupOffer struct {
	Group          VehicleGroup `json:"group"`
	AvailableCount int          `json:"available_count"`
	VehicleIDs     []int32      `json:"vehicle_ids"`
	Quote          RateQuote    `json:"quote"`
}
