package domain

import "github.com/shopspring/decimal"

type VehicleType string

const (
	VehicleTypeCar VehicleType = "car"
	VehicleTypeVan VehicleType = "van"
)

func (t VehicleType) Valid() bool {
	return t == VehicleTypeCar || t == VehicleTypeVan
}

// VehicleStatus is a cache maintained by booking transitions. Availability is
// always derived from overlapping bookings.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusReserved    VehicleStatus = "reserved"
	VehicleStatusInactive    VehicleStatus = "inactive"
)

type VehicleGroup struct {
	ID              int32           `json:"id"`
	CompanyID       int32           `json:"company_id"`
	Name            string          `json:"name"`
	VehicleType     VehicleType     `json:"vehicle_type"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	DefaultKmPerDay int32           `json:"default_km_per_day"`
	IsActive        bool            `json:"is_active"`
	IsVisible       bool            `json:"is_visible"`
}

type Vehicle struct {
	ID         int32         `json:"id"`
	CompanyID  int32         `json:"company_id"`
	GroupID    int32         `json:"group_id"`
	LocationID int32         `json:"location_id"`
	Plate      string        `json:"plate"`
	Status     VehicleStatus `json:"status"`
	IsActive   bool          `json:"is_active"`
}
