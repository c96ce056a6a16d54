package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	VehicleTypeCar   = "Car"
	VehicleTypeBike  = "Bike"
	VehicleTypeTruck = "Truck"
)

// Vehicle is a registered vehicle. UserID links it to the account that
// registered it and is null for rows created before auth existed.
type Vehicle struct {
	ID          int       `json:"id"`
	PlateNumber string    `json:"plate_number"`
	VehicleType string    `json:"vehicle_type"`
	OwnerName   string    `json:"owner_name"`
	PhoneNumber string    `json:"phone_number"`
	UserID      null.Int  `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type RegisterVehicleDTO struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	VehicleType string `json:"vehicle_type" binding:"required"`
	OwnerName   string `json:"owner_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}
