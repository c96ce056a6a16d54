package service

import (
	"math"
	"time"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
)

// Hourly rates per vehicle type. Unregistered types pay the default rate.
var hourlyRates = map[string]float64{
	domain.VehicleTypeCar:   20,
	domain.VehicleTypeBike:  10,
	domain.VehicleTypeTruck: 30,
}

const defaultHourlyRate = 20.0

// CalculateFee charges elapsed hours at the type's hourly rate, with a
// one-hour minimum. The minimum also covers negative elapsed time from clock
// skew. Result is rounded to two decimals.
func CalculateFee(vehicleType string, entryTime, exitTime time.Time) float64 {
	hours := exitTime.Sub(entryTime).Hours()
	if hours < 1 {
		hours = 1
	}

	rate, ok := hourlyRates[vehicleType]
	if !ok {
		rate = defaultHourlyRate
	}
	return roundToCents(hours * rate)
}

func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
