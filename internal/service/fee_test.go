package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
)

func TestCalculateFee_MinimumOneHour(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		vehicleType string
		duration    time.Duration
		want        float64
	}{
		{"car zero duration", domain.VehicleTypeCar, 0, 20.00},
		{"car ten minutes", domain.VehicleTypeCar, 10 * time.Minute, 20.00},
		{"bike under an hour", domain.VehicleTypeBike, 59 * time.Minute, 10.00},
		{"truck exactly one hour", domain.VehicleTypeTruck, time.Hour, 30.00},
		{"negative elapsed from clock skew", domain.VehicleTypeCar, -30 * time.Minute, 20.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFee(tt.vehicleType, entry, entry.Add(tt.duration))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateFee_ProportionalAboveOneHour(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		vehicleType string
		duration    time.Duration
		want        float64
	}{
		{"car two hours", domain.VehicleTypeCar, 2 * time.Hour, 40.00},
		{"truck two and a half hours", domain.VehicleTypeTruck, 150 * time.Minute, 75.00},
		{"bike 90 minutes", domain.VehicleTypeBike, 90 * time.Minute, 15.00},
		{"car 100 minutes rounds to cents", domain.VehicleTypeCar, 100 * time.Minute, 33.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFee(tt.vehicleType, entry, entry.Add(tt.duration))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateFee_UnknownTypeUsesCarRate(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(3 * time.Hour)

	assert.Equal(t, CalculateFee(domain.VehicleTypeCar, entry, exit), CalculateFee("Bus", entry, exit))
	assert.Equal(t, 60.00, CalculateFee("Rickshaw", entry, exit))
}
