package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// ParkingRecord is one park-to-exit interval. ExitTime and TotalFee are both
// null while the record is open and both set once the vehicle exits.
type ParkingRecord struct {
	ID        int        `json:"id"`
	VehicleID int        `json:"vehicle_id"`
	SlotID    int        `json:"slot_id"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  null.Time  `json:"exit_time"`
	TotalFee  null.Float `json:"total_fee"`
}

func (r *ParkingRecord) IsOpen() bool {
	return !r.ExitTime.Valid
}

// ParkingRecordDetail is a record joined with its vehicle and slot, as shown
// in the "currently parked" view and the revenue report.
type ParkingRecordDetail struct {
	ParkingRecord
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
	SlotType    string `json:"slot_type"`
}

type ParkVehicleDTO struct {
	VehicleID int `json:"vehicle_id" binding:"required"`
	SlotID    int `json:"slot_id" binding:"required"`
}

// RevenueRow is one line of the revenue report. Fee is recomputed from the
// timestamps at report time, not read from the stored total_fee.
type RevenueRow struct {
	PlateNumber string  `json:"plate_number"`
	VehicleType string  `json:"vehicle_type"`
	EntryTime   string  `json:"entry_time"`
	ExitTime    string  `json:"exit_time"`
	Fee         float64 `json:"fee"`
}

type RevenueReport struct {
	Rows         []RevenueRow `json:"rows"`
	TotalRevenue float64      `json:"total_revenue"`
}
