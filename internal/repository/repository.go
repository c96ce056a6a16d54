package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateEntry       = errors.New("record already exists")
	ErrSlotUnavailable      = errors.New("parking slot is already occupied")
	ErrAlreadyClosed        = errors.New("parking record is already closed")
	ErrVehicleAlreadyParked = errors.New("vehicle already has an open parking record")
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
	FindAll(ctx context.Context) ([]domain.Vehicle, error)
}

type ParkingSlotRepository interface {
	FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error)
	// FindAvailable returns unoccupied slots; slotType == "" means all types.
	FindAvailable(ctx context.Context, slotType string) ([]domain.ParkingSlot, error)
	// SetOccupied is idempotent: setting an already-matching flag is a no-op.
	SetOccupied(ctx context.Context, id int, occupied bool) error
	Count(ctx context.Context) (int, error)
	Seed(ctx context.Context, slotTypes []string) error
}

type ParkingRecordRepository interface {
	// Open claims the slot and inserts the record in one transaction.
	// Fails with ErrSlotUnavailable if the slot is occupied and
	// ErrVehicleAlreadyParked if the vehicle has an open record.
	Open(ctx context.Context, vehicleID, slotID int, entryTime time.Time) (*domain.ParkingRecord, error)
	// Close sets exit time and fee and frees the slot in one transaction.
	// Fails with ErrAlreadyClosed if the record has an exit time.
	Close(ctx context.Context, id int, exitTime time.Time, totalFee float64) (*domain.ParkingRecord, error)
	FindDetailByID(ctx context.Context, id int) (*domain.ParkingRecordDetail, error)
	FindOpen(ctx context.Context) ([]domain.ParkingRecordDetail, error)
	FindAll(ctx context.Context) ([]domain.ParkingRecordDetail, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}
