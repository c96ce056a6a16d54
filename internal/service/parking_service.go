package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

var ErrValidation = errors.New("validation failed")

// ParkingEvent is broadcast to websocket clients on park and exit.
type ParkingEvent struct {
	Event  string                `json:"event"`
	Record *domain.ParkingRecord `json:"record"`
}

const (
	EventVehicleParked = "vehicle_parked"
	EventVehicleExited = "vehicle_exited"
)

// Notifier pushes parking events to interested clients. Implemented by the
// websocket manager; may be nil in tests.
type Notifier interface {
	NotifyParkingEvent(event ParkingEvent)
}

type ParkingService struct {
	vehicleRepo repository.VehicleRepository
	slotRepo    repository.ParkingSlotRepository
	recordRepo  repository.ParkingRecordRepository
	notifier    Notifier
	now         func() time.Time
}

func NewParkingService(
	vehicleRepo repository.VehicleRepository,
	slotRepo repository.ParkingSlotRepository,
	recordRepo repository.ParkingRecordRepository,
	notifier Notifier,
) *ParkingService {
	return &ParkingService{
		vehicleRepo: vehicleRepo,
		slotRepo:    slotRepo,
		recordRepo:  recordRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// SeedSlots populates the fixed slot pool on first run: 3 Car, 2 Bike,
// 1 Truck. An already-seeded pool is left untouched.
func (s *ParkingService) SeedSlots(ctx context.Context) error {
	count, err := s.slotRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting parking slots: %w", err)
	}
	if count > 0 {
		return nil
	}
	slotTypes := []string{
		domain.VehicleTypeCar, domain.VehicleTypeCar, domain.VehicleTypeCar,
		domain.VehicleTypeBike, domain.VehicleTypeBike,
		domain.VehicleTypeTruck,
	}
	if err := s.slotRepo.Seed(ctx, slotTypes); err != nil {
		return fmt.Errorf("seeding parking slots: %w", err)
	}
	logrus.WithField("count", len(slotTypes)).Info("seeded parking slots")
	return nil
}

func (s *ParkingService) RegisterVehicle(ctx context.Context, dto domain.RegisterVehicleDTO, userID null.Int) (*domain.Vehicle, error) {
	plate := strings.TrimSpace(dto.PlateNumber)
	vehicleType := strings.TrimSpace(dto.VehicleType)
	owner := strings.TrimSpace(dto.OwnerName)
	phone := strings.TrimSpace(dto.PhoneNumber)

	for field, value := range map[string]string{
		"plate_number": plate,
		"vehicle_type": vehicleType,
		"owner_name":   owner,
		"phone_number": phone,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
	}

	vehicle := &domain.Vehicle{
		PlateNumber: plate,
		VehicleType: vehicleType,
		OwnerName:   owner,
		PhoneNumber: phone,
		UserID:      userID,
	}
	created, err := s.vehicleRepo.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"vehicle_id": created.ID, "plate": created.PlateNumber}).Info("vehicle registered")
	return created, nil
}

func (s *ParkingService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindAll(ctx)
}

func (s *ParkingService) ListAvailableSlots(ctx context.Context, slotType string) ([]domain.ParkingSlot, error) {
	return s.slotRepo.FindAvailable(ctx, strings.TrimSpace(slotType))
}

// ParkVehicle opens a parking record for the vehicle in the given slot. The
// slot claim and record insert are one transaction in the repository, so a
// lost race surfaces as ErrSlotUnavailable rather than a double booking.
func (s *ParkingService) ParkVehicle(ctx context.Context, dto domain.ParkVehicleDTO) (*domain.ParkingRecord, error) {
	if _, err := s.vehicleRepo.FindByID(ctx, dto.VehicleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, dto.VehicleID)
		}
		return nil, err
	}

	record, err := s.recordRepo.Open(ctx, dto.VehicleID, dto.SlotID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"record_id":  record.ID,
		"vehicle_id": record.VehicleID,
		"slot_id":    record.SlotID,
	}).Info("vehicle parked")

	if s.notifier != nil {
		s.notifier.NotifyParkingEvent(ParkingEvent{Event: EventVehicleParked, Record: record})
	}
	return record, nil
}

// ExitVehicle closes an open record: stamps the exit time, computes the fee
// from the vehicle's type and the elapsed interval, and frees the slot.
func (s *ParkingService) ExitVehicle(ctx context.Context, recordID int) (*domain.ParkingRecord, error) {
	detail, err := s.recordRepo.FindDetailByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !detail.IsOpen() {
		return nil, fmt.Errorf("%w: record %d", repository.ErrAlreadyClosed, recordID)
	}

	exitTime := s.now().UTC()
	fee := CalculateFee(detail.VehicleType, detail.EntryTime, exitTime)

	record, err := s.recordRepo.Close(ctx, recordID, exitTime, fee)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"record_id": record.ID,
		"fee":       fee,
	}).Info("vehicle exited")

	if s.notifier != nil {
		s.notifier.NotifyParkingEvent(ParkingEvent{Event: EventVehicleExited, Record: record})
	}
	return record, nil
}

func (s *ParkingService) CurrentlyParked(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return s.recordRepo.FindOpen(ctx)
}

const stillParkedLabel = "Still Parked"

// Revenue recomputes every row's fee from its timestamps instead of trusting
// the stored total_fee, so a rate change applies retroactively. Open records
// are charged up to the current time; that figure is informational and never
// persisted.
func (s *ParkingService) Revenue(ctx context.Context) (*domain.RevenueReport, error) {
	details, err := s.recordRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &domain.RevenueReport{Rows: make([]domain.RevenueRow, 0, len(details))}
	var total float64
	for _, d := range details {
		exitLabel := stillParkedLabel
		exitTime := now
		if d.ExitTime.Valid {
			exitTime = d.ExitTime.Time
			exitLabel = exitTime.Format(time.RFC3339)
		}
		fee := CalculateFee(d.VehicleType, d.EntryTime, exitTime)

		report.Rows = append(report.Rows, domain.RevenueRow{
			PlateNumber: d.PlateNumber,
			VehicleType: d.VehicleType,
			EntryTime:   d.EntryTime.Format(time.RFC3339),
			ExitTime:    exitLabel,
			Fee:         fee,
		})
		total += fee
	}
	report.TotalRevenue = roundToCents(total)
	return report, nil
}
