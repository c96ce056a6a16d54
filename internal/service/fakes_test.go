package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

// memStore is an in-memory stand-in for the postgres repositories. It keeps
// the same invariants the transactional repo enforces: slot claim fails when
// occupied, close fails when already closed, one open record per vehicle.
type memStore struct {
	mu       sync.Mutex
	vehicles map[int]*domain.Vehicle
	slots    map[int]*domain.ParkingSlot
	records  map[int]*domain.ParkingRecord
	users    map[int]*domain.User
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		vehicles: make(map[int]*domain.Vehicle),
		slots:    make(map[int]*domain.ParkingSlot),
		records:  make(map[int]*domain.ParkingRecord),
		users:    make(map[int]*domain.User),
		nextID:   1,
	}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

// --- VehicleRepository ---

func (m *memStore) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.PlateNumber == vehicle.PlateNumber {
			return nil, fmt.Errorf("%w: plate number '%s' is already registered", repository.ErrDuplicateEntry, vehicle.PlateNumber)
		}
	}
	cloned := *vehicle
	cloned.ID = m.id()
	cloned.CreatedAt = time.Now().UTC()
	m.vehicles[cloned.ID] = &cloned
	return &cloned, nil
}

func (m *memStore) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cloned := *v
	return &cloned, nil
}

func (m *memStore) FindAll(ctx context.Context) ([]domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ParkingSlotRepository ---

func (m *memStore) findSlotByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cloned := *s
	return &cloned, nil
}

func (m *memStore) FindAvailable(ctx context.Context, slotType string) ([]domain.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ParkingSlot
	for _, s := range m.slots {
		if !s.IsOccupied && (slotType == "" || s.SlotType == slotType) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetOccupied(ctx context.Context, id int, occupied bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsOccupied = occupied
	return nil
}

func (m *memStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots), nil
}

func (m *memStore) Seed(ctx context.Context, slotTypes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, slotType := range slotTypes {
		id := m.id()
		m.slots[id] = &domain.ParkingSlot{ID: id, SlotType: slotType}
	}
	return nil
}

// --- ParkingRecordRepository ---

func (m *memStore) Open(ctx context.Context, vehicleID, slotID int, entryTime time.Time) (*domain.ParkingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.VehicleID == vehicleID && r.IsOpen() {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrVehicleAlreadyParked, vehicleID)
		}
	}
	slot, ok := m.slots[slotID]
	if !ok {
		return nil, fmt.Errorf("%w: parking slot %d", repository.ErrNotFound, slotID)
	}
	if slot.IsOccupied {
		return nil, fmt.Errorf("%w: slot %d", repository.ErrSlotUnavailable, slotID)
	}
	slot.IsOccupied = true

	record := &domain.ParkingRecord{
		ID:        m.id(),
		VehicleID: vehicleID,
		SlotID:    slotID,
		EntryTime: entryTime,
	}
	m.records[record.ID] = record
	cloned := *record
	return &cloned, nil
}

func (m *memStore) Close(ctx context.Context, id int, exitTime time.Time, totalFee float64) (*domain.ParkingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: parking record %d", repository.ErrNotFound, id)
	}
	if !record.IsOpen() {
		return nil, fmt.Errorf("%w: record %d", repository.ErrAlreadyClosed, id)
	}
	record.ExitTime.SetValid(exitTime)
	record.TotalFee.SetValid(totalFee)
	if slot, ok := m.slots[record.SlotID]; ok {
		slot.IsOccupied = false
	}
	cloned := *record
	return &cloned, nil
}

func (m *memStore) FindDetailByID(ctx context.Context, id int) (*domain.ParkingRecordDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.detailLocked(record), nil
}

func (m *memStore) FindOpen(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return m.findDetails(func(r *domain.ParkingRecord) bool { return r.IsOpen() })
}

func (m *memStore) FindAllRecords(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return m.findDetails(func(r *domain.ParkingRecord) bool { return true })
}

func (m *memStore) findDetails(keep func(*domain.ParkingRecord) bool) ([]domain.ParkingRecordDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ParkingRecordDetail
	for _, r := range m.records {
		if keep(r) {
			out = append(out, *m.detailLocked(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out, nil
}

func (m *memStore) detailLocked(record *domain.ParkingRecord) *domain.ParkingRecordDetail {
	detail := &domain.ParkingRecordDetail{ParkingRecord: *record}
	if v, ok := m.vehicles[record.VehicleID]; ok {
		detail.PlateNumber = v.PlateNumber
		detail.VehicleType = v.VehicleType
	}
	if s, ok := m.slots[record.SlotID]; ok {
		detail.SlotType = s.SlotType
	}
	return detail
}

// The adapters map the memStore onto the repository interfaces whose method
// names collide (FindByID, FindAll, Create).
type slotRepoAdapter struct{ *memStore }

func (a slotRepoAdapter) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	return a.findSlotByID(ctx, id)
}

type recordRepoAdapter struct{ *memStore }

func (a recordRepoAdapter) FindAll(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return a.FindAllRecords(ctx)
}

// --- UserRepository ---

type userRepoAdapter struct{ *memStore }

func (a userRepoAdapter) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, fmt.Errorf("%w: username or email already taken", repository.ErrDuplicateEntry)
		}
	}
	cloned := *user
	cloned.ID = a.id()
	cloned.CreatedAt = time.Now().UTC()
	a.users[cloned.ID] = &cloned
	out := cloned
	return &out, nil
}

func (a userRepoAdapter) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.Username == username {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (a userRepoAdapter) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (a userRepoAdapter) FindByID(ctx context.Context, id int) (*domain.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cloned := *u
	return &cloned, nil
}

// recordingNotifier captures broadcast events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []ParkingEvent
}

func (n *recordingNotifier) NotifyParkingEvent(event ParkingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []ParkingEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ParkingEvent(nil), n.events...)
}
