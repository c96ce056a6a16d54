package domain

type ParkingSlot struct {
	ID         int    `json:"id"`
	SlotType   string `json:"slot_type"`
	IsOccupied bool   `json:"is_occupied"`
}
