package ams

import "fmt"

// Slot represents one physically loaded spool in an AMS unit. (UnitID, SlotID)
// uniquely identifies the slot; MaterialID is the vendor spool code when the
// printer reports one.
type Slot struct {
	UnitID       int    `json:"unit_id"`
	SlotID       int    `json:"slot_id"`
	FilamentType string `json:"filament_type"`
	Color        string `json:"color"`
	MaterialID   string `json:"material_id,omitempty"`
}

// Key returns a stable display identifier for the slot.
func (s Slot) Key() string {
	return fmt.Sprintf("%d-%d", s.UnitID, s.SlotID)
}

// Mapping binds one model filament index to a physical slot. Produced either
// by the matcher or directly by the user; both paths yield the same shape.
type Mapping struct {
	FilamentIndex int `json:"filament_index"`
	UnitID        int `json:"ams_unit_id"`
	SlotID        int `json:"ams_slot_id"`
}
