// Package ams coordinates multi-step physical operations (load, unload,
// spool tag refresh) on a printer's automated filament-feed hardware.
// Commands are fire-and-forget; completion is inferred from an independent
// telemetry stream that can be delayed, can oscillate, and does not always
// reach a clean terminal value.
package ams

import "strconv"

// GlobalSlotAddress identifies one slot across all feed units,
// encoded as unitID*4 + slotIndex.
type GlobalSlotAddress int

// Sentinel addresses reported by the device in CurrentlyLoaded.
const (
	AddrNone          GlobalSlotAddress = 255 // nothing loaded
	AddrExternalSpool GlobalSlotAddress = 254 // filament fed from an external spool holder
)

const (
	slotStride        = 4   // address stride per unit, regardless of slot count
	highTempUnitMinID = 128 // unit IDs at or above this are high-temp variants
)

// Device status codes carried in Snapshot.StatusMain. Any other value is
// some other device state and stays opaque here.
const (
	StatusIdle           = 0
	StatusFilamentChange = 1
)

// Slot is one filament position inside a feed unit.
type Slot struct {
	Index        int    `json:"index"`
	MaterialType string `json:"material_type,omitempty"`
	ColorValue   string `json:"color_value,omitempty"`
	FillPercent  int    `json:"fill_percent"` // -1 = unknown
	TagID        string `json:"tag_id,omitempty"`
	UniqueID     string `json:"unique_id,omitempty"`
}

// Signature returns the spool-identity composite for this slot. It is
// compared only for equality: a changed signature means the spool's tag
// was re-read. Never interpret the contents.
func (s Slot) Signature() string {
	return s.TagID + "|" + s.UniqueID + "|" + s.MaterialType + "|" + s.ColorValue
}

// FeedUnit is one physical filament-feed module. Units are owned by the
// device registry; this package only reads point-in-time copies.
type FeedUnit struct {
	ID          int     `json:"id"`
	Slots       []Slot  `json:"slots"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
}

// SlotCount reports how many slot addresses the unit claims. High-temp
// units carry 2 slots, regular units 4; the populated slot list wins when
// present.
func (u FeedUnit) SlotCount() int {
	if len(u.Slots) > 0 {
		return len(u.Slots)
	}
	if u.ID >= highTempUnitMinID {
		return 2
	}
	return slotStride
}

// Snapshot is one immutable point-in-time report of feed-hardware status,
// delivered by the external telemetry source.
type Snapshot struct {
	StatusMain      int               `json:"status_main"`
	StatusSub       int               `json:"status_sub"`
	CurrentlyLoaded GlobalSlotAddress `json:"currently_loaded"`
	// UpdateSequence advances every time the source received a fresh
	// update, whether or not any value changed.
	UpdateSequence uint64     `json:"update_sequence"`
	Units          []FeedUnit `json:"units"`
}

// SlotAt returns the slot claimed by addr, or false if no unit in this
// snapshot claims it (e.g. the unit disconnected).
func (s Snapshot) SlotAt(addr GlobalSlotAddress) (Slot, bool) {
	for _, u := range s.Units {
		base := GlobalSlotAddress(u.ID * slotStride)
		if addr >= base && addr < base+GlobalSlotAddress(u.SlotCount()) {
			return u.Slots[int(addr-base)], true
		}
	}
	return Slot{}, false
}

func (a GlobalSlotAddress) String() string {
	switch a {
	case AddrNone:
		return "none"
	case AddrExternalSpool:
		return "external"
	default:
		return strconv.Itoa(int(a))
	}
}
