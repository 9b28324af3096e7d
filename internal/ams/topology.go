package ams

// Registry is the device layer's current view of connected feed units and
// extruder wiring. Queried on demand, never cached here.
type Registry interface {
	Units() []FeedUnit
	// Extruder returns the physical extruder index the unit is wired to.
	// ok is false on single-nozzle printers; that means "not applicable",
	// not an error.
	Extruder(unitID int) (int, bool)
}

// SlotAddress encodes a unit/slot pair as a global address. Callers are
// responsible for passing a slot index valid for the unit's slot count.
func SlotAddress(unitID, slotIndex int) GlobalSlotAddress {
	return GlobalSlotAddress(unitID*slotStride + slotIndex)
}

// Topology resolves between (unit, slot) pairs and global slot addresses
// against the registry's current units.
type Topology struct {
	reg Registry
}

func NewTopology(reg Registry) *Topology {
	return &Topology{reg: reg}
}

// Resolve maps a unit/slot pair to its global address.
func (t *Topology) Resolve(unitID, slotIndex int) GlobalSlotAddress {
	return SlotAddress(unitID, slotIndex)
}

// Locate finds the unit claiming addr and the local slot index within it.
// ok is false when no connected unit claims the address.
func (t *Topology) Locate(addr GlobalSlotAddress) (unitID, slotIndex int, ok bool) {
	for _, u := range t.reg.Units() {
		base := GlobalSlotAddress(u.ID * slotStride)
		if addr >= base && addr < base+GlobalSlotAddress(u.SlotCount()) {
			return u.ID, int(addr - base), true
		}
	}
	return 0, 0, false
}

// Extruder looks up the extruder a unit feeds into, if assigned.
func (t *Topology) Extruder(unitID int) (int, bool) {
	return t.reg.Extruder(unitID)
}
