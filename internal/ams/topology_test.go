package ams

import "testing"

type fakeRegistry struct {
	units     []FeedUnit
	extruders map[int]int
}

func (f *fakeRegistry) Units() []FeedUnit { return f.units }

func (f *fakeRegistry) Extruder(unitID int) (int, bool) {
	e, ok := f.extruders[unitID]
	return e, ok
}

func fourSlots() []Slot {
	return []Slot{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}
}

func TestSlotAddress(t *testing.T) {
	cases := []struct {
		unit, slot int
		want       GlobalSlotAddress
	}{
		{0, 0, 0},
		{0, 3, 3},
		{1, 0, 4},
		{2, 1, 9},
		{128, 1, 513}, // high-temp unit, same arithmetic
	}
	for _, c := range cases {
		if got := SlotAddress(c.unit, c.slot); got != c.want {
			t.Fatalf("SlotAddress(%d,%d) = %v, want %v", c.unit, c.slot, got, c.want)
		}
	}
}

func TestTopology_Locate(t *testing.T) {
	reg := &fakeRegistry{
		units: []FeedUnit{
			{ID: 0, Slots: fourSlots()},
			{ID: 128, Slots: []Slot{{Index: 0}, {Index: 1}}}, // high-temp, 2 slots
		},
	}
	topo := NewTopology(reg)

	unit, slot, ok := topo.Locate(2)
	if !ok || unit != 0 || slot != 2 {
		t.Fatalf("Locate(2) = (%d,%d,%v)", unit, slot, ok)
	}
	unit, slot, ok = topo.Locate(513)
	if !ok || unit != 128 || slot != 1 {
		t.Fatalf("Locate(513) = (%d,%d,%v)", unit, slot, ok)
	}
	// Slot index 2 on a high-temp unit is outside its claimed range even
	// though the arithmetic would produce it.
	if _, _, ok := topo.Locate(514); ok {
		t.Fatalf("Locate(514) must not resolve on a 2-slot unit")
	}
	// Address of a disconnected unit.
	if _, _, ok := topo.Locate(8); ok {
		t.Fatalf("Locate(8) must not resolve without unit 2")
	}
}

func TestTopology_Extruder(t *testing.T) {
	reg := &fakeRegistry{
		units:     []FeedUnit{{ID: 0, Slots: fourSlots()}, {ID: 1, Slots: fourSlots()}},
		extruders: map[int]int{0: 0, 1: 1},
	}
	topo := NewTopology(reg)
	if e, ok := topo.Extruder(1); !ok || e != 1 {
		t.Fatalf("Extruder(1) = (%d,%v)", e, ok)
	}

	// Single-nozzle printer: assignment absent, not an error.
	single := NewTopology(&fakeRegistry{units: []FeedUnit{{ID: 0, Slots: fourSlots()}}})
	if _, ok := single.Extruder(0); ok {
		t.Fatalf("expected no assignment on single-nozzle printer")
	}
}

func TestSnapshot_SlotAt(t *testing.T) {
	snap := Snapshot{Units: []FeedUnit{{ID: 1, Slots: []Slot{
		{Index: 0, TagID: "a"}, {Index: 1, TagID: "b"}, {Index: 2}, {Index: 3},
	}}}}
	slot, ok := snap.SlotAt(5)
	if !ok || slot.TagID != "b" {
		t.Fatalf("SlotAt(5) = (%#v, %v)", slot, ok)
	}
	if _, ok := snap.SlotAt(0); ok {
		t.Fatalf("SlotAt(0) must not resolve without unit 0")
	}
	if _, ok := snap.SlotAt(AddrNone); ok {
		t.Fatalf("sentinel address must not resolve")
	}
}
