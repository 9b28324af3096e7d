package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filadash/internal/ams"
	"filadash/internal/logger"

	"github.com/google/uuid"
)

// ----------- Device behavior constants -----------
const (
	loadTicks    = 6 // ticks from accepted load command to settled idle
	unloadTicks  = 4
	refreshTicks = 3

	ambientHumidity  = 32.0
	ambientTempC     = 24.0
	humidityDriftMax = 4.0
)

// Raw sub-step codes the simulated device walks through. These mirror the
// codes the step-projection table recognizes.
var (
	simLoadSubCodes   = []int{2, 4, 6} // push, heat, purge
	simUnloadSubCodes = []int{4, 6}    // heat, retract
)

// SimulatorService is the in-process printer/AMS device. It is both the
// coordinator's command sink (accepting a command only starts it; progress
// shows up in telemetry over the following ticks) and the unit registry,
// and it emits one snapshot per tick into the attached telemetry sink —
// a stand-in for the real device's noisy confirmation channel.
type SimulatorService struct {
	log  *logger.Logger
	sink TelemetrySink

	mu        sync.Mutex
	units     []ams.FeedUnit
	extruders map[int]int
	loaded    ams.GlobalSlotAddress
	seq       uint64

	// in-flight command script
	pendingKind   ams.OpKind
	pendingTarget ams.GlobalSlotAddress
	ticksLeft     int
	ticksTotal    int
	driftStep     int
}

// NewSimulatorService returns a simulated device with the given units and
// extruder wiring. Nil units get a single 4-slot unit.
func NewSimulatorService(units []ams.FeedUnit, extruders map[int]int, log *logger.Logger) *SimulatorService {
	if len(units) == 0 {
		units = defaultUnits()
	}
	return &SimulatorService{
		log:       log,
		units:     units,
		extruders: extruders,
		loaded:    ams.AddrNone,
	}
}

// defaultUnits seeds one regular 4-slot feed unit.
func defaultUnits() []ams.FeedUnit {
	materials := []string{"PLA", "PETG", "PLA", ""}
	colors := []string{"FF6A13", "1E88E5", "FFFFFF", ""}
	slots := make([]ams.Slot, 4)
	for i := range slots {
		slots[i] = ams.Slot{
			Index:        i,
			MaterialType: materials[i],
			ColorValue:   colors[i],
			FillPercent:  -1,
		}
		if materials[i] != "" {
			slots[i].TagID = uuid.NewString()
			slots[i].UniqueID = uuid.NewString()
			slots[i].FillPercent = 100 - i*20
		}
	}
	return []ams.FeedUnit{{
		ID:          0,
		Slots:       slots,
		Humidity:    ambientHumidity,
		Temperature: ambientTempC,
	}}
}

// Attach sets the telemetry sink. Must be called before Run.
func (s *SimulatorService) Attach(sink TelemetrySink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// ----- ams.Registry -----

// Units returns a copy of the current feed units.
func (s *SimulatorService) Units() []ams.FeedUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUnits(s.units)
}

// Extruder reports the extruder a unit feeds into, if wired.
func (s *SimulatorService) Extruder(unitID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.extruders[unitID]
	return e, ok
}

// ----- ams.CommandSink -----

// Dispatch accepts a command for execution. Acceptance only means the
// device will start working on it; completion shows up in telemetry.
func (s *SimulatorService) Dispatch(_ context.Context, kind ams.OpKind, target ams.GlobalSlotAddress, extruder int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case ams.OpLoad, ams.OpRefresh:
		if _, ok := s.slotAtLocked(target); !ok {
			return fmt.Errorf("slot %s: %w", target, ErrUnknownSlot)
		}
	case ams.OpUnload:
		// accepted even with nothing loaded; the device no-ops
	default:
		return errors.New("unknown command kind")
	}

	s.pendingKind = kind
	s.pendingTarget = target
	switch kind {
	case ams.OpLoad:
		s.ticksTotal = loadTicks
	case ams.OpUnload:
		s.ticksTotal = unloadTicks
	default:
		s.ticksTotal = refreshTicks
	}
	s.ticksLeft = s.ticksTotal

	s.log.Infow("sim_command_accepted", "kind", kind.String(), "target", target.String(), "extruder", extruder)
	return nil
}

// Run ticks at the given interval until ctx is canceled, delivering one
// telemetry snapshot per tick.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap := s.step()
			s.mu.Lock()
			sink := s.sink
			s.mu.Unlock()
			if sink != nil {
				sink.HandleSnapshot(snap)
			}
		}
	}
}

// step advances the device model by one tick and returns the snapshot it
// would report.
func (s *SimulatorService) step() ams.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	statusMain := ams.StatusIdle
	statusSub := 0

	if s.pendingKind != ams.OpNone {
		s.ticksLeft--
		done := s.ticksLeft <= 0
		switch s.pendingKind {
		case ams.OpLoad:
			if done {
				s.loaded = s.pendingTarget
			} else {
				statusMain = ams.StatusFilamentChange
				statusSub = scriptCode(simLoadSubCodes, s.ticksTotal, s.ticksLeft)
			}
		case ams.OpUnload:
			if done {
				s.loaded = ams.AddrNone
			} else {
				statusMain = ams.StatusFilamentChange
				statusSub = scriptCode(simUnloadSubCodes, s.ticksTotal, s.ticksLeft)
			}
		case ams.OpRefresh:
			// Tag reads don't raise the filament-change status; the
			// re-read surfaces as changed slot data.
			if done {
				s.rereadTagLocked(s.pendingTarget)
			}
		}
		if done {
			s.pendingKind = ams.OpNone
		}
	}

	s.driftSensorsLocked()
	s.seq++

	return ams.Snapshot{
		StatusMain:      statusMain,
		StatusSub:       statusSub,
		CurrentlyLoaded: s.loaded,
		UpdateSequence:  s.seq,
		Units:           copyUnits(s.units),
	}
}

// scriptCode picks the sub-step code for the current point in the script.
func scriptCode(codes []int, total, left int) int {
	progressed := total - left
	idx := progressed * len(codes) / total
	if idx >= len(codes) {
		idx = len(codes) - 1
	}
	return codes[idx]
}

// rereadTagLocked simulates a tag re-read: the slot gets fresh identity
// fields, which changes its identification signature.
func (s *SimulatorService) rereadTagLocked(target ams.GlobalSlotAddress) {
	for ui := range s.units {
		u := &s.units[ui]
		base := ams.SlotAddress(u.ID, 0)
		if target < base || target >= base+ams.GlobalSlotAddress(u.SlotCount()) {
			continue
		}
		slot := &u.Slots[int(target-base)]
		slot.TagID = uuid.NewString()
		if slot.UniqueID == "" {
			slot.UniqueID = uuid.NewString()
		}
		return
	}
}

// driftSensorsLocked wobbles humidity slightly so history charts move.
func (s *SimulatorService) driftSensorsLocked() {
	s.driftStep++
	offset := float64(s.driftStep%9) / 8.0 * humidityDriftMax
	for ui := range s.units {
		s.units[ui].Humidity = ambientHumidity + offset
	}
}

func (s *SimulatorService) slotAtLocked(addr ams.GlobalSlotAddress) (ams.Slot, bool) {
	for _, u := range s.units {
		base := ams.SlotAddress(u.ID, 0)
		if addr >= base && addr < base+ams.GlobalSlotAddress(u.SlotCount()) {
			return u.Slots[int(addr-base)], true
		}
	}
	return ams.Slot{}, false
}

func copyUnits(units []ams.FeedUnit) []ams.FeedUnit {
	out := make([]ams.FeedUnit, len(units))
	for i, u := range units {
		out[i] = u
		out[i].Slots = make([]ams.Slot, len(u.Slots))
		copy(out[i].Slots, u.Slots)
	}
	return out
}
