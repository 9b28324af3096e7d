package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filadash"
	"filadash/internal/ams"
	"filadash/internal/logger"
	"filadash/internal/repository"
)

// Event types written to the operation log.
const (
	eventRequest       = "REQUEST"
	eventComplete      = "COMPLETE"
	eventTimeout       = "TIMEOUT"
	eventDispatchError = "DISPATCH_ERROR"
	eventCancel        = "CANCEL"
)

// Sensor readings change slowly; one row per unit per minute is plenty.
const sensorSampleInterval = time.Minute

// ErrUnknownSlot is returned when no connected feed unit claims the
// requested unit/slot pair.
var ErrUnknownSlot = errors.New("no connected feed unit claims that slot")

// AMSService fronts the operation coordinator for the transport layer:
// it resolves unit/slot pairs to global addresses, attaches extruder
// hints, feeds telemetry through to the coordinator and the progress
// latch, and records operation lifecycle events and sensor history.
type AMSService struct {
	coord   *ams.Coordinator
	topo    *ams.Topology
	latch   *ams.ProgressLatch
	events  repository.EventRepo
	sensors repository.SensorRepo
	log     *logger.Logger

	mu            sync.Mutex
	lastSampledAt map[int]time.Time
}

func NewAMSService(coord *ams.Coordinator, topo *ams.Topology, events repository.EventRepo, sensors repository.SensorRepo, log *logger.Logger) *AMSService {
	return &AMSService{
		coord:         coord,
		topo:          topo,
		latch:         ams.NewProgressLatch(ams.DefaultOffDelay, nil),
		events:        events,
		sensors:       sensors,
		log:           log,
		lastSampledAt: make(map[int]time.Time),
	}
}

// Refresh asks the device to re-read the spool tag in one slot.
func (s *AMSService) Refresh(ctx context.Context, unitID, slotIndex int) error {
	if err := s.validateSlot(unitID, slotIndex); err != nil {
		return err
	}
	if err := s.coord.RequestRefresh(ctx, unitID, slotIndex); err != nil {
		return err
	}
	s.appendEvent(ctx, eventRequest, fmt.Sprintf("refresh requested for unit %d slot %d", unitID, slotIndex),
		map[string]any{"kind": "refresh", "unit_id": unitID, "slot_index": slotIndex})
	return nil
}

// Load asks the device to load filament from one slot. The extruder hint
// is looked up here, not in the coordinator: routing the command to the
// right physical extruder is the caller's concern.
func (s *AMSService) Load(ctx context.Context, unitID, slotIndex int) error {
	if err := s.validateSlot(unitID, slotIndex); err != nil {
		return err
	}
	target := s.topo.Resolve(unitID, slotIndex)
	hint := -1
	if e, ok := s.topo.Extruder(unitID); ok {
		hint = e
	}
	if err := s.coord.RequestLoad(ctx, target, hint); err != nil {
		return err
	}
	s.appendEvent(ctx, eventRequest, fmt.Sprintf("load requested for slot %s", target),
		map[string]any{"kind": "load", "target": int(target), "extruder": hint})
	return nil
}

// Unload asks the device to unload the currently loaded filament.
func (s *AMSService) Unload(ctx context.Context) error {
	if err := s.coord.RequestUnload(ctx); err != nil {
		return err
	}
	s.appendEvent(ctx, eventRequest, "unload requested", map[string]any{"kind": "unload"})
	return nil
}

// Cancel aborts the in-flight operation locally. The physical action may
// still run to completion on the device; retrying is an explicit new
// request.
func (s *AMSService) Cancel(ctx context.Context) error {
	if s.coord.State() == ams.StateIdle {
		return nil
	}
	kind := s.coord.LastKind()
	s.coord.Cancel()
	s.appendEvent(ctx, eventCancel, fmt.Sprintf("%s canceled by user", kind), map[string]any{"kind": kind.String()})
	return nil
}

// Status assembles the live view for the status endpoint and the
// websocket push.
func (s *AMSService) Status() AMSStatus {
	st := AMSStatus{
		State: s.coord.State().String(),
		Busy:  s.latch.Visible(),
	}
	if kind := s.coord.LastKind(); kind != ams.OpNone {
		st.LastKind = kind.String()
	}
	snap, ok := s.coord.LastSnapshot()
	if ok {
		st.StatusMain = snap.StatusMain
		st.Loaded = snap.CurrentlyLoaded.String()
		st.Units = snap.Units
	} else {
		st.Loaded = ams.AddrNone.String()
	}
	if op := s.coord.Operation(); op != nil {
		os := &OperationStatus{
			Kind:      op.Kind.String(),
			Target:    int(op.Target),
			StartedAt: op.StartedAt,
			Steps:     ams.Steps(op.Kind),
		}
		if ok && len(os.Steps) > 0 {
			os.StepIndex, os.StepName = ams.StepProgress(op.Kind, snap.StatusSub)
		}
		st.Operation = os
	}
	return st
}

// SensorHistory returns recorded humidity/temperature samples.
// unitID < 0 selects all units.
func (s *AMSService) SensorHistory(ctx context.Context, unitID int, from, to time.Time) ([]filadash.SensorSample, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errors.New("invalid time range: from must be <= to")
	}
	return s.sensors.List(ctx, unitID, from, to)
}

// HandleSnapshot is the telemetry entry point: every snapshot drives the
// coordinator, the progress latch, and (throttled) the sensor history.
func (s *AMSService) HandleSnapshot(snap ams.Snapshot) {
	s.coord.OnTelemetry(snap)
	busy := s.coord.State() != ams.StateIdle || snap.StatusMain == ams.StatusFilamentChange
	s.latch.Set(busy)
	s.recordSensors(snap)
}

// Run pumps coordinator outcomes into the operation log.
func (s *AMSService) Run(ctx context.Context) {
	outcomes := s.coord.SubscribeOutcomes()
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-outcomes:
			s.recordOutcome(ctx, out)
		}
	}
}

func (s *AMSService) recordOutcome(ctx context.Context, out ams.Outcome) {
	meta := map[string]any{"kind": out.Kind.String(), "target": int(out.Target)}
	switch {
	case out.Completed:
		s.appendEvent(ctx, eventComplete, fmt.Sprintf("%s completed", out.Kind), meta)
	case out.Reason == ams.FailDispatch:
		s.appendEvent(ctx, eventDispatchError, fmt.Sprintf("%s command was not accepted", out.Kind), meta)
	default:
		// Timeout is an absence of confirmation, not a confirmed
		// failure; the device may still have finished the action.
		s.appendEvent(ctx, eventTimeout, fmt.Sprintf("%s timed out without confirmation", out.Kind), meta)
	}
}

func (s *AMSService) validateSlot(unitID, slotIndex int) error {
	if slotIndex < 0 {
		return ErrUnknownSlot
	}
	addr := s.topo.Resolve(unitID, slotIndex)
	if u, si, ok := s.topo.Locate(addr); !ok || u != unitID || si != slotIndex {
		return ErrUnknownSlot
	}
	return nil
}

func (s *AMSService) recordSensors(snap ams.Snapshot) {
	now := time.Now().UTC()
	for _, u := range snap.Units {
		s.mu.Lock()
		last, seen := s.lastSampledAt[u.ID]
		if seen && now.Sub(last) < sensorSampleInterval {
			s.mu.Unlock()
			continue
		}
		s.lastSampledAt[u.ID] = now
		s.mu.Unlock()

		sample := filadash.SensorSample{
			UnitID:      u.ID,
			Humidity:    u.Humidity,
			Temperature: u.Temperature,
			RecordedAt:  now,
		}
		if err := s.sensors.Append(context.Background(), sample); err != nil {
			s.log.Errorw("ams_sensor_append_failed", "unit_id", u.ID, "err", err)
		}
	}
}

// appendEvent is best-effort: a full disk must not block hardware control.
func (s *AMSService) appendEvent(ctx context.Context, typ, description string, meta map[string]any) {
	err := s.events.Append(ctx, filadash.OpEvent{
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Errorw("ams_event_append_failed", "type", typ, "err", err)
	}
}
