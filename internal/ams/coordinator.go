package ams

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filadash/internal/logger"
)

// OpKind names one physical feed-hardware operation.
type OpKind int

const (
	OpNone OpKind = iota
	OpRefresh
	OpLoad
	OpUnload
)

func (k OpKind) String() string {
	switch k {
	case OpRefresh:
		return "refresh"
	case OpLoad:
		return "load"
	case OpUnload:
		return "unload"
	default:
		return "none"
	}
}

// State is the coordinator's position in its state machine. The only legal
// edges are Idle -> {Refreshing, Loading, Unloading} -> Idle.
type State int

const (
	StateIdle State = iota
	StateRefreshing
	StateLoading
	StateUnloading
)

func (s State) String() string {
	switch s {
	case StateRefreshing:
		return "refreshing"
	case StateLoading:
		return "loading"
	case StateUnloading:
		return "unloading"
	default:
		return "idle"
	}
}

// ErrOperationInProgress rejects a request made while another operation is
// in flight. A caller error, not a device failure.
var ErrOperationInProgress = errors.New("an operation is already in progress")

// FailReason says why an operation ended without confirmation.
type FailReason int

const (
	// FailTimeout means no completion signal arrived within the budget.
	// The physical action may still have succeeded; the outcome is
	// uncertain, not a confirmed failure.
	FailTimeout FailReason = iota
	// FailDispatch means the command sink refused the command.
	FailDispatch
)

func (r FailReason) String() string {
	if r == FailDispatch {
		return "dispatch_error"
	}
	return "timeout"
}

// Operation is the context of the single in-flight operation. Exactly one
// exists while the coordinator is busy; it is discarded on any exit.
type Operation struct {
	Kind      OpKind            `json:"kind"`
	Target    GlobalSlotAddress `json:"target"`   // AddrNone for unload
	Extruder  int               `json:"extruder"` // hint passed to the sink; -1 = none
	StartedAt time.Time         `json:"started_at"`

	// Captured at start, refresh only.
	InitialSignature string `json:"-"`
	InitialUpdateSeq uint64 `json:"-"`

	// sawBusy records that StatusMain==1 was observed since start; only
	// the coordinator sets it, keeping the detectors pure.
	sawBusy bool
	gen     uint64
}

// CommandSink accepts physical commands for execution. A nil error means
// accepted, never completed; completion is inferred from telemetry.
type CommandSink interface {
	Dispatch(ctx context.Context, kind OpKind, target GlobalSlotAddress, extruder int) error
}

// Transition is one state-machine edge. Op is a copy of the new operation
// context, nil when returning to idle.
type Transition struct {
	State State
	Op    *Operation
}

// Outcome reports how an operation ended.
type Outcome struct {
	Kind      OpKind
	Target    GlobalSlotAddress
	Completed bool
	Reason    FailReason // valid when !Completed
}

const subscriberBuffer = 16

// Coordinator is the single-flight state machine that owns operation
// lifecycle: it dispatches commands, drives the completion detectors on
// every telemetry arrival, runs the timeout timer, and emits transitions
// and outcomes to subscribers. All entry points share one mutex, so the
// check-allocate-dispatch sequence is a single critical section.
type Coordinator struct {
	mu   sync.Mutex
	sink CommandSink
	log  *logger.Logger
	now  func() time.Time

	state State
	op    *Operation
	// lastKind survives completion so observers can tell which kind of
	// operation a raw device busy signal refers to after the local
	// context is gone. Set on every accepted request, never cleared.
	lastKind OpKind
	lastSnap Snapshot
	hasSnap  bool
	timer    *time.Timer
	gen      uint64

	transitionSubs []chan Transition
	outcomeSubs    []chan Outcome
}

// New builds an idle coordinator around the given command sink.
func New(sink CommandSink, log *logger.Logger) *Coordinator {
	return &Coordinator{
		sink:  sink,
		log:   log,
		now:   time.Now,
		state: StateIdle,
	}
}

// RequestRefresh asks the feed unit to re-read the identification tag of
// one slot. The initial signature and update sequence are captured from
// the last seen snapshot so completion can be told apart from stale data.
func (c *Coordinator) RequestRefresh(ctx context.Context, unitID, slotIndex int) error {
	target := SlotAddress(unitID, slotIndex)
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrOperationInProgress
	}
	op := &Operation{
		Kind:             OpRefresh,
		Target:           target,
		Extruder:         -1,
		StartedAt:        c.now(),
		InitialUpdateSeq: c.lastSnap.UpdateSequence,
	}
	if slot, ok := c.lastSnap.SlotAt(target); ok {
		op.InitialSignature = slot.Signature()
	}
	return c.start(ctx, op, StateRefreshing)
}

// RequestLoad asks the device to load filament from target. The extruder
// hint is passed through to the sink unmodified (-1 = no hint); validating
// it against the topology is the caller's job.
func (c *Coordinator) RequestLoad(ctx context.Context, target GlobalSlotAddress, extruder int) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrOperationInProgress
	}
	op := &Operation{
		Kind:      OpLoad,
		Target:    target,
		Extruder:  extruder,
		StartedAt: c.now(),
	}
	return c.start(ctx, op, StateLoading)
}

// RequestUnload asks the device to unload the currently loaded filament.
func (c *Coordinator) RequestUnload(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrOperationInProgress
	}
	op := &Operation{
		Kind:      OpUnload,
		Target:    AddrNone,
		Extruder:  -1,
		StartedAt: c.now(),
	}
	return c.start(ctx, op, StateUnloading)
}

// start dispatches op and enters the busy state. Called with c.mu held;
// releases it. A dispatch error never enters the busy state: the context
// is discarded and the error surfaces synchronously, the only error path
// that does.
func (c *Coordinator) start(ctx context.Context, op *Operation, busy State) error {
	c.lastKind = op.Kind
	if err := c.sink.Dispatch(ctx, op.Kind, op.Target, op.Extruder); err != nil {
		kind, target := op.Kind, op.Target
		c.mu.Unlock()
		c.log.Errorw("ams_dispatch_failed", "kind", kind.String(), "target", target.String(), "err", err)
		c.emitOutcome(Outcome{Kind: kind, Target: target, Reason: FailDispatch})
		return fmt.Errorf("dispatch %s: %w", kind, err)
	}
	c.gen++
	op.gen = c.gen
	c.state = busy
	c.op = op
	gen := op.gen
	c.timer = time.AfterFunc(timeoutFor(op.Kind), func() { c.timerFired(gen) })
	snap := *op
	c.mu.Unlock()

	c.log.Infow("ams_operation_started", "kind", snap.Kind.String(), "target", snap.Target.String())
	c.emitTransition(Transition{State: busy, Op: &snap})
	return nil
}

// OnTelemetry feeds one snapshot into the coordinator. While idle it only
// refreshes the last-known-state accessors; while busy it runs the active
// detector and retires the operation on a terminal verdict.
func (c *Coordinator) OnTelemetry(snap Snapshot) {
	c.mu.Lock()
	c.lastSnap = snap
	c.hasSnap = true
	if c.op == nil {
		c.mu.Unlock()
		return
	}
	if snap.StatusMain == StatusFilamentChange {
		c.op.sawBusy = true
	}
	elapsed := c.now().Sub(c.op.StartedAt)
	out := Outcome{Kind: c.op.Kind, Target: c.op.Target}
	switch detect(c.op, snap, elapsed) {
	case VerdictCompleted:
		out.Completed = true
		c.finishLocked(out)
	case VerdictFailed:
		out.Reason = FailTimeout
		c.finishLocked(out)
	default:
		c.mu.Unlock()
	}
}

// timerFired handles timeout expiry for the operation generation it was
// armed for. A stale generation (operation already retired or replaced)
// is ignored, so a timer and a completing telemetry tick can never both
// act on the same context.
func (c *Coordinator) timerFired(gen uint64) {
	c.mu.Lock()
	if c.op == nil || c.op.gen != gen {
		c.mu.Unlock()
		return
	}
	out := Outcome{Kind: c.op.Kind, Target: c.op.Target}
	// The deadline can race a completing snapshot; give the detector one
	// last look at the latest telemetry before declaring a timeout.
	if c.hasSnap && detect(c.op, c.lastSnap, c.now().Sub(c.op.StartedAt)) == VerdictCompleted {
		out.Completed = true
		c.finishLocked(out)
		return
	}
	out.Reason = FailTimeout
	c.finishLocked(out)
}

// finishLocked retires the in-flight operation and reports its outcome.
// Called with c.mu held; releases it.
func (c *Coordinator) finishLocked(out Outcome) {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.op = nil
	c.state = StateIdle
	c.mu.Unlock()

	if out.Completed {
		c.log.Infow("ams_operation_completed", "kind", out.Kind.String(), "target", out.Target.String())
	} else {
		c.log.Warnw("ams_operation_failed", "kind", out.Kind.String(), "reason", out.Reason.String())
	}
	c.emitTransition(Transition{State: StateIdle})
	c.emitOutcome(out)
}

// Cancel forces the coordinator back to idle without dispatching anything.
// Retrying the physical action is always an explicit new request. Safe and
// idempotent with no operation active.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.op == nil {
		c.mu.Unlock()
		return
	}
	kind := c.op.Kind
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.op = nil
	c.state = StateIdle
	c.mu.Unlock()

	c.log.Infow("ams_operation_canceled", "kind", kind.String())
	c.emitTransition(Transition{State: StateIdle})
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Operation returns a copy of the in-flight operation context, or nil.
func (c *Coordinator) Operation() *Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.op == nil {
		return nil
	}
	snap := *c.op
	return &snap
}

// LastKind returns the kind of the most recently requested operation,
// surviving completion. OpNone until the first request.
func (c *Coordinator) LastKind() OpKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastKind
}

// LastSnapshot returns the most recent telemetry snapshot seen, if any.
func (c *Coordinator) LastSnapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSnap, c.hasSnap
}

// SubscribeTransitions returns a buffered channel of state transitions.
// Events are dropped rather than blocking the coordinator when a
// subscriber falls behind.
func (c *Coordinator) SubscribeTransitions() <-chan Transition {
	ch := make(chan Transition, subscriberBuffer)
	c.mu.Lock()
	c.transitionSubs = append(c.transitionSubs, ch)
	c.mu.Unlock()
	return ch
}

// SubscribeOutcomes returns a buffered channel of operation outcomes,
// with the same drop-on-full policy as SubscribeTransitions.
func (c *Coordinator) SubscribeOutcomes() <-chan Outcome {
	ch := make(chan Outcome, subscriberBuffer)
	c.mu.Lock()
	c.outcomeSubs = append(c.outcomeSubs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Coordinator) emitTransition(t Transition) {
	c.mu.Lock()
	subs := make([]chan Transition, len(c.transitionSubs))
	copy(subs, c.transitionSubs)
	c.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- t:
		default:
		}
	}
}

func (c *Coordinator) emitOutcome(o Outcome) {
	c.mu.Lock()
	subs := make([]chan Outcome, len(c.outcomeSubs))
	copy(subs, c.outcomeSubs)
	c.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- o:
		default:
		}
	}
}
