package ams

import "time"

// Verdict is a completion detector's judgement of the in-flight operation.
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictCompleted
	VerdictFailed
)

// Completion timing. Secondary (value-match) signals are always gated by a
// minimum elapsed time because a stale snapshot may still report values
// from before the command was accepted.
const (
	refreshSignalGuard = 1000 * time.Millisecond // tag reads cannot finish faster
	refreshSlowGuard   = 8 * time.Second
	refreshTimeout     = 15 * time.Second
	loadMatchGuard     = 5 * time.Second
	unloadClearGuard   = 1000 * time.Millisecond
	changeTimeout      = 120 * time.Second
)

// timeoutFor returns the completion budget for kind.
func timeoutFor(kind OpKind) time.Duration {
	if kind == OpRefresh {
		return refreshTimeout
	}
	return changeTimeout
}

// detect runs the completion detector for op's kind. Pure over its inputs:
// safe to re-run on every telemetry tick and on timer expiry, in any order
// and with duplicate snapshots.
func detect(op *Operation, snap Snapshot, elapsed time.Duration) Verdict {
	switch op.Kind {
	case OpRefresh:
		return detectRefresh(op, snap, elapsed)
	case OpLoad:
		return detectLoad(op, snap, elapsed)
	case OpUnload:
		return detectUnload(op, snap, elapsed)
	default:
		return VerdictPending
	}
}

// detectRefresh confirms a tag re-read either by the target slot's
// signature changing (fast path) or, failing that, by any fresh telemetry
// packet once enough time has passed for the read to plausibly have
// finished even with an unchanged signature (slow path, e.g. re-reading
// the same spool).
func detectRefresh(op *Operation, snap Snapshot, elapsed time.Duration) Verdict {
	if elapsed > refreshSignalGuard {
		if slot, ok := snap.SlotAt(op.Target); ok && slot.Signature() != op.InitialSignature {
			return VerdictCompleted
		}
		if elapsed > refreshSlowGuard && snap.UpdateSequence > op.InitialUpdateSeq {
			return VerdictCompleted
		}
	}
	if elapsed > refreshTimeout {
		return VerdictFailed
	}
	return VerdictPending
}

// detectLoad confirms a load either by the filament-change status rising
// then falling (the device can report idle transiently before the change
// truly starts, so a bare 0 is not enough) or by the currently-loaded
// address matching the target after the stale-snapshot guard.
func detectLoad(op *Operation, snap Snapshot, elapsed time.Duration) Verdict {
	if op.sawBusy && snap.StatusMain == StatusIdle {
		return VerdictCompleted
	}
	if snap.CurrentlyLoaded == op.Target && elapsed > loadMatchGuard {
		return VerdictCompleted
	}
	if elapsed > changeTimeout {
		return VerdictFailed
	}
	return VerdictPending
}

// detectUnload mirrors detectLoad with "nothing loaded" as the value match.
func detectUnload(op *Operation, snap Snapshot, elapsed time.Duration) Verdict {
	if op.sawBusy && snap.StatusMain == StatusIdle {
		return VerdictCompleted
	}
	if snap.CurrentlyLoaded == AddrNone && elapsed > unloadClearGuard {
		return VerdictCompleted
	}
	if elapsed > changeTimeout {
		return VerdictFailed
	}
	return VerdictPending
}
