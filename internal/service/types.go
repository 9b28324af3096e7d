package service

import (
	"time"

	"filadash/internal/ams"
)

// LogFilter supports operation-log filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "REQUEST", "COMPLETE", "TIMEOUT", "DISPATCH_ERROR", "CANCEL"
}

// AMSStatus is the live view of the feed hardware and the coordinator,
// rendered by the status endpoint and the websocket push.
type AMSStatus struct {
	State    string `json:"state"`               // idle | refreshing | loading | unloading
	LastKind string `json:"last_kind,omitempty"` // kind of the most recent operation
	// Busy is the debounced "show progress" signal: it outlives the raw
	// device busy flag briefly so indicators don't flicker.
	Busy       bool             `json:"busy"`
	Operation  *OperationStatus `json:"operation,omitempty"`
	StatusMain int              `json:"status_main"`
	Loaded     string           `json:"currently_loaded"`
	Units      []ams.FeedUnit   `json:"units,omitempty"`
}

// OperationStatus describes the in-flight operation for progress display.
type OperationStatus struct {
	Kind      string    `json:"kind"`
	Target    int       `json:"target"`
	StartedAt time.Time `json:"started_at"`
	Steps     []string  `json:"steps,omitempty"`
	StepIndex int       `json:"step_index"`
	StepName  string    `json:"step_name,omitempty"`
}
