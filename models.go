package filadash

import "time"

// Archive statuses.
const (
	StatusSuccess  = "SUCCESS"
	StatusFailed   = "FAILED"
	StatusCanceled = "CANCELED"
)

// PrintArchive is one archived print job record.
type PrintArchive struct {
	ID            int       `json:"id"`
	FileName      string    `json:"file_name"`
	PrintName     string    `json:"print_name,omitempty"`
	PrinterName   string    `json:"printer_name,omitempty"`
	Status        string    `json:"status"` // SUCCESS | FAILED | CANCELED
	DurationSec   int       `json:"duration_sec"`
	FilamentGrams float64   `json:"filament_grams"`
	CreatedAt     time.Time `json:"created_at"`
}

// PrintStats aggregates the archive.
type PrintStats struct {
	TotalPrints        int     `json:"total_prints"`
	Succeeded          int     `json:"succeeded"`
	Failed             int     `json:"failed"`
	SuccessRate        float64 `json:"success_rate"` // 0..1, 0 when no prints
	TotalDurationSec   int     `json:"total_duration_sec"`
	TotalFilamentGrams float64 `json:"total_filament_grams"`
}

// OpEvent is a single entry in the feed-operation log.
type OpEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // REQUEST | COMPLETE | TIMEOUT | DISPATCH_ERROR | CANCEL
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// SensorSample is one humidity/temperature reading from a feed unit.
type SensorSample struct {
	ID          int       `json:"id"`
	UnitID      int       `json:"unit_id"`
	Humidity    float64   `json:"humidity"`
	Temperature float64   `json:"temperature"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Setting is one key/value dashboard setting.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
