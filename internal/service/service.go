package service

import (
	"context"
	"time"

	"filadash"
	"filadash/internal/ams"
	"filadash/internal/logger"
	"filadash/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// AMS exposes filament-feed control operations and live status. Requests
// are accepted only while no other operation is in flight; completion or
// failure is reported through the operation log and the status endpoint.
type AMS interface {
	Refresh(ctx context.Context, unitID, slotIndex int) error
	Load(ctx context.Context, unitID, slotIndex int) error
	Unload(ctx context.Context) error
	Cancel(ctx context.Context) error
	Status() AMSStatus
	SensorHistory(ctx context.Context, unitID int, from, to time.Time) ([]filadash.SensorSample, error)
	// Run pumps coordinator outcomes into the operation log until ctx
	// is canceled. Start it from main like the other background loops.
	Run(ctx context.Context)
}

// Archive exposes CRUD and aggregation over archived print records.
type Archive interface {
	Create(ctx context.Context, a filadash.PrintArchive) (int, error)
	Get(ctx context.Context, id int) (filadash.PrintArchive, error)
	List(ctx context.Context) ([]filadash.PrintArchive, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (filadash.PrintStats, error)
}

// EventLog exposes the append-only operation log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]filadash.OpEvent, error)
}

// Settings exposes the key/value settings store.
type Settings interface {
	Get(ctx context.Context, key string) (filadash.Setting, error)
	GetAll(ctx context.Context) ([]filadash.Setting, error)
	Put(ctx context.Context, key, value string) error
}

// Simulator runs the in-process printer/AMS device: it executes dispatched
// commands over several ticks and delivers a telemetry snapshot per tick.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// TelemetrySink receives device telemetry snapshots as they are produced.
type TelemetrySink interface {
	HandleSnapshot(snap ams.Snapshot)
}

// Config carries the service-level knobs read from the config file.
type Config struct {
	JWTSigningKey string
	// Extruders maps feed unit IDs to physical extruder indexes on
	// dual-nozzle printers. Empty on single-nozzle printers.
	Extruders map[int]int
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	AMS
	Archive
	EventLog
	Settings
	Simulator
	Authorization
}

// NewService wires the repository layer, the device simulator, and the
// operation coordinator into concrete services. The simulator acts as the
// coordinator's command sink and unit registry; the AMS service acts as
// the simulator's telemetry sink.
func NewService(repos *repository.Repository, cfg Config, log *logger.Logger) *Service {
	sim := NewSimulatorService(defaultUnits(), cfg.Extruders, log)
	coord := ams.New(sim, log)
	topo := ams.NewTopology(sim)
	amsSvc := NewAMSService(coord, topo, repos.Events, repos.Sensors, log)
	sim.Attach(amsSvc)

	return &Service{
		AMS:           amsSvc,
		Archive:       NewArchiveService(repos.Archive),
		EventLog:      NewEventLogService(repos.Events),
		Settings:      NewSettingsService(repos.Settings),
		Simulator:     sim,
		Authorization: NewAuthService(repos.Auth, cfg.JWTSigningKey),
	}
}
