package repository

import (
	"context"
	"database/sql"
	"time"

	"filadash"
	"filadash/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*filadash.User, error)
}

// ArchiveRepo persists completed print records.
type ArchiveRepo interface {
	Insert(ctx context.Context, a filadash.PrintArchive) (int, error)
	GetByID(ctx context.Context, id int) (filadash.PrintArchive, error)
	List(ctx context.Context) ([]filadash.PrintArchive, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (filadash.PrintStats, error)
}

// EventRepo is the append-only feed-operation log.
type EventRepo interface {
	Append(ctx context.Context, e filadash.OpEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]filadash.OpEvent, error)
}

// SensorRepo stores periodic feed-unit humidity/temperature samples.
type SensorRepo interface {
	Append(ctx context.Context, s filadash.SensorSample) error
	List(ctx context.Context, unitID int, from, to time.Time) ([]filadash.SensorSample, error)
}

// SettingsRepo is the key/value settings store.
type SettingsRepo interface {
	Get(ctx context.Context, key string) (filadash.Setting, error)
	GetAll(ctx context.Context) ([]filadash.Setting, error)
	Put(ctx context.Context, key, value string) error
}

type Repository struct {
	Archive  ArchiveRepo
	Events   EventRepo
	Sensors  SensorRepo
	Settings SettingsRepo
	Auth     Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Archive:  NewArchiveSQLite(sqlDB),
		Events:   NewEventSQLite(sqlDB),
		Sensors:  NewSensorSQLite(sqlDB),
		Settings: NewSettingsSQLite(sqlDB),
		Auth:     NewUserRepository(sqlDB),
	}
}

// InitDB opens the SQLite database and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.Init(path)
}
