package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"filadash"
)

type SensorSQLite struct {
	db *sql.DB
}

func NewSensorSQLite(db *sql.DB) *SensorSQLite { return &SensorSQLite{db: db} }

var _ SensorRepo = (*SensorSQLite)(nil)

const insertSensorSQL = `
	INSERT INTO ams_sensor_history (unit_id, humidity, temperature, recorded_at)
	VALUES (?, ?, ?, ?)
`

// Append stores one humidity/temperature sample. A zero RecordedAt is set to now (UTC).
func (r *SensorSQLite) Append(ctx context.Context, s filadash.SensorSample) error {
	if s.RecordedAt.IsZero() {
		s.RecordedAt = time.Now().UTC()
	} else {
		s.RecordedAt = s.RecordedAt.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertSensorSQL, s.UnitID, s.Humidity, s.Temperature, s.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert sensor sample for unit %d: %w", s.UnitID, err)
	}
	return nil
}

// List returns samples for one unit (unitID < 0 = all units) within [from, to], ordered ASC.
func (r *SensorSQLite) List(ctx context.Context, unitID int, from, to time.Time) ([]filadash.SensorSample, error) {
	var (
		conds []string
		args  []any
	)
	if unitID >= 0 {
		conds = append(conds, "unit_id = ?")
		args = append(args, unitID)
	}
	if !from.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, to.UTC())
	}

	q := `SELECT id, unit_id, humidity, temperature, recorded_at FROM ams_sensor_history`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY recorded_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]filadash.SensorSample, 0, 64)
	for rows.Next() {
		var s filadash.SensorSample
		if err := rows.Scan(&s.ID, &s.UnitID, &s.Humidity, &s.Temperature, &s.RecordedAt); err != nil {
			return nil, err
		}
		s.RecordedAt = s.RecordedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
