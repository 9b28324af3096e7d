package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filadash"
)

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite { return &SettingsSQLite{db: db} }

var _ SettingsRepo = (*SettingsSQLite)(nil)

const (
	selectSettingSQL  = `SELECT key, value, updated_at FROM settings WHERE key = ?`
	selectSettingsSQL = `SELECT key, value, updated_at FROM settings ORDER BY key ASC`
	upsertSettingSQL  = `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
)

func (r *SettingsSQLite) Get(ctx context.Context, key string) (filadash.Setting, error) {
	var s filadash.Setting
	row := r.db.QueryRowContext(ctx, selectSettingSQL, key)
	if err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filadash.Setting{}, ErrNotFound
		}
		return filadash.Setting{}, fmt.Errorf("select setting %q: %w", key, err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *SettingsSQLite) GetAll(ctx context.Context) ([]filadash.Setting, error) {
	rows, err := r.db.QueryContext(ctx, selectSettingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]filadash.Setting, 0, 16)
	for rows.Next() {
		var s filadash.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.UpdatedAt = s.UpdatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SettingsSQLite) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertSettingSQL, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return err
}
