package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filadash"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ArchiveSQLite struct {
	db *sql.DB
}

func NewArchiveSQLite(db *sql.DB) *ArchiveSQLite { return &ArchiveSQLite{db: db} }

var _ ArchiveRepo = (*ArchiveSQLite)(nil)

const (
	insertArchiveSQL = `
		INSERT INTO archives (file_name, print_name, printer_name, status, duration_s, filament_g, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	selectArchiveSQL = `
		SELECT id, file_name, print_name, printer_name, status, duration_s, filament_g, created_at
		FROM archives WHERE id = ?
	`
	listArchivesSQL = `
		SELECT id, file_name, print_name, printer_name, status, duration_s, filament_g, created_at
		FROM archives ORDER BY created_at DESC
	`
	deleteArchiveSQL = `DELETE FROM archives WHERE id = ?`
	statsArchivesSQL = `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(duration_s), 0),
		       COALESCE(SUM(filament_g), 0)
		FROM archives
	`
)

// Insert stores a new archive record. A zero CreatedAt is set to now (UTC).
func (r *ArchiveSQLite) Insert(ctx context.Context, a filadash.PrintArchive) (int, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	} else {
		a.CreatedAt = a.CreatedAt.UTC()
	}
	res, err := r.db.ExecContext(ctx, insertArchiveSQL,
		a.FileName, a.PrintName, a.PrinterName, a.Status, a.DurationSec, a.FilamentGrams, a.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert archive %q: %w", a.FileName, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for archive %q: %w", a.FileName, err)
	}
	return int(lastID), nil
}

func (r *ArchiveSQLite) GetByID(ctx context.Context, id int) (filadash.PrintArchive, error) {
	row := r.db.QueryRowContext(ctx, selectArchiveSQL, id)
	a, err := scanArchive(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filadash.PrintArchive{}, ErrNotFound
		}
		return filadash.PrintArchive{}, fmt.Errorf("select archive %d: %w", id, err)
	}
	return a, nil
}

func (r *ArchiveSQLite) List(ctx context.Context) ([]filadash.PrintArchive, error) {
	rows, err := r.db.QueryContext(ctx, listArchivesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]filadash.PrintArchive, 0, 64)
	for rows.Next() {
		a, err := scanArchive(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArchiveSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteArchiveSQL, id)
	if err != nil {
		return fmt.Errorf("delete archive %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the whole archive in one query.
func (r *ArchiveSQLite) Stats(ctx context.Context) (filadash.PrintStats, error) {
	var s filadash.PrintStats
	row := r.db.QueryRowContext(ctx, statsArchivesSQL)
	if err := row.Scan(&s.TotalPrints, &s.Succeeded, &s.Failed, &s.TotalDurationSec, &s.TotalFilamentGrams); err != nil {
		return filadash.PrintStats{}, fmt.Errorf("aggregate archives: %w", err)
	}
	if s.TotalPrints > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.TotalPrints)
	}
	return s, nil
}

func scanArchive(scan func(dest ...any) error) (filadash.PrintArchive, error) {
	var (
		a           filadash.PrintArchive
		printName   sql.NullString
		printerName sql.NullString
	)
	if err := scan(&a.ID, &a.FileName, &printName, &printerName, &a.Status, &a.DurationSec, &a.FilamentGrams, &a.CreatedAt); err != nil {
		return filadash.PrintArchive{}, err
	}
	a.PrintName = printName.String
	a.PrinterName = printerName.String
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
