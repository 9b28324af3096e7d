package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"filadash"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	// Generated id and timestamp string are unknown; match the statement
	// shape and the deterministic args.
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO ams_op_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			"REQUEST", "load requested",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(testCtx(t), filadash.OpEvent{
		// EventID empty -> repo generates
		// OccurredAt zero -> repo sets UTC now
		Type:        "  request ",
		Description: "load requested",
		Metadata:    map[string]any{"target": 2},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO ams_op_events`)).
		WillReturnError(errors.New("disk full"))

	if err := repo.Append(testCtx(t), filadash.OpEvent{Type: "CANCEL", Description: "x"}); err == nil {
		t.Fatalf("expected error from Append")
	}
}

func TestEventList_FiltersAndOrder(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	occurred := from.Add(3 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", occurred, "TIMEOUT", "refresh timed out", `{"kind":"refresh"}`)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, occurred_at, type, message, meta FROM ams_op_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`,
	)).
		WithArgs(from, to, "TIMEOUT").
		WillReturnRows(rows)

	events, err := repo.List(testCtx(t), from, to, "timeout")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EventID != "ev-1" || ev.Type != "TIMEOUT" {
		t.Fatalf("unexpected event: %#v", ev)
	}
	meta, ok := ev.Metadata.(map[string]any)
	if !ok || meta["kind"] != "refresh" {
		t.Fatalf("metadata not decoded: %#v", ev.Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
