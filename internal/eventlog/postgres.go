package eventlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidkap/optadvisor/internal/domain"
)

// PostgresStore implements domain.EventStore on a single append-only table.
// Append order is preserved by the serial primary key.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore wraps an existing pool. The caller owns the pool's
// lifecycle.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: logger.With(slog.String("component", "eventlog.postgres")),
	}
}

// EnsureSchema creates the events table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS advisor_events (
			id         BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb
		)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("eventlog: ensure schema: %v: %w", err, domain.ErrStorage)
	}
	return nil
}

// Append inserts one record with a fresh server-assigned timestamp.
func (s *PostgresStore) Append(ctx context.Context, eventType string, data map[string]any) error {
	const q = `INSERT INTO advisor_events (ts, event_type, data) VALUES ($1, $2, $3)`
	ts := time.Now().UTC()
	if _, err := s.pool.Exec(ctx, q, ts, eventType, data); err != nil {
		return fmt.Errorf("eventlog: append %s event: %v: %w", eventType, err, domain.ErrStorage)
	}
	return nil
}

// ReadAll returns every event in append order.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	const q = `SELECT ts, event_type, data FROM advisor_events ORDER BY id ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("eventlog: read events: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var (
			ts        time.Time
			eventType string
			data      map[string]any
		)
		if err := rows.Scan(&ts, &eventType, &data); err != nil {
			return nil, fmt.Errorf("eventlog: scan event row: %v: %w", err, domain.ErrStorage)
		}
		events = append(events, domain.Event{
			Timestamp: ts.UTC().Format(time.RFC3339Nano),
			EventType: eventType,
			Data:      data,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: iterate event rows: %v: %w", err, domain.ErrStorage)
	}
	return events, nil
}

// Clear truncates the events table.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE advisor_events`); err != nil {
		return fmt.Errorf("eventlog: clear events: %v: %w", err, domain.ErrStorage)
	}
	return nil
}
