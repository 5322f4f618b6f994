// Package eventlog implements the append-only event log behind the learning
// loop. Two stores are provided: a newline-delimited JSON file for
// single-host deployments and a PostgreSQL table for multi-process ones.
// Both write one immutable record per append and return records in append
// order.
package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

// maxLineBytes bounds a single log record. Recommendation payloads with full
// reasoning text stay well under this.
const maxLineBytes = 1 << 20

// FileStore implements domain.EventStore over an NDJSON file. Appends are
// serialized by a mutex and written as a single Write call so concurrent
// appenders cannot interleave partial records.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a FileStore for the given path. The file is created
// lazily on first append.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With(slog.String("component", "eventlog")),
	}
}

// Append writes one immutable record with a fresh server-assigned timestamp.
func (s *FileStore) Append(ctx context.Context, eventType string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("eventlog: append: %w", domain.ErrContextDone)
	}

	entry := domain.Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventType: eventType,
		Data:      data,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("eventlog: marshal %s event: %v: %w", eventType, err, domain.ErrStorage)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("eventlog: open %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("eventlog: append %s event: %v: %w", eventType, err, domain.ErrStorage)
	}
	return nil
}

// ReadAll returns all events in append order. A missing file yields an empty
// slice. Blank lines and lines that fail to parse (for example a partially
// written trailing record) are skipped, not fatal.
func (s *FileStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: read: %w", domain.ErrContextDone)
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("eventlog: open %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	defer f.Close()

	var (
		events  []domain.Event
		skipped int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev domain.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: scan %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	if skipped > 0 {
		s.logger.Warn("skipped corrupt log lines",
			slog.String("path", s.path),
			slog.Int("skipped", skipped),
		)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// Clear removes the log file. It is idempotent and intended for test
// isolation and explicit resets only.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("eventlog: clear: %w", domain.ErrContextDone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("eventlog: clear %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	return nil
}
