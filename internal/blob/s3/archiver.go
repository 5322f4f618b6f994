package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

// Archiver uploads old event-log entries to cold storage as JSONL files,
// partitioned by the year-month of the cutoff time.
//
// Removal of archived events from the live log is intentionally not done
// here. That is a separate explicit step, executed only after the archive
// upload has been verified.
type Archiver struct {
	writer domain.BlobWriter
	store  domain.EventStore
	logger *slog.Logger
}

// NewArchiver creates an Archiver over the given event store and writer.
func NewArchiver(writer domain.BlobWriter, store domain.EventStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		store:  store,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveEvents uploads all events recorded strictly before the cutoff to
// archive/events/YYYY-MM.jsonl and returns the number archived. Events with
// an unparseable timestamp are skipped with a warning. A cutoff with no
// matching events uploads nothing and returns zero.
func (a *Archiver) ArchiveEvents(ctx context.Context, before time.Time) (int64, error) {
	events, err := a.store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive events read: %w", err)
	}

	var old []domain.Event
	for _, ev := range events {
		ts, err := time.Parse(time.RFC3339, ev.Timestamp)
		if err != nil {
			a.logger.Warn("skipping event with bad timestamp",
				slog.String("timestamp", ev.Timestamp),
				slog.String("event_type", ev.EventType))
			continue
		}
		if ts.Before(before) {
			old = append(old, ev)
		}
	}
	if len(old) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(old)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive events marshal: %w", err)
	}

	path := archivePath("events", before)
	if err := a.writer.Put(ctx, path, buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive events upload: %w", err)
	}

	count := int64(len(old))
	a.logger.Info("archived events",
		slog.String("path", path),
		slog.Int64("count", count),
		slog.String("before", before.Format(time.RFC3339)))
	return count, nil
}

// archivePath builds the S3 key for an archive file, e.g.
// archive/events/2026-08.jsonl.
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises records as newline-delimited JSON, one compact
// line per record.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
