package s3blob

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
)

type fakeWriter struct {
	path        string
	data        []byte
	contentType string
	calls       int
}

func (f *fakeWriter) Put(ctx context.Context, path string, data []byte, contentType string) error {
	f.calls++
	f.path = path
	f.data = data
	f.contentType = contentType
	return nil
}

type fakeStore struct {
	events []domain.Event
}

func (f *fakeStore) Append(ctx context.Context, eventType string, data map[string]any) error {
	f.events = append(f.events, domain.Event{EventType: eventType, Data: data})
	return nil
}

func (f *fakeStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	return f.events, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.events = nil
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiveEvents(t *testing.T) {
	store := &fakeStore{events: []domain.Event{
		{Timestamp: "2026-06-10T09:00:00Z", EventType: domain.EventRecommendation, Data: map[string]any{"symbol": "INFY"}},
		{Timestamp: "2026-07-02T15:30:00Z", EventType: domain.UserActionAccepted, Data: map[string]any{"symbol": "INFY"}},
		{Timestamp: "2026-08-20T11:00:00Z", EventType: domain.EventRecommendation, Data: map[string]any{"symbol": "TCS"}},
	}}
	writer := &fakeWriter{}
	arch := NewArchiver(writer, store, discard())

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	count, err := arch.ArchiveEvents(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.Equal(t, "archive/events/2026-08.jsonl", writer.path)
	assert.Equal(t, "application/x-ndjson", writer.contentType)

	lines := strings.Split(strings.TrimSpace(string(writer.data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"recommendation"`)
	assert.Contains(t, lines[1], `"user_action:accepted"`)
}

func TestArchiveEventsNothingOld(t *testing.T) {
	store := &fakeStore{events: []domain.Event{
		{Timestamp: "2026-08-20T11:00:00Z", EventType: domain.EventRecommendation},
	}}
	writer := &fakeWriter{}
	arch := NewArchiver(writer, store, discard())

	count, err := arch.ArchiveEvents(context.Background(), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, 0, writer.calls)
}

func TestArchiveEventsSkipsBadTimestamps(t *testing.T) {
	store := &fakeStore{events: []domain.Event{
		{Timestamp: "not-a-time", EventType: domain.EventRecommendation},
		{Timestamp: "2026-06-01T00:00:00Z", EventType: domain.UserActionRejected},
	}}
	writer := &fakeWriter{}
	arch := NewArchiver(writer, store, discard())

	count, err := arch.ArchiveEvents(context.Background(), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
