package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
)

type recordingSender struct {
	name     string
	titles   []string
	messages []string
	err      error
}

func (r *recordingSender) Send(ctx context.Context, title, message string) error {
	if r.err != nil {
		return r.err
	}
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSender) Name() string { return r.name }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyRunCompleted(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discard())

	recs := []domain.TradeRecommendation{
		{RecommendationType: domain.NewTrade, Symbol: "INFY", OptionType: "PE",
			StrikePrice: 1400, Expiry: "2026-09-25", Confidence: 7.6, ExpectedROM: 12.5},
	}
	require.NoError(t, n.NotifyRunCompleted(context.Background(), recs))

	require.Len(t, s.titles, 1)
	assert.Equal(t, "Analysis run completed: 1 recommendation(s)", s.titles[0])
	assert.Contains(t, s.messages[0], "INFY PE 1400.00")
	assert.Contains(t, s.messages[0], "confidence 7.6")
}

func TestNotifyRunCompletedEmpty(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discard())

	require.NoError(t, n.NotifyRunCompleted(context.Background(), nil))
	require.Len(t, s.messages, 1)
	assert.Equal(t, "No recommendations passed review.", s.messages[0])
}

func TestEventFilter(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, []string{EventMarginAlert}, discard())

	require.NoError(t, n.Notify(context.Background(), EventRunCompleted, "t", "m"))
	assert.Empty(t, s.titles)

	require.NoError(t, n.NotifyMarginAlert(context.Background(), "Margin utilization is HIGH: 85.00%"))
	require.Len(t, s.titles, 1)
	assert.Equal(t, "Margin alert", s.titles[0])
}

func TestSenderFailureDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("webhook down")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discard())

	err := n.Notify(context.Background(), EventRunCompleted, "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: webhook down")
	require.Len(t, good.titles, 1)
}

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	s := NewTelegramSender(srv.URL, "bot-token", "chat-42")
	require.NoError(t, s.Send(context.Background(), "Title", "body text"))

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "chat-42", payload["chat_id"])
	assert.Equal(t, "*Title*\nbody text", payload["text"])
	assert.Equal(t, "Markdown", payload["parse_mode"])
}

func TestTelegramSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewTelegramSender(srv.URL, "token", "chat")
	err := s.Send(context.Background(), "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
