package core

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"floatchat.com/core/internal/store"
)

const (
	welcomeText = "Hello! I'm your FloatChat AI assistant. I can help you analyze ocean data, " +
		"explore ARGO float measurements, and answer questions about marine science. " +
		"What would you like to explore today?"

	// Shown when the service responds without an answer field.
	fallbackAnswer = "Sorry, I couldn't process that request."

	// Shown for any transport, status, or parsing failure.
	errorAnswer = "Sorry, there was an error connecting to the server."
)

// AnswerClient is the remote answer service collaborator.
type AnswerClient interface {
	Ask(ctx context.Context, query string) (string, error)
}

// QueryState is the read-only view of the chat session handed to presentation.
type QueryState struct {
	Messages []store.Message `json:"messages"`
	Pending  bool            `json:"pending"`
}

// QuerySession manages one continuous chat transcript and its interaction
// with the remote answer service. At most one request is in flight at a time:
// Submit refuses re-entry while pending, which keeps transcript order
// globally consistent with submission order.
type QuerySession struct {
	mu         sync.Mutex
	transcript *store.TranscriptStore
	pending    bool
	closed     bool

	client AnswerClient
	now    func() time.Time
	geoTag func() *store.GeoPoint
	notify func()

	submitted metric.Int64Counter
	rejected  metric.Int64Counter
}

func NewQuerySession(client AnswerClient, transcript *store.TranscriptStore, notify func()) *QuerySession {
	q := &QuerySession{
		transcript: transcript,
		client:     client,
		now:        time.Now,
		geoTag:     sampleGeoTag,
		notify:     notify,
	}

	meter := otel.Meter("floatchat-core")
	if c, err := meter.Int64Counter(
		"chat.queries.submitted",
		metric.WithDescription("Queries accepted for dispatch to the answer service"),
	); err == nil {
		q.submitted = c
	}
	if c, err := meter.Int64Counter(
		"chat.queries.rejected",
		metric.WithDescription("Queries rejected because they were empty or a request was already pending"),
	); err == nil {
		q.rejected = c
	}

	transcript.Append(store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleAssistant,
		Text:      welcomeText,
		CreatedAt: q.now(),
	})

	return q
}

// Submit appends the user message and dispatches one asynchronous request to
// the answer service. Empty (after trimming) or double submissions are
// silent no-ops, not errors. Returns whether the submission was accepted.
func (q *QuerySession) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		q.count(q.rejected)
		return false
	}

	q.mu.Lock()
	if q.pending || q.closed {
		q.mu.Unlock()
		slog.Debug("submission ignored", "reason", "request already pending")
		q.count(q.rejected)
		return false
	}
	q.pending = true
	q.transcript.Append(store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleUser,
		Text:      text,
		CreatedAt: q.now(),
	})
	q.mu.Unlock()

	q.count(q.submitted)
	q.changed()
	go q.resolve(text)
	return true
}

// resolve completes one submission. Whatever happens, exactly one assistant
// message is appended and pending is cleared; remote failures never propagate
// past the transcript.
func (q *QuerySession) resolve(text string) {
	answerText, err := q.client.Ask(context.Background(), text)

	msg := store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleAssistant,
		CreatedAt: q.now(),
	}
	switch {
	case err != nil:
		slog.Error("answer service request failed", "error", err)
		msg.Text = errorAnswer
	case answerText == "":
		slog.Warn("answer service response had no answer field")
		msg.Text = fallbackAnswer
	default:
		msg.Text = answerText
		msg.Location = q.geoTag()
	}

	q.mu.Lock()
	q.pending = false
	if q.closed {
		// The session was torn down while the request was in flight.
		q.mu.Unlock()
		return
	}
	q.transcript.Append(msg)
	q.mu.Unlock()

	q.changed()
}

// Snapshot returns a copy of the current transcript and pending flag.
func (q *QuerySession) Snapshot() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueryState{
		Messages: q.transcript.Messages(),
		Pending:  q.pending,
	}
}

func (q *QuerySession) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Close marks the session torn down. An in-flight request is not aborted but
// its resolution no longer mutates the transcript.
func (q *QuerySession) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *QuerySession) changed() {
	if q.notify != nil {
		q.notify()
	}
}

func (q *QuerySession) count(counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(context.Background(), 1)
	}
}

// sampleGeoTag occasionally attaches a fixed Pacific coordinate to a reply;
// the backend does not report real float positions yet.
func sampleGeoTag() *store.GeoPoint {
	if rand.Float64() > 0.7 {
		return &store.GeoPoint{Lat: 35.5, Lng: -125.2}
	}
	return nil
}
