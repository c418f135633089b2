package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"floatchat.com/core/internal/store"
)

// fakeAnswerClient is a controllable stand-in for the answer service. When
// release is non-nil, Ask blocks until it is closed.
type fakeAnswerClient struct {
	mu      sync.Mutex
	answer  string
	err     error
	release chan struct{}
	calls   int
}

func (f *fakeAnswerClient) Ask(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return f.answer, f.err
}

func (f *fakeAnswerClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func newTestQuerySession(client AnswerClient) *QuerySession {
	q := NewQuerySession(client, store.NewTranscriptStore(), nil)
	q.geoTag = func() *store.GeoPoint { return nil }
	return q
}

func TestNewQuerySession_SeedsWelcomeMessage(t *testing.T) {
	q := newTestQuerySession(&fakeAnswerClient{})

	state := q.Snapshot()
	if len(state.Messages) != 1 {
		t.Fatalf("transcript has %d messages, want 1", len(state.Messages))
	}
	if state.Messages[0].Role != store.RoleAssistant {
		t.Errorf("welcome message role = %q, want %q", state.Messages[0].Role, store.RoleAssistant)
	}
	if state.Pending {
		t.Error("new session should not be pending")
	}
}

func TestSubmit_AppendsUserMessageThenReply(t *testing.T) {
	client := &fakeAnswerClient{answer: "About 2000 meters.", release: make(chan struct{})}
	q := newTestQuerySession(client)

	if !q.Submit("depth?") {
		t.Fatal("Submit should be accepted")
	}

	// The user message appears synchronously and the session is pending.
	state := q.Snapshot()
	if len(state.Messages) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(state.Messages))
	}
	last := state.Messages[1]
	if last.Role != store.RoleUser || last.Text != "depth?" {
		t.Errorf("last message = %q/%q, want user/%q", last.Role, last.Text, "depth?")
	}
	if last.ID == "" {
		t.Error("user message should have an ID")
	}
	if !state.Pending {
		t.Error("session should be pending while the request is in flight")
	}

	close(client.release)
	waitUntil(t, func() bool { return !q.Pending() })

	state = q.Snapshot()
	if len(state.Messages) != 3 {
		t.Fatalf("transcript has %d messages after resolution, want 3", len(state.Messages))
	}
	reply := state.Messages[2]
	if reply.Role != store.RoleAssistant || reply.Text != "About 2000 meters." {
		t.Errorf("reply = %q/%q, want assistant/%q", reply.Role, reply.Text, "About 2000 meters.")
	}
}

func TestSubmit_EmptyTextIsNoOp(t *testing.T) {
	client := &fakeAnswerClient{}
	q := newTestQuerySession(client)

	for _, text := range []string{"", "   ", "\t\n"} {
		if q.Submit(text) {
			t.Errorf("Submit(%q) should be rejected", text)
		}
	}

	state := q.Snapshot()
	if len(state.Messages) != 1 {
		t.Errorf("transcript has %d messages, want only the welcome message", len(state.Messages))
	}
	if state.Pending {
		t.Error("empty submission must not set pending")
	}
	if client.callCount() != 0 {
		t.Errorf("answer service called %d times, want 0", client.callCount())
	}
}

func TestSubmit_RejectedWhilePending(t *testing.T) {
	client := &fakeAnswerClient{answer: "ok", release: make(chan struct{})}
	q := newTestQuerySession(client)

	if !q.Submit("first") {
		t.Fatal("first Submit should be accepted")
	}
	if q.Submit("second") {
		t.Error("second Submit while pending should be rejected")
	}

	if got := len(q.Snapshot().Messages); got != 2 {
		t.Errorf("transcript has %d messages, want 2 (no second user message)", got)
	}
	// The answer service is called from a goroutine; wait for it to start.
	waitUntil(t, func() bool { return client.callCount() >= 1 })
	if client.callCount() != 1 {
		t.Errorf("answer service called %d times, want 1", client.callCount())
	}

	close(client.release)
	waitUntil(t, func() bool { return !q.Pending() })

	// Once resolved the session accepts submissions again.
	if !q.Submit("second") {
		t.Error("Submit after resolution should be accepted")
	}
}

func TestSubmit_ErrorAppendsErrorPhrase(t *testing.T) {
	client := &fakeAnswerClient{err: errors.New("connection refused")}
	q := newTestQuerySession(client)

	q.Submit("depth?")
	waitUntil(t, func() bool { return q.transcript.Len() == 3 })

	state := q.Snapshot()
	reply := state.Messages[2]
	if reply.Role != store.RoleAssistant {
		t.Errorf("reply role = %q, want assistant", reply.Role)
	}
	if reply.Text != errorAnswer {
		t.Errorf("reply text = %q, want %q", reply.Text, errorAnswer)
	}
	if reply.Location != nil {
		t.Error("failed replies must not carry a geo tag")
	}
	if state.Pending {
		t.Error("pending must be cleared after a failed resolution")
	}
}

func TestSubmit_MissingAnswerUsesFallbackPhrase(t *testing.T) {
	client := &fakeAnswerClient{answer: ""}
	q := newTestQuerySession(client)

	q.Submit("depth?")
	waitUntil(t, func() bool { return q.transcript.Len() == 3 })

	reply := q.Snapshot().Messages[2]
	if reply.Text != fallbackAnswer {
		t.Errorf("reply text = %q, want %q", reply.Text, fallbackAnswer)
	}
}

func TestSubmit_SuccessfulReplyMayCarryGeoTag(t *testing.T) {
	client := &fakeAnswerClient{answer: "ok"}
	q := NewQuerySession(client, store.NewTranscriptStore(), nil)
	q.geoTag = func() *store.GeoPoint { return &store.GeoPoint{Lat: 35.5, Lng: -125.2} }

	q.Submit("depth?")
	waitUntil(t, func() bool { return !q.Pending() })

	reply := q.Snapshot().Messages[2]
	if reply.Location == nil {
		t.Fatal("reply should carry the geo tag")
	}
	if reply.Location.Lat != 35.5 || reply.Location.Lng != -125.2 {
		t.Errorf("geo tag = %+v, want {35.5 -125.2}", *reply.Location)
	}
}

func TestClose_LateResolutionDoesNotMutate(t *testing.T) {
	client := &fakeAnswerClient{answer: "late", release: make(chan struct{})}
	q := newTestQuerySession(client)

	q.Submit("depth?")
	q.Close()
	close(client.release)

	waitUntil(t, func() bool { return !q.Pending() })

	if got := len(q.Snapshot().Messages); got != 2 {
		t.Errorf("transcript has %d messages after Close, want 2 (no late reply)", got)
	}
}

func TestSubmit_CountsAcceptedAndRejectedQueries(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	defer otel.SetMeterProvider(prev)

	client := &fakeAnswerClient{answer: "ok", release: make(chan struct{})}
	q := newTestQuerySession(client)

	q.Submit("one") // accepted
	q.Submit("two") // rejected, request in flight
	q.Submit("   ") // rejected, empty

	close(client.release)
	waitUntil(t, func() bool { return !q.Pending() })

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	if got := counterValue(t, rm, "chat.queries.submitted"); got != 1 {
		t.Errorf("chat.queries.submitted = %d, want 1", got)
	}
	if got := counterValue(t, rm, "chat.queries.rejected"); got != 2 {
		t.Errorf("chat.queries.rejected = %d, want 2", got)
	}
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestSubmit_OrderIsSubmissionOrder(t *testing.T) {
	client := &fakeAnswerClient{answer: "reply"}
	q := newTestQuerySession(client)

	for _, text := range []string{"one", "two", "three"} {
		if !q.Submit(text) {
			t.Fatalf("Submit(%q) should be accepted", text)
		}
		waitUntil(t, func() bool { return !q.Pending() })
	}

	msgs := q.Snapshot().Messages
	if len(msgs) != 7 { // welcome + 3 pairs
		t.Fatalf("transcript has %d messages, want 7", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		user := msgs[1+2*i]
		reply := msgs[2+2*i]
		if user.Role != store.RoleUser || user.Text != want {
			t.Errorf("message %d = %q/%q, want user/%q", 1+2*i, user.Role, user.Text, want)
		}
		if reply.Role != store.RoleAssistant {
			t.Errorf("message %d role = %q, want assistant", 2+2*i, reply.Role)
		}
	}
}
