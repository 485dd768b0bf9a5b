package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
	// release, when set, holds every write until it is closed.
	release chan struct{}
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.release != nil {
		select {
		case <-w.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

type recorderSpy struct {
	mu         sync.Mutex
	ok, failed int
	lastErr    error
}

func (r *recorderSpy) EventPublished(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
		r.lastErr = err
		return
	}
	r.ok++
}

func (r *recorderSpy) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ok, r.failed
}

func runPublisher(t *testing.T, p *Publisher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	return func() {
		stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publisher did not stop")
		}
	}
}

func TestPublisherWritesEventsKeyedByComplaint(t *testing.T) {
	w := &fakeWriter{}
	rec := &recorderSpy{}
	p := NewPublisher(w, rec, nil, 0)
	d := events.NewInMemoryDispatcher(nil)
	p.Attach(d)
	stop := runPublisher(t, p)
	defer stop()

	at := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	event := events.New(events.EventStatusChanged, "CMP-2024-00007", events.Actor{UserID: "staff-1", Role: domain.RoleStaff}, at,
		events.StatusChangedPayload{OldStatus: domain.StatusNew, NewStatus: domain.StatusInProgress})
	require.NoError(t, d.Publish(context.Background(), event))

	require.Eventually(t, func() bool { return len(w.written()) == 1 }, time.Second, 5*time.Millisecond)
	msg := w.written()[0]
	assert.Equal(t, "CMP-2024-00007", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "complaint.status_changed", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded["id"])
	ok, _ := rec.counts()
	assert.Equal(t, 1, ok)
}

func TestPublishDoesNotWaitForTheBroker(t *testing.T) {
	w := &fakeWriter{release: make(chan struct{})}
	p := NewPublisher(w, nil, nil, 8)
	d := events.NewInMemoryDispatcher(nil)
	p.Attach(d)
	stop := runPublisher(t, p)

	published := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			_ = d.Publish(context.Background(), events.New(events.EventComplaintCreated, "CMP-2024-00001", events.Actor{}, time.Now(), nil))
		}
		close(published)
	}()
	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stalled writer")
	}
	assert.Empty(t, w.written())

	close(w.release)
	require.Eventually(t, func() bool { return len(w.written()) == 3 }, time.Second, 5*time.Millisecond)
	stop()
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	rec := &recorderSpy{}
	p := NewPublisher(&fakeWriter{}, rec, nil, 1)
	event := events.New(events.EventComplaintCreated, "CMP-2024-00001", events.Actor{}, time.Now(), nil)

	require.NoError(t, p.Enqueue(context.Background(), event))
	assert.ErrorIs(t, p.Enqueue(context.Background(), event), ErrQueueFull)
	_, failed := rec.counts()
	assert.Equal(t, 1, failed)
	assert.ErrorIs(t, rec.lastErr, ErrQueueFull)
}

func TestRunFlushesBufferedEventsOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, nil, nil, 4)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Enqueue(context.Background(), events.New(events.EventCommentAdded, "CMP-2024-00002", events.Actor{}, time.Now(), nil)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)
	assert.Len(t, w.written(), 3)
}

func TestWriteRecordsFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	rec := &recorderSpy{}
	p := NewPublisher(w, rec, nil, 0)

	err := p.write(context.Background(), events.New(events.EventComplaintCreated, "CMP-2024-00001", events.Actor{}, time.Now(), nil))
	assert.EqualError(t, err, "broker down")
	_, failed := rec.counts()
	assert.Equal(t, 1, failed)
}

func TestNewWriterUsesConfiguredTopic(t *testing.T) {
	w := NewWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "complaint-events"}, "complaint-service")
	assert.Equal(t, "complaint-events", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
