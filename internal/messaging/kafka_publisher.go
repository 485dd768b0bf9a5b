// Package messaging fans domain events out to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/events"
)

// Writer abstracts kafka.Writer for testing.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublishRecorder counts published events.
type PublishRecorder interface {
	EventPublished(eventType string, err error)
}

// ErrQueueFull is returned when the publish buffer cannot take another event.
var ErrQueueFull = errors.New("kafka publish queue full")

// DefaultQueueSize is the publish buffer used when none is given.
const DefaultQueueSize = 1024

// Publisher writes every domain event as JSON keyed by complaint ID, so all
// events for one complaint land on the same partition in order. Events are
// queued by the dispatcher and written by Run, never on the caller's goroutine.
type Publisher struct {
	writer       Writer
	recorder     PublishRecorder
	logger       *zap.Logger
	writeTimeout time.Duration
	queue        chan events.Event
}

// NewWriter builds a hash-balanced writer for cfg.
func NewWriter(cfg config.KafkaConfig, clientID string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Transport: &kafka.Transport{
			ClientID:    clientID,
			MetadataTTL: 10 * time.Second,
		},
	}
}

// NewPublisher wraps w with a queue of queueSize events (DefaultQueueSize
// when not positive). recorder and logger may be nil.
func NewPublisher(w Writer, recorder PublishRecorder, logger *zap.Logger, queueSize int) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Publisher{
		writer:       w,
		recorder:     recorder,
		logger:       logger,
		writeTimeout: 5 * time.Second,
		queue:        make(chan events.Event, queueSize),
	}
}

// Attach subscribes the publisher to every event type.
func (p *Publisher) Attach(d events.Dispatcher) {
	events.SubscribeAll(d, p.Enqueue)
}

// Enqueue buffers event for Run without blocking. A full buffer drops the
// event and records the failure.
func (p *Publisher) Enqueue(_ context.Context, event events.Event) error {
	select {
	case p.queue <- event:
		return nil
	default:
		p.record(event.Type, ErrQueueFull)
		p.logger.Warn("kafka publish queue full; event dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID))
		return ErrQueueFull
	}
}

// Run writes queued events until ctx is done, then flushes what is still
// buffered. Writes are bounded by the write timeout, not by ctx.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("kafka publisher started")
	for {
		select {
		case event := <-p.queue:
			_ = p.write(context.Background(), event)
		case <-ctx.Done():
			p.drain()
			p.logger.Info("kafka publisher stopped")
			return
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case event := <-p.queue:
			_ = p.write(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Publisher) write(ctx context.Context, event events.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.record(event.Type, err)
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	err = p.writer.WriteMessages(cctx, kafka.Message{
		Key:     []byte(event.ComplaintID),
		Value:   value,
		Time:    event.Timestamp,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
	})
	p.record(event.Type, err)
	if err != nil {
		p.logger.Warn("kafka publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
	return err
}

// Close closes the writer. Call it after Run has returned.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) record(t events.EventType, err error) {
	if p.recorder != nil {
		p.recorder.EventPublished(string(t), err)
	}
}
