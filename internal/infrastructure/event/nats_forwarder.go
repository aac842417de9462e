package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fiado/backend/internal/domain/shared"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// StreamPublisher is the subset of jetstream.JetStream the forwarder needs
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSForwarder is a wildcard event handler that republishes ledger events
// to JetStream under <prefix>.<event_type>. The event ID is the message ID,
// so redelivery of the same event is deduplicated by the stream.
type NATSForwarder struct {
	js         StreamPublisher
	serializer *EventSerializer
	prefix     string
	logger     *zap.Logger
}

// NewNATSForwarder creates a forwarder publishing through js
func NewNATSForwarder(js StreamPublisher, serializer *EventSerializer, subjectPrefix string, logger *zap.Logger) *NATSForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSForwarder{
		js:         js,
		serializer: serializer,
		prefix:     strings.TrimSuffix(subjectPrefix, "."),
		logger:     logger,
	}
}

// EventTypes returns nil: the forwarder receives every event
func (f *NATSForwarder) EventTypes() []string {
	return nil
}

// Handle serializes the event and publishes it
func (f *NATSForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	data, err := f.serializer.Serialize(event)
	if err != nil {
		return err
	}

	subject := f.Subject(event.EventType())
	ack, err := f.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.EventID().String()))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	f.logger.Debug("event forwarded",
		zap.String("subject", subject),
		zap.String("event_id", event.EventID().String()),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate),
	)
	return nil
}

// Subject returns the subject an event type is published on
func (f *NATSForwarder) Subject(eventType string) string {
	return f.prefix + "." + eventType
}

// Connect opens a NATS connection with the configured client name
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.URL, err)
	}
	return conn, nil
}

// EnsureStream creates or updates the stream that captures <prefix>.>
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{strings.TrimSuffix(cfg.SubjectPrefix, ".") + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     cfg.StreamMaxAge,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

var _ shared.EventHandler = (*NATSForwarder)(nil)
