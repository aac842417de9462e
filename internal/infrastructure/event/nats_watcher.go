package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/fiado/backend/internal/domain/shared"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/nats-io/nats.go/jetstream"
)

// Watch streams newly published ledger events to fn until ctx is done.
// eventTypes narrows the subscription; empty means every ledger event.
// Messages that fail to decode are skipped after reporting to onError.
func Watch(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig, serializer *EventSerializer,
	eventTypes []string, fn func(shared.DomainEvent), onError func(error)) error {
	prefix := strings.TrimSuffix(cfg.SubjectPrefix, ".")
	subjects := []string{prefix + ".>"}
	if len(eventTypes) > 0 {
		subjects = make([]string, len(eventTypes))
		for i, t := range eventTypes {
			subjects[i] = prefix + "." + t
		}
	}

	consumer, err := js.OrderedConsumer(ctx, cfg.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: subjects,
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer on %s: %w", cfg.StreamName, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := serializer.Deserialize(msg.Data())
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("%s: %w", msg.Subject(), err))
			}
			return
		}
		fn(event)
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", cfg.StreamName, err)
	}
	defer cc.Stop()

	<-ctx.Done()
	return nil
}
