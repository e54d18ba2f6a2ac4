package kafka

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/coralpress/notifications/internal/application"
	"github.com/coralpress/notifications/internal/kafka/registry"

	// Blank import triggers init() in each handler file,
	// registering all event handlers into the registry.
	_ "github.com/coralpress/notifications/internal/kafka/handlers"
)

// Consumer wraps the franz-go Kafka client. It turns CMS events into
// notification rows via the handler registry.
type Consumer struct {
	client  *kgo.Client
	service *application.Service
}

// New creates a Consumer with the given brokers, group ID, and topics.
func New(brokers []string, groupID string, topics []string, svc *application.Service) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, service: svc}, nil
}

// Start begins polling Kafka and processing records. Blocks until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka consumer stopped")
}

// process dispatches a Kafka record through the registry and creates the
// resulting notification. Malformed or unhandled events are skipped; they
// must never take the consumer down.
func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	log.Debug().
		Str("topic", r.Topic).
		Str("key", string(r.Key)).
		Msg("processing kafka record")

	// notification-commands doesn't use eventType routing
	ev := registry.DispatchDirect(r.Topic, r.Value)
	if ev == nil {
		ev = registry.Dispatch(r.Topic, r.Value)
	}
	if ev == nil {
		log.Debug().Str("topic", r.Topic).Msg("no handler matched, skipping")
		return
	}

	if _, err := c.service.CreateFromEvent(ctx, *ev); err != nil {
		log.Error().Err(err).
			Str("topic", r.Topic).
			Str("source_event_id", ev.SourceEventID).
			Msg("failed to create notification from kafka event")
	}
}
