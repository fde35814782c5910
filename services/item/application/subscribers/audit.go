// Package subscribers consumes item lifecycle events published by the
// PostgreSQL store.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/itemstore/pkg/logger"
	itemEvents "github.com/ghuser/itemstore/services/item/domain/events"
)

// Audit writes one structured log line per item event and counts events by topic.
type Audit struct {
	log      logger.Logger
	consumed metric.Int64Counter
}

func NewAudit(log logger.Logger) *Audit {
	consumed, err := otel.Meter("github.com/ghuser/itemstore/services/item/subscribers").
		Int64Counter("items.events.consumed", metric.WithDescription("Item events consumed by topic"))
	if err != nil {
		otel.Handle(err)
	}
	return &Audit{log: log, consumed: consumed}
}

// Handler returns the message handler for topic. Handlers must be idempotent;
// the bus retries failures. A payload that cannot be decoded is an error.
func (a *Audit) Handler(topic string) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		args, err := decode(topic, msg.Payload)
		if err != nil {
			return err
		}
		a.log.InfoContext(ctx, "item event", append([]any{"topic", topic, "message_id", msg.UUID}, args...)...)
		if a.consumed != nil {
			a.consumed.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
		}
		return nil
	}
}

func decode(topic string, payload []byte) ([]any, error) {
	switch topic {
	case itemEvents.TopicItemCreated:
		var evt itemEvents.ItemCreatedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		return []any{"item_id", evt.ItemID, "event_id", evt.EventID, "name", evt.Name, "price", evt.Price}, nil
	case itemEvents.TopicItemUpdated:
		var evt itemEvents.ItemUpdatedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		return []any{"item_id", evt.ItemID, "event_id", evt.EventID, "fields", evt.Fields}, nil
	case itemEvents.TopicItemDeleted:
		var evt itemEvents.ItemDeletedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		return []any{"item_id", evt.ItemID, "event_id", evt.EventID}, nil
	default:
		return nil, fmt.Errorf("unknown item topic %q", topic)
	}
}
