package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the postgres item repository inside the
// same transaction as the write that caused them.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// TopicItemPoison collects item events whose consumer kept failing.
const TopicItemPoison = "item.poison"

// Topics lists every item lifecycle topic, for subscribers that consume them all.
var Topics = []string{TopicItemCreated, TopicItemUpdated, TopicItemDeleted}

// ItemCreatedEvent is published after a new Item is persisted.
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     uuid.UUID `json:"item_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Available  bool      `json:"available"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemUpdatedEvent is published after a partial update. Fields names the
// attributes the patch touched.
type ItemUpdatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	Fields     []string  `json:"fields"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published after a hard delete.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
