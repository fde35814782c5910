package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is the core aggregate for this bounded context.
// ID is the public lookup key; storage-internal keys never reach this type.
type Item struct {
	ID          uuid.UUID
	Name        ItemName
	Description *Description // nil when cleared
	Price       Price
	Available   bool
	CreatedAt   time.Time
}

// NewItem constructs a valid Item aggregate with generated ID and current timestamp.
func NewItem(name ItemName, description *Description, price Price, available bool) *Item {
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		Available:   available,
		CreatedAt:   time.Now().UTC(),
	}
}

// DescriptionString returns the description and whether it is set.
func (i *Item) DescriptionString() (string, bool) {
	if i.Description == nil {
		return "", false
	}
	return i.Description.String(), true
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	if i.Description != nil {
		d := *i.Description
		c.Description = &d
	}
	return &c
}
