package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	// The service layer never returns it; handlers produce it from a nil result.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates an item with the same id already exists.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItem indicates a payload that violates item constraints as a whole
	// (for example a null for a non-nullable field).
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidItemDescription indicates the description violates domain constraints.
	ErrInvalidItemDescription = errors.New("invalid item description")

	// ErrInvalidItemPrice indicates a price that is not strictly positive.
	ErrInvalidItemPrice = errors.New("invalid item price")
)
