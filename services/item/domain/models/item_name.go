package models

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// Field bounds shared by request validation tags and the value constructors below.
// Keep the validator tags in handlers/dto.go in sync with these.
const (
	MinNameLength        = 1
	MaxNameLength        = 128
	MinDescriptionLength = 1
	MaxDescriptionLength = 256
)

// ItemName is a value object representing a valid item name.
// Encapsulates validation rules: 1 <= runes <= 128, not blank, no control characters.
type ItemName string

// NewItemName constructs a valid ItemName or returns an error wrapping ErrInvalidItemName.
func NewItemName(s string) (ItemName, error) {
	n := utf8.RuneCountInString(s)
	if n < MinNameLength {
		return "", fmt.Errorf("%w: must be at least %d character", itemdomain.ErrInvalidItemName, MinNameLength)
	}
	if n > MaxNameLength {
		return "", fmt.Errorf("%w: must not exceed %d characters", itemdomain.ErrInvalidItemName, MaxNameLength)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: must not be only whitespace", itemdomain.ErrInvalidItemName)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: must not contain control characters", itemdomain.ErrInvalidItemName)
		}
	}
	return ItemName(s), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}

// Description is a bounded free-text item description.
type Description string

// NewDescription constructs a valid Description or returns an error wrapping
// ErrInvalidItemDescription.
func NewDescription(s string) (Description, error) {
	n := utf8.RuneCountInString(s)
	if n < MinDescriptionLength {
		return "", fmt.Errorf("%w: must be at least %d character", itemdomain.ErrInvalidItemDescription, MinDescriptionLength)
	}
	if n > MaxDescriptionLength {
		return "", fmt.Errorf("%w: must not exceed %d characters", itemdomain.ErrInvalidItemDescription, MaxDescriptionLength)
	}
	return Description(s), nil
}

// String returns the underlying string value.
func (d Description) String() string {
	return string(d)
}

// Price is a strictly positive amount.
type Price float64

// NewPrice rejects zero, negative, NaN and infinite amounts.
func NewPrice(f float64) (Price, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: must be a finite number", itemdomain.ErrInvalidItemPrice)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: must be greater than 0", itemdomain.ErrInvalidItemPrice)
	}
	return Price(f), nil
}

// Float64 returns the underlying amount.
func (p Price) Float64() float64 {
	return float64(p)
}
