// Package optional provides a tri-state field wrapper for partial-update payloads.
//
// A Value is in one of three states:
//   - absent: the field was not sent (zero Value)
//   - null:   the field was sent as JSON null
//   - set:    the field was sent with a concrete value
//
// Absent and null must stay distinguishable so "not sent" never means "cleared".
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value wraps a T with presence and null markers.
type Value[T any] struct {
	value   T
	present bool
	null    bool
}

// Of returns a set Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, present: true}
}

// Null returns a Value that was explicitly sent as null.
func Null[T any]() Value[T] {
	return Value[T]{present: true, null: true}
}

// IsPresent reports whether the field was sent at all (set or null).
func (v Value[T]) IsPresent() bool { return v.present }

// IsNull reports whether the field was sent as null.
func (v Value[T]) IsNull() bool { return v.present && v.null }

// IsSet reports whether the field carries a concrete value.
func (v Value[T]) IsSet() bool { return v.present && !v.null }

// Get returns the value and whether it is set.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.IsSet()
}

// Validatable returns the inner value for validator custom type funcs, or nil
// when there is nothing to validate (absent or null).
func (v Value[T]) Validatable() any {
	if !v.IsSet() {
		return nil
	}
	return v.value
}

// UnmarshalJSON marks the field present. encoding/json only calls it for keys
// that appear in the payload, so absent fields keep the zero Value.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.null = true
		var zero T
		v.value = zero
		return nil
	}
	v.null = false
	if err := json.Unmarshal(data, &v.value); err != nil {
		return fmt.Errorf("optional: %w", err)
	}
	return nil
}

// MarshalJSON renders set values as themselves and anything else as null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// Map converts a Value[T] into a Value[U], preserving absent and null.
func Map[T, U any](v Value[T], fn func(T) (U, error)) (Value[U], error) {
	switch {
	case !v.present:
		return Value[U]{}, nil
	case v.null:
		return Null[U](), nil
	}
	u, err := fn(v.value)
	if err != nil {
		return Value[U]{}, err
	}
	return Of(u), nil
}
