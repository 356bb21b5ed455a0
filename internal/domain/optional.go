package domain

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional holds a value that may be absent. A JSON null decodes as absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present
func (o Optional[T]) IsSet() bool { return o.set }

// IsZero lets encoding/json omit absent values with the omitzero option
func (o Optional[T]) IsZero() bool { return !o.set }

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return jsonNull, nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Nullable distinguishes three states: absent (leave unchanged), explicit
// null (clear) and a value.
type Nullable[T any] struct {
	value T
	set   bool
	null  bool
}

// Value returns a Nullable holding v
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, set: true}
}

// Null returns an explicitly null Nullable
func Null[T any]() Nullable[T] {
	return Nullable[T]{set: true, null: true}
}

// IsSet reports whether the field was provided, as a value or as null
func (n Nullable[T]) IsSet() bool { return n.set }

// IsNull reports whether the field was provided as an explicit null
func (n Nullable[T]) IsNull() bool { return n.set && n.null }

// Get returns the value and whether a non-null value is present
func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.set && !n.null
}

// Ptr returns a pointer to a copy of the value, or nil when absent or null
func (n Nullable[T]) Ptr() *T {
	if !n.set || n.null {
		return nil
	}
	v := n.value
	return &v
}

func (n Nullable[T]) IsZero() bool { return !n.set }

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.set || n.null {
		return jsonNull, nil
	}
	return json.Marshal(n.value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*n = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Value(v)
	return nil
}
