package models

import (
	"encoding/json"
)

// Optional is a JSON field that distinguishes an absent key, an explicit
// null and a value. Decoding only calls UnmarshalJSON for keys present in
// the document, so the zero Optional means "absent".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// HasValue reports whether the key was present with a non-null value.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns the value as a pointer, nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

// Apply overwrites *dst when the key was present, including with null.
func (o Optional[T]) Apply(dst **T) {
	if o.Set {
		*dst = o.Ptr()
	}
}
