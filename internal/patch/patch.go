// Package patch models request fields for partial updates, where an
// absent field, an explicit null and a value all mean different things.
package patch

import (
	"encoding/json"
	"errors"
	"reflect"
)

// Field is one optional request field. Set is false when the key was
// absent; Null is true when it was sent as JSON null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	err := json.Unmarshal(b, &f.Value)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		// Custom decoders (decimal) report bad input with their own error
		// type; normalise it so the decoder names the field.
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(f.Value)}
	}
	return err
}

// Present reports whether the field carries a non-null value.
func (f Field[T]) Present() bool { return f.Set && !f.Null }

// Ptr returns the value, or nil for absent and null fields.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

// Of builds a set, non-null field.
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Null builds an explicit null.
func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }
