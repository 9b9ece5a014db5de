// Package optional provides a type safe optional value.
package optional

import "fmt"

// Optional holds a value or nothing.
//
// The zero value is an empty Optional.
type Optional[T any] struct {
	value     T
	isPresent bool
}

// From returns an Optional holding v.
func From[T any](v T) Optional[T] {
	return Optional[T]{value: v, isPresent: true}
}

// Empty returns an empty Optional.
func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

// IsEmpty reports whether o holds no value.
func (o Optional[T]) IsEmpty() bool {
	return !o.isPresent
}

// Value returns the value and reports whether it was present.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.isPresent
}

// ValueOrZero returns the value or the zero value of T.
func (o Optional[T]) ValueOrZero() T {
	if o.IsEmpty() {
		var z T
		return z
	}
	return o.value
}

// ValueOrFallback returns the value or fallback when empty.
func (o Optional[T]) ValueOrFallback(fallback T) T {
	if o.IsEmpty() {
		return fallback
	}
	return o.value
}

func (o Optional[T]) String() string {
	if o.IsEmpty() {
		return "<empty>"
	}
	return fmt.Sprint(o.value)
}
