// Package fallback provides a combinator which runs an ordered list of attempts
// and returns the result of the first one that succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when no attempt succeeded.
var ErrAllFailed = errors.New("all attempts failed")

// Attempt is a named step in a fallback chain.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Step returns a new Attempt.
func Step[T any](name string, run func(ctx context.Context) (T, error)) Attempt[T] {
	return Attempt[T]{Name: name, Run: run}
}

// First runs the attempts in order and returns the value and name of the first successful one.
//
// A panicking attempt counts as failed.
// When all attempts fail the returned error wraps [ErrAllFailed] and the errors of all attempts.
// First stops early when ctx is done.
func First[T any](ctx context.Context, attempts ...Attempt[T]) (T, string, error) {
	var zero T
	errs := []error{ErrAllFailed}
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		v, err := run(ctx, a)
		if err == nil {
			slog.Debug("fallback: attempt succeeded", "attempt", a.Name)
			return v, a.Name, nil
		}
		slog.Info("fallback: attempt failed", "attempt", a.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}
	return zero, "", errors.Join(errs...)
}

func run[T any](ctx context.Context, a Attempt[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Run(ctx)
}
