// Package stream provides lazy, single-pass sequence combinators. A Seq
// produces elements only as the consumer pulls them, so transformations and
// chunking compose without ever materializing the full result set. The store
// adapter yields its query results as a Seq straight off the database cursor,
// and the render gateway consumes one while the HTTP response is already
// being flushed.
package stream

import (
	"context"
	"iter"
	"time"
)

// Seq is a lazy sequence of elements. The error position carries a producer
// failure; once a non-nil error is yielded the sequence is exhausted. A Seq
// may only be ranged over once.
type Seq[T any] = iter.Seq2[T, error]

// Of returns a sequence over the given items.
func Of[T any](items ...T) Seq[T] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Fail returns a sequence that immediately yields err.
func Fail[T any](err error) Seq[T] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Map applies fn to each element as it is pulled. Order is preserved and
// errors from the source pass through untouched.
func Map[T, U any](s Seq[T], fn func(T) U) Seq[U] {
	return func(yield func(U, error) bool) {
		var zero U
		for item, err := range s {
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(fn(item), nil) {
				return
			}
		}
	}
}

// Delay pauses for d before yielding each element. The pause is interrupted
// by ctx, in which case the sequence ends with ctx.Err() and no further
// elements are pulled from the source.
func Delay[T any](ctx context.Context, s Seq[T], d time.Duration) Seq[T] {
	if d <= 0 {
		return s
	}
	return func(yield func(T, error) bool) {
		var zero T
		timer := time.NewTimer(d)
		defer timer.Stop()
		for item, err := range s {
			if err != nil {
				yield(zero, err)
				return
			}
			select {
			case <-timer.C:
			case <-ctx.Done():
				yield(zero, ctx.Err())
				return
			}
			if !yield(item, nil) {
				return
			}
			timer.Reset(d)
		}
	}
}

// Chunks batches the sequence into slices of at most size elements. Every
// chunk except possibly the last has exactly size elements, and elements keep
// their original order. size <= 0 batches the whole sequence into one chunk.
func Chunks[T any](s Seq[T], size int) Seq[[]T] {
	return func(yield func([]T, error) bool) {
		var chunk []T
		for item, err := range s {
			if err != nil {
				yield(nil, err)
				return
			}
			chunk = append(chunk, item)
			if size > 0 && len(chunk) == size {
				if !yield(chunk, nil) {
					return
				}
				chunk = nil
			}
		}
		if len(chunk) > 0 {
			yield(chunk, nil)
		}
	}
}

// Collect drains the sequence into a slice, returning the first producer
// error encountered.
func Collect[T any](s Seq[T]) ([]T, error) {
	var out []T
	for item, err := range s {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
