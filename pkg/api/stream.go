package api

import (
	"context"

	json "github.com/goccy/go-json"
)

// rawIterator is the shape shared by the client's page and cursor iterators.
type rawIterator interface {
	Next(context.Context) bool
	Item() json.RawMessage
	Err() error
}

// Stream decodes a raw paginated sequence into typed values, lazily and
// single-pass.
type Stream[T any] struct {
	raw  rawIterator
	item T
	err  error
}

func newStream[T any](raw rawIterator) *Stream[T] {
	return &Stream[T]{raw: raw}
}

// Next advances to the next value. It returns false at the end of the
// sequence or on error; check Err afterwards.
func (s *Stream[T]) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}

	if !s.raw.Next(ctx) {
		s.err = s.raw.Err()
		return false
	}

	var item T
	err := json.Unmarshal(s.raw.Item(), &item)
	if err != nil {
		s.err = err
		return false
	}

	s.item = item
	return true
}

// Item returns the current value.
func (s *Stream[T]) Item() T { return s.item }

// Err returns the first error encountered while streaming.
func (s *Stream[T]) Err() error { return s.err }

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for s.Next(ctx) {
		items = append(items, s.Item())
	}
	if s.Err() != nil {
		return nil, s.Err()
	}
	return items, nil
}
