package batch

import "context"

// Iterator is a sequential source of elements in the shape go-redis scan
// iterators expose: Next advances and reports whether a value is available,
// Val returns that value, and Err surfaces whatever stopped the iteration.
type Iterator[T any] interface {
	Next(ctx context.Context) bool
	Val() T
	Err() error
}

// Chunker groups the elements of an Iterator into slices of at most size
// elements, preserving source order. It consumes the source in a single
// forward pass and buffers one element of lookahead, so memory stays bounded
// by one chunk no matter how long the source is. A second pass needs a fresh
// source.
type Chunker[T any] struct {
	src    Iterator[T]
	size   int
	head   T
	peeked bool
	done   bool
}

// NewChunker wraps src into chunks of at most size elements. The size must
// be positive; Scan validates it before building one.
func NewChunker[T any](src Iterator[T], size int) *Chunker[T] {
	return &Chunker[T]{src: src, size: size}
}

// HasNext reports whether the source holds at least one more element.
func (c *Chunker[T]) HasNext(ctx context.Context) bool {
	if c.peeked {
		return true
	}
	if c.done {
		return false
	}
	if !c.src.Next(ctx) {
		c.done = true
		return false
	}
	c.head = c.src.Val()
	c.peeked = true
	return true
}

// Next returns the next chunk: up to size elements in source order, fewer
// only when the source runs out mid-chunk. Calling Next after HasNext
// reported false fails with ErrExhausted.
func (c *Chunker[T]) Next(ctx context.Context) ([]T, error) {
	if !c.HasNext(ctx) {
		return nil, ErrExhausted
	}

	chunk := make([]T, 0, c.size)
	for len(chunk) < c.size && c.HasNext(ctx) {
		chunk = append(chunk, c.head)
		c.peeked = false
	}
	return chunk, nil
}

// Err returns the error that stopped the underlying source, if any.
func (c *Chunker[T]) Err() error {
	return c.src.Err()
}
