package batch

import "errors"

var (
	// ErrBatchSize reports a non-positive batch size passed to Scan.
	ErrBatchSize = errors.New("batch: size must be greater than zero")

	// ErrExhausted reports a Next call on a chunker whose source already
	// ran out. Callers are expected to guard Next with HasNext.
	ErrExhausted = errors.New("batch: no more chunks")
)
