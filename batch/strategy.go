// Package batch implements strategies for deleting every key of a cache
// region from a remote store.
//
// Two strategies trade round-trips against store impact. Keys enumerates all
// matches with one blocking command and removes them with a single delete.
// Scan walks a server-side cursor and deletes fixed-size chunks, which keeps
// both memory use and per-command payload bounded.
package batch

import (
	"context"
	"fmt"
)

// Conn is the narrow command surface the strategies need from the store.
// The handle is borrowed from the caller and never closed here.
type Conn interface {
	// Keys enumerates every key matching pattern in one command.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Scan opens a resumable cursor over the keys matching opts.Match.
	Scan(ctx context.Context, opts ScanOptions) Cursor

	// Del removes the given keys and reports how many of them existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}

// ScanOptions filters a cursor. Count is an advisory page-size hint for the
// server, not a limit on results.
type ScanOptions struct {
	Match string
	Count int64
}

// Cursor walks a key space one key at a time. *redis.ScanIterator satisfies
// it.
type Cursor = Iterator[string]

// Strategy removes every key of a named cache region matching a pattern.
//
// Implementations are stateless and safe to share; each Clean call builds
// its own transient state. Deletion is not atomic across the region: when a
// command fails partway, earlier deletes stand and the call reports the
// error with no partial count. Store errors propagate unchanged, without
// retries.
type Strategy interface {
	// Clean deletes all keys matching pattern and returns how many were
	// removed. The name identifies the region in diagnostics only.
	Clean(ctx context.Context, conn Conn, name, pattern string) (int64, error)
}

// Keys returns a strategy that enumerates matches with a single KEYS command
// and removes them with one DEL. Two round-trips total, but KEYS holds the
// store's worker for time proportional to the whole key space and the DEL
// payload grows with the match count. Reserve it for small key spaces on
// non-clustered deployments.
func Keys() Strategy {
	return keysStrategy{}
}

type keysStrategy struct{}

func (keysStrategy) Clean(ctx context.Context, conn Conn, name, pattern string) (int64, error) {
	keys, err := conn.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		// an empty DEL is a protocol error on most deployments
		return 0, nil
	}

	if _, err := conn.Del(ctx, keys...); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Scan returns a strategy that walks a SCAN cursor and deletes chunks of at
// most batchSize keys. The batch size doubles as the cursor's page-size
// hint. It fails with ErrBatchSize when batchSize is not positive.
func Scan(batchSize int) (Strategy, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBatchSize, batchSize)
	}
	return scanStrategy{batchSize: batchSize}, nil
}

// MustScan is like Scan but panics on a non-positive batch size.
func MustScan(batchSize int) Strategy {
	s, err := Scan(batchSize)
	if err != nil {
		panic(err)
	}
	return s
}

type scanStrategy struct {
	batchSize int
}

func (s scanStrategy) Clean(ctx context.Context, conn Conn, name, pattern string) (int64, error) {
	cursor := conn.Scan(ctx, ScanOptions{Match: pattern, Count: int64(s.batchSize)})

	var count int64
	chunks := NewChunker(cursor, s.batchSize)
	for chunks.HasNext(ctx) {
		keys, err := chunks.Next(ctx)
		if err != nil {
			return 0, err
		}

		removed, err := conn.Del(ctx, keys...)
		if err != nil {
			return 0, err
		}
		count += removed
	}
	if err := chunks.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
