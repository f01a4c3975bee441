// Package regioncache manages named cache regions backed by a shared
// remote store. Each region owns a key prefix, a value codec and an
// optional in-process near cache, while region-wide clears run through a
// pluggable batch eviction strategy.
package regioncache
