package regioncache

import (
	"context"
	"time"

	"github.com/bert82503/regioncache/codec"
	"github.com/bert82503/regioncache/nearcache"
)

// LoaderFunc computes the value for a key on a cache miss.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Region is a typed view over one named slice of the store. Every key it
// writes carries the region prefix, so region-wide operations can target
// them with a single pattern.
type Region[K comparable, V any] struct {
	manager *Manager
	name    string
	prefix  string
	ttl     time.Duration
	codec   codec.Codec[V]
	near    *nearcache.Cache[K, V]
	logger  Logger
}

// NewRegion registers a typed region with the manager. The region
// inherits the manager's TTL and logger and encodes values as JSON until
// configured otherwise.
func NewRegion[K comparable, V any](m *Manager, name string) *Region[K, V] {
	m.register(name)
	return &Region[K, V]{
		manager: m,
		name:    name,
		prefix:  m.prefixFn(name),
		ttl:     m.ttl,
		codec:   &codec.JsonCodec[V]{},
		logger:  m.logger,
	}
}

func (r *Region[K, V]) Name() string {
	return r.name
}

// SetTTL overrides the manager-wide entry lifetime for this region.
func (r *Region[K, V]) SetTTL(ttl time.Duration) *Region[K, V] {
	r.ttl = ttl
	return r
}

func (r *Region[K, V]) SetCodec(c codec.Codec[V]) *Region[K, V] {
	r.codec = c
	return r
}

func (r *Region[K, V]) SetLogger(logger Logger) *Region[K, V] {
	r.logger = logger
	return r
}

// SetNearCache keeps hot entries in process. Region-wide clears purge
// the near tier along with the store.
func (r *Region[K, V]) SetNearCache(near *nearcache.Cache[K, V]) *Region[K, V] {
	r.near = near
	r.manager.setPurge(r.name, near.Purge)
	return r
}

// Get returns the cached value for key. A miss returns the zero value
// and ok=false with a nil error.
func (r *Region[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if r.near != nil {
		if val, ok := r.near.Get(key); ok {
			r.manager.writer.stats.region(r.name).hits.Add(1)
			return val, true, nil
		}
	}

	data, err := r.manager.writer.Get(ctx, r.name, r.storeKey(key))
	if err != nil {
		return zero, false, err
	}
	if data == nil {
		return zero, false, nil
	}

	var val V
	if err = r.codec.Unmarshal(data, &val); err != nil {
		if r.logger != nil {
			r.logger.CtxError(ctx, "[region] unmarshal failed. name=%s,key=%s,err=%v", r.name, r.storeKey(key), err)
		}
		return zero, false, nil
	}

	if r.near != nil {
		r.near.Put(key, val)
	}
	return val, true, nil
}

// GetMulti returns the cached values for keys. Absent entries are simply
// missing from the result, as are entries the codec cannot decode.
func (r *Region[K, V]) GetMulti(ctx context.Context, keys []K) (map[K]V, error) {
	ret := make(map[K]V, len(keys))
	if len(keys) == 0 {
		return ret, nil
	}

	miss := keys
	if r.near != nil {
		miss = make([]K, 0, len(keys))
		for _, key := range keys {
			if val, ok := r.near.Get(key); ok {
				ret[key] = val
			} else {
				miss = append(miss, key)
			}
		}
		if len(ret) > 0 {
			r.manager.writer.stats.region(r.name).hits.Add(int64(len(ret)))
		}
		if len(miss) == 0 {
			return ret, nil
		}
	}

	storeKeys := make([]string, 0, len(miss))
	for _, key := range miss {
		storeKeys = append(storeKeys, r.storeKey(key))
	}

	rows, err := r.manager.writer.GetMulti(ctx, r.name, storeKeys)
	if err != nil {
		return nil, err
	}

	for i, data := range rows {
		if data == nil {
			continue
		}
		var val V
		if err = r.codec.Unmarshal(data, &val); err != nil {
			if r.logger != nil {
				r.logger.CtxError(ctx, "[region] unmarshal failed. name=%s,key=%s,err=%v", r.name, storeKeys[i], err)
			}
			continue
		}
		ret[miss[i]] = val
		if r.near != nil {
			r.near.Put(miss[i], val)
		}
	}
	return ret, nil
}

// GetOrLoad returns the cached value for key, calling load on a miss and
// caching its result. A failed cache write is logged and the loaded
// value still returned.
func (r *Region[K, V]) GetOrLoad(ctx context.Context, key K, load LoaderFunc[K, V]) (V, error) {
	val, ok, err := r.Get(ctx, key)
	if err != nil || ok {
		return val, err
	}

	val, err = load(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	if err = r.Put(ctx, key, val); err != nil && r.logger != nil {
		r.logger.CtxError(ctx, "[region] put after load failed. name=%s,err=%v", r.name, err)
	}
	return val, nil
}

// Put stores value under key for the region TTL.
func (r *Region[K, V]) Put(ctx context.Context, key K, value V) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if err = r.manager.writer.Put(ctx, r.name, r.storeKey(key), data, r.ttl); err != nil {
		return err
	}

	if r.near != nil {
		r.near.Put(key, value)
	}
	return nil
}

// PutMulti stores every entry in one pipeline.
func (r *Region[K, V]) PutMulti(ctx context.Context, entries map[K]V) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make(map[string][]byte, len(entries))
	for key, value := range entries {
		data, err := r.codec.Marshal(value)
		if err != nil {
			return err
		}
		rows[r.storeKey(key)] = data
	}
	if err := r.manager.writer.PutMulti(ctx, r.name, rows, r.ttl); err != nil {
		return err
	}

	if r.near != nil {
		for key, value := range entries {
			r.near.Put(key, value)
		}
	}
	return nil
}

// PutIfAbsent stores value only when key holds nothing. It reports
// whether the write happened and returns the winning value either way.
func (r *Region[K, V]) PutIfAbsent(ctx context.Context, key K, value V) (V, bool, error) {
	var zero V
	data, err := r.codec.Marshal(value)
	if err != nil {
		return zero, false, err
	}

	prior, err := r.manager.writer.PutIfAbsent(ctx, r.name, r.storeKey(key), data, r.ttl)
	if err != nil {
		return zero, false, err
	}
	if prior == nil {
		if r.near != nil {
			r.near.Put(key, value)
		}
		return value, true, nil
	}

	var existing V
	if err = r.codec.Unmarshal(prior, &existing); err != nil {
		return zero, false, err
	}
	return existing, false, nil
}

// Evict removes key from both tiers.
func (r *Region[K, V]) Evict(ctx context.Context, key K) error {
	return r.EvictMulti(ctx, key)
}

// EvictMulti removes the given keys from both tiers. The near tier drops
// them first so it cannot serve an entry the store already lost.
func (r *Region[K, V]) EvictMulti(ctx context.Context, keys ...K) error {
	if len(keys) == 0 {
		return nil
	}
	if r.near != nil {
		for _, key := range keys {
			r.near.Evict(key)
		}
	}

	storeKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		storeKeys = append(storeKeys, r.storeKey(key))
	}
	return r.manager.writer.Remove(ctx, r.name, storeKeys...)
}

// Clear drops every entry in the region and reports how many the store
// removed. The near tier is purged even when the store sweep fails, so
// it cannot keep serving entries the clear was meant to drop.
func (r *Region[K, V]) Clear(ctx context.Context) (int64, error) {
	if r.near != nil {
		defer r.near.Purge()
	}
	return r.manager.writer.Clean(ctx, r.name, r.pattern())
}

// Stats snapshots this region's counters.
func (r *Region[K, V]) Stats() Stats {
	return r.manager.writer.stats.region(r.name).snapshot()
}

func (r *Region[K, V]) storeKey(key K) string {
	return r.prefix + keyString(key)
}

func (r *Region[K, V]) pattern() string {
	return r.prefix + "*"
}
