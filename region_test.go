package regioncache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bert82503/regioncache/codec"
	"github.com/bert82503/regioncache/nearcache"
)

type user struct {
	ID   int64
	Name string
}

func TestRegionPutGet(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))
	assert.True(t, s.Exists("users::1"))

	got, ok, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user{ID: 1, Name: "alice"}, got)
}

func TestRegionGetMiss(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")

	got, ok, err := region.Get(context.Background(), 404)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, user{}, got)
}

func TestRegionGetUndecodableEntryIsMiss(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")

	assert.NoError(t, s.Set("users::1", "not json"))

	_, ok, err := region.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRegionGetMulti(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	assert.NoError(t, region.PutMulti(ctx, map[int64]user{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}))

	got, err := region.GetMulti(ctx, []int64{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, map[int64]user{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}, got)
}

func TestRegionGetOrLoad(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	var calls int
	loader := func(ctx context.Context, id int64) (user, error) {
		calls++
		return user{ID: id, Name: "loaded"}, nil
	}

	got, err := region.GetOrLoad(ctx, 1, loader)
	assert.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "loaded"}, got)

	got, err = region.GetOrLoad(ctx, 1, loader)
	assert.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "loaded"}, got)
	assert.Equal(t, 1, calls)
}

func TestRegionGetOrLoadError(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")

	boom := errors.New("db down")
	_, err := region.GetOrLoad(context.Background(), 1, func(ctx context.Context, id int64) (user, error) {
		return user{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRegionPutIfAbsent(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	got, stored, err := region.PutIfAbsent(ctx, 1, user{ID: 1, Name: "first"})
	assert.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, "first", got.Name)

	got, stored, err = region.PutIfAbsent(ctx, 1, user{ID: 1, Name: "second"})
	assert.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, "first", got.Name)
}

func TestRegionEvict(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	assert.NoError(t, region.PutMulti(ctx, map[int64]user{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}))

	assert.NoError(t, region.EvictMulti(ctx, 1, 2))
	assert.False(t, s.Exists("users::1"))
	assert.False(t, s.Exists("users::2"))

	assert.NoError(t, region.Evict(ctx, 404))
}

func TestRegionClear(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	users := NewRegion[int64, user](m, "users")
	orders := NewRegion[int64, string](m, "orders")
	ctx := context.Background()

	assert.NoError(t, users.PutMulti(ctx, map[int64]user{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}))
	assert.NoError(t, orders.Put(ctx, 9, "pending"))

	removed, err := users.Clear(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	assert.False(t, s.Exists("users::1"))
	assert.False(t, s.Exists("users::2"))
	assert.True(t, s.Exists("orders::9"))
}

func TestRegionTTL(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli, WithTTL(time.Hour))
	region := NewRegion[int64, user](m, "users").SetTTL(time.Minute)
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))
	assert.Equal(t, time.Minute, s.TTL("users::1"))

	s.FastForward(2 * time.Minute)
	_, ok, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRegionNearCacheServesWithoutStore(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users").
		SetNearCache(nearcache.New[int64, user](time.Minute, 100))
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))
	s.Del("users::1")

	got, ok, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user{ID: 1, Name: "alice"}, got)

	assert.NoError(t, region.Evict(ctx, 1))
	_, ok, err = region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRegionNearCacheBackfillOnStoreHit(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))

	region.SetNearCache(nearcache.New[int64, user](time.Minute, 100))
	got, ok, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user{ID: 1, Name: "alice"}, got)

	// the read above backfilled the near tier
	s.Del("users::1")
	got, ok, err = region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user{ID: 1, Name: "alice"}, got)
}

func TestRegionClearPurgesNearOnFailure(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users").
		SetNearCache(nearcache.New[int64, user](time.Minute, 100))
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))

	s.Close()
	_, err := region.Clear(ctx)
	assert.Error(t, err)

	// the near tier must not keep serving entries the clear targeted
	_, ok, err := region.Get(ctx, 1)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRegionZstdCodec(t *testing.T) {
	s, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users").
		SetCodec(codec.NewZstd[user](&codec.JsonCodec[user]{}))
	ctx := context.Background()

	big := user{ID: 1, Name: strings.Repeat("a very long display name ", 100)}
	assert.NoError(t, region.Put(ctx, 1, big))

	raw, err := s.Get("users::1")
	assert.NoError(t, err)
	plain, err := (&codec.JsonCodec[user]{}).Marshal(big)
	assert.NoError(t, err)
	assert.Less(t, len(raw), len(plain))
	assert.True(t, strings.HasPrefix(raw, "\x28\xb5\x2f\xfd"))

	got, ok, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, big, got)
}

func TestRegionStats(t *testing.T) {
	_, cli := setupRedis(t)
	m := NewManager(cli)
	region := NewRegion[int64, user](m, "users")
	ctx := context.Background()

	assert.NoError(t, region.Put(ctx, 1, user{ID: 1, Name: "alice"}))
	_, _, err := region.Get(ctx, 1)
	assert.NoError(t, err)
	_, _, err = region.Get(ctx, 2)
	assert.NoError(t, err)

	stats := region.Stats()
	assert.Equal(t, int64(1), stats.Puts)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
