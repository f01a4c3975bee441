package regioncache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bert82503/regioncache/batch"
)

// unlockScript releases a lock key only when the caller still owns it.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Writer issues every store command on behalf of the regions sharing it.
// It speaks raw bytes; regions encode and decode around it. All methods
// are safe for concurrent use.
type Writer struct {
	cli   redis.UniversalClient
	conn  batch.Conn
	cfg   *config
	stats *statsCollector
}

// NewWriter builds a standalone writer. Managers build their own and
// hand it to every region they register.
func NewWriter(cli redis.UniversalClient, opts ...Option) *Writer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return newWriter(cli, cfg)
}

func newWriter(cli redis.UniversalClient, cfg *config) *Writer {
	return &Writer{
		cli:   cli,
		conn:  NewConn(cli),
		cfg:   cfg,
		stats: newStatsCollector(),
	}
}

// Get returns the entry stored under key, or nil when absent.
func (w *Writer) Get(ctx context.Context, name, key string) ([]byte, error) {
	if err := w.waitUnlocked(ctx, name); err != nil {
		return nil, err
	}

	data, err := w.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			w.stats.region(name).misses.Add(1)
			return nil, nil
		}
		return nil, err
	}

	w.stats.region(name).hits.Add(1)
	return data, nil
}

// GetMulti fetches keys in one pipeline. Absent keys come back as nil
// entries, index-aligned with keys.
func (w *Writer) GetMulti(ctx context.Context, name string, keys []string) ([][]byte, error) {
	ret := make([][]byte, len(keys))
	if len(keys) == 0 {
		return ret, nil
	}
	if err := w.waitUnlocked(ctx, name); err != nil {
		return nil, err
	}

	p := w.cli.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, p.Get(ctx, key))
	}
	if _, err := p.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		if w.cfg.logger != nil {
			w.cfg.logger.CtxError(ctx, "[cache-writer] get pipeline failed. name=%s,err=%v", name, err)
		}
		return nil, err
	}

	counters := w.stats.region(name)
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) && w.cfg.logger != nil {
				w.cfg.logger.CtxError(ctx, "[cache-writer] get failed. key=%s,err=%v", keys[i], err)
			}
			counters.misses.Add(1)
			continue
		}
		ret[i] = data
		counters.hits.Add(1)
	}
	return ret, nil
}

// Put stores value under key. A positive ttl bounds its lifetime.
func (w *Writer) Put(ctx context.Context, name, key string, value []byte, ttl time.Duration) error {
	if err := w.waitUnlocked(ctx, name); err != nil {
		return err
	}

	if err := w.cli.Set(ctx, key, value, ttl).Err(); err != nil {
		if w.cfg.logger != nil {
			w.cfg.logger.CtxError(ctx, "[cache-writer] put failed. key=%s,err=%v", key, err)
		}
		return err
	}

	w.stats.region(name).puts.Add(1)
	return nil
}

// PutMulti stores every entry in one pipeline under a shared ttl.
func (w *Writer) PutMulti(ctx context.Context, name string, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	if err := w.waitUnlocked(ctx, name); err != nil {
		return err
	}

	p := w.cli.Pipeline()
	for key, value := range entries {
		p.Set(ctx, key, value, ttl)
	}
	results, err := p.Exec(ctx)
	if err != nil {
		if w.cfg.logger != nil {
			w.cfg.logger.CtxError(ctx, "[cache-writer] put pipeline failed. name=%s,err=%v", name, err)
		}
		return err
	}
	for _, result := range results {
		if err = result.(*redis.StatusCmd).Err(); err != nil {
			if w.cfg.logger != nil {
				w.cfg.logger.CtxError(ctx, "[cache-writer] put result failed. err=%v", err)
			}
			return err
		}
	}

	w.stats.region(name).puts.Add(int64(len(entries)))
	return nil
}

// PutIfAbsent stores value under key only when the key is empty. It
// returns the pre-existing entry, or nil when the write happened. With
// locking enabled the check and the write run under the region lock.
func (w *Writer) PutIfAbsent(ctx context.Context, name, key string, value []byte, ttl time.Duration) ([]byte, error) {
	if w.cfg.locking {
		token, err := w.lock(ctx, name)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := w.unlock(ctx, name, token); err != nil && w.cfg.logger != nil {
				w.cfg.logger.CtxError(ctx, "[cache-writer] unlock failed. name=%s,err=%v", name, err)
			}
		}()
	}

	ok, err := w.cli.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		w.stats.region(name).puts.Add(1)
		return nil, nil
	}

	prior, err := w.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// the entry expired between SETNX and GET; report it absent
			return nil, nil
		}
		return nil, err
	}
	return prior, nil
}

// Remove deletes the given keys from the store.
func (w *Writer) Remove(ctx context.Context, name string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := w.waitUnlocked(ctx, name); err != nil {
		return err
	}

	removed, err := w.cli.Del(ctx, keys...).Result()
	if err != nil {
		if w.cfg.logger != nil {
			w.cfg.logger.CtxError(ctx, "[cache-writer] delete failed. keys=%v,err=%v", keys, err)
		}
		return err
	}

	w.stats.region(name).deletes.Add(removed)
	return nil
}

// Clean removes every key matching pattern using the configured batch
// strategy and reports how many entries the store dropped. With locking
// enabled the whole sweep runs under the region lock.
func (w *Writer) Clean(ctx context.Context, name, pattern string) (int64, error) {
	if w.cfg.locking {
		token, err := w.lock(ctx, name)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := w.unlock(ctx, name, token); err != nil && w.cfg.logger != nil {
				w.cfg.logger.CtxError(ctx, "[cache-writer] unlock failed. name=%s,err=%v", name, err)
			}
		}()
	}

	removed, err := w.cfg.strategy.Clean(ctx, w.conn, name, pattern)
	if err != nil {
		if w.cfg.logger != nil {
			w.cfg.logger.CtxError(ctx, "[cache-writer] clean failed. name=%s,pattern=%s,err=%v", name, pattern, err)
		}
		return 0, err
	}

	counters := w.stats.region(name)
	counters.cleans.Add(1)
	counters.cleanedKeys.Add(removed)
	if w.cfg.logger != nil {
		w.cfg.logger.CtxDebug(ctx, "[cache-writer] clean done. name=%s,pattern=%s,removed=%d", name, pattern, removed)
	}
	return removed, nil
}

// Stats snapshots the per-region counters.
func (w *Writer) Stats() map[string]Stats {
	return w.stats.snapshot()
}

// ResetStats zeroes every region counter.
func (w *Writer) ResetStats() {
	w.stats.reset()
}

// waitUnlocked blocks until no lock is held over name. Writers without
// locking enabled never hold the lock key, so they skip the check. Time
// spent waiting lands in the region's LockWait counter.
func (w *Writer) waitUnlocked(ctx context.Context, name string) error {
	if !w.cfg.locking {
		return nil
	}

	n, err := w.cli.Exists(ctx, lockKey(name)).Result()
	if err != nil || n == 0 {
		return err
	}

	start := time.Now()
	defer func() {
		w.stats.region(name).lockWaitNanos.Add(time.Since(start).Nanoseconds())
	}()
	for n > 0 {
		if err = w.wait(ctx); err != nil {
			return err
		}
		if n, err = w.cli.Exists(ctx, lockKey(name)).Result(); err != nil {
			return err
		}
	}
	return nil
}

// lock takes the region lock, polling until it opens. The returned token
// proves ownership to unlock.
func (w *Writer) lock(ctx context.Context, name string) (string, error) {
	token := uuid.New().String()
	for {
		ok, err := w.cli.SetNX(ctx, lockKey(name), token, w.cfg.lockTTL).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if err = w.wait(ctx); err != nil {
			return "", err
		}
	}
}

func (w *Writer) unlock(ctx context.Context, name, token string) error {
	return unlockScript.Run(ctx, w.cli, []string{lockKey(name)}, token).Err()
}

func (w *Writer) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.cfg.sleep):
		return nil
	}
}

func lockKey(name string) string {
	return name + "~lock"
}
