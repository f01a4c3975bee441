package regioncache

import (
	"time"

	"github.com/bert82503/regioncache/batch"
)

// defaultSleep is how long lock waiters pause between polls.
const defaultSleep = 50 * time.Millisecond

type config struct {
	strategy batch.Strategy
	ttl      time.Duration
	prefixFn func(name string) string
	logger   Logger
	locking  bool
	lockTTL  time.Duration
	sleep    time.Duration
}

func defaultConfig() *config {
	return &config{
		strategy: batch.Keys(),
		prefixFn: func(name string) string { return name + "::" },
		sleep:    defaultSleep,
	}
}

// Option customizes a Manager and the Writer it shares with its regions.
type Option func(*config)

// WithBatchStrategy selects how region-wide clears enumerate and delete
// store keys. The default is batch.Keys.
func WithBatchStrategy(s batch.Strategy) Option {
	return func(c *config) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithTTL sets the default lifetime of store entries. Regions may
// override it; zero keeps entries until removed.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithPrefix overrides how a region name maps to its store key prefix.
// The default layout is name + "::".
func WithPrefix(fn func(name string) string) Option {
	return func(c *config) {
		if fn != nil {
			c.prefixFn = fn
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLocking guards clears and conditional puts with a per-region store
// lock. Other writers sharing the lock key wait for it to open before
// they run.
func WithLocking() Option {
	return func(c *config) {
		c.locking = true
	}
}

// WithLockTTL bounds how long an orphaned lock key survives when its
// owner dies before releasing it. Zero keeps lock keys until released.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.lockTTL = ttl
	}
}

// WithSleep sets the pause between lock polls.
func WithSleep(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.sleep = d
		}
	}
}
