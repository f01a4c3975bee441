package regioncache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager owns the shared writer and the registry of region names. It
// can clear and inspect regions by name without knowing their value
// types.
type Manager struct {
	cli      redis.UniversalClient
	writer   *Writer
	ttl      time.Duration
	prefixFn func(name string) string
	logger   Logger

	mu      sync.RWMutex
	regions map[string]*regionEntry
}

type regionEntry struct {
	prefix string
	purge  func()
}

func NewManager(cli redis.UniversalClient, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Manager{
		cli:      cli,
		writer:   newWriter(cli, cfg),
		ttl:      cfg.ttl,
		prefixFn: cfg.prefixFn,
		logger:   cfg.logger,
		regions:  make(map[string]*regionEntry),
	}
}

// Writer exposes the shared low-level writer.
func (m *Manager) Writer() *Writer {
	return m.writer
}

// Regions lists the registered region names in sorted order.
func (m *Manager) Regions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.regions))
	for name := range m.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes every store entry belonging to the named region and
// purges its near tier. It reports how many entries the store dropped,
// or ErrUnknownRegion when no region was registered under name.
func (m *Manager) Clear(ctx context.Context, name string) (int64, error) {
	e, ok := m.entry(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	if e.purge != nil {
		defer e.purge()
	}
	return m.writer.Clean(ctx, name, e.prefix+"*")
}

// ClearAll clears every registered region, stopping at the first
// failure. On success it reports the total entries dropped.
func (m *Manager) ClearAll(ctx context.Context) (int64, error) {
	var total int64
	for _, name := range m.Regions() {
		removed, err := m.Clear(ctx, name)
		if err != nil {
			return 0, err
		}
		total += removed
	}
	return total, nil
}

// Stats snapshots the per-region counters.
func (m *Manager) Stats() map[string]Stats {
	return m.writer.Stats()
}

func (m *Manager) register(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regions[name]; ok {
		return
	}
	m.regions[name] = &regionEntry{prefix: m.prefixFn(name)}
}

func (m *Manager) setPurge(name string, purge func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.regions[name]; ok {
		e.purge = purge
	}
}

func (m *Manager) entry(name string) (*regionEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.regions[name]
	return e, ok
}
