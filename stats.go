package regioncache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of one region's counters.
type Stats struct {
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Puts        int64         `json:"puts"`
	Deletes     int64         `json:"deletes"`
	Cleans      int64         `json:"cleans"`
	CleanedKeys int64         `json:"cleaned_keys"`
	LockWait    time.Duration `json:"lock_wait"`
}

type regionCounters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	puts          atomic.Int64
	deletes       atomic.Int64
	cleans        atomic.Int64
	cleanedKeys   atomic.Int64
	lockWaitNanos atomic.Int64
}

func (c *regionCounters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Puts:        c.puts.Load(),
		Deletes:     c.deletes.Load(),
		Cleans:      c.cleans.Load(),
		CleanedKeys: c.cleanedKeys.Load(),
		LockWait:    time.Duration(c.lockWaitNanos.Load()),
	}
}

// statsCollector keys counters by region name. Counter updates stay on
// the atomic fast path; the lock only guards the map itself.
type statsCollector struct {
	mu      sync.RWMutex
	regions map[string]*regionCounters
}

func newStatsCollector() *statsCollector {
	return &statsCollector{regions: make(map[string]*regionCounters)}
}

func (s *statsCollector) region(name string) *regionCounters {
	s.mu.RLock()
	c, ok := s.regions[name]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.regions[name]; ok {
		return c
	}
	c = &regionCounters{}
	s.regions[name] = c
	return c
}

func (s *statsCollector) snapshot() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make(map[string]Stats, len(s.regions))
	for name, c := range s.regions {
		ret[name] = c.snapshot()
	}
	return ret
}

func (s *statsCollector) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = make(map[string]*regionCounters)
}
