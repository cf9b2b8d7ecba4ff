package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/moviedata/reception/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	LayerMemory = "memory"
	LayerRedis  = "redis"

	verdictKeyPrefix = "verdict:"
)

// CacheRecorder receives per-layer hit/miss observations.
type CacheRecorder interface {
	Hit(layer string)
	Miss(layer string)
	MemoryEntries(n int)
}

type VerdictCacheOptions struct {
	// TTL applies to Redis entries. Zero keeps them forever.
	TTL time.Duration
	// MemoryTTL applies to the in-process layer. Zero disables the layer.
	MemoryTTL time.Duration
	Recorder  CacheRecorder
	Clock     clockwork.Clock
}

// VerdictCache is a two-layer verdict cache: an in-process map in front of
// JSON values in Redis. rdb may be nil, in which case only the memory layer
// is used.
type VerdictCache struct {
	rdb      goredis.Cmdable
	ttl      time.Duration
	mem      *verdictMemory
	recorder CacheRecorder
	clock    clockwork.Clock
}

var _ domain.VerdictCache = (*VerdictCache)(nil)

func NewVerdictCache(rdb goredis.Cmdable, opts VerdictCacheOptions) *VerdictCache {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopCacheRecorder{}
	}
	c := &VerdictCache{
		rdb:      rdb,
		ttl:      opts.TTL,
		recorder: opts.Recorder,
		clock:    opts.Clock,
	}
	if opts.MemoryTTL > 0 {
		c.mem = newVerdictMemory(opts.MemoryTTL, opts.Clock)
	}
	return c
}

func (c *VerdictCache) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	if c.mem != nil {
		if v, ok := c.mem.get(key); ok {
			c.recorder.Hit(LayerMemory)
			return v, true, nil
		}
		c.recorder.Miss(LayerMemory)
	}

	if c.rdb == nil {
		return nil, false, nil
	}

	data, err := c.rdb.Get(ctx, verdictKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.recorder.Miss(LayerRedis)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached verdict: %w", err)
	}

	var v domain.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached verdict", "key", key, "error", err)
		c.recorder.Miss(LayerRedis)
		return nil, false, nil
	}

	c.recorder.Hit(LayerRedis)
	c.remember(key, v)
	return v, true, nil
}

func (c *VerdictCache) Set(ctx context.Context, key string, v domain.Verdict) error {
	c.remember(key, v)
	if c.rdb == nil {
		return nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	if err := c.rdb.Set(ctx, verdictKeyPrefix+key, encoded, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached verdict: %w", err)
	}
	return nil
}

func (c *VerdictCache) remember(key string, v domain.Verdict) {
	if c.mem == nil {
		return
	}
	c.mem.set(key, v)
	c.recorder.MemoryEntries(c.mem.size())
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory
// entries. Returns a stop function that should be deferred.
func (c *VerdictCache) StartEvictionTimer(interval time.Duration) func() {
	if c.mem == nil {
		return func() {}
	}

	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.mem.evictExpired(); evicted > 0 {
					remaining := c.mem.size()
					c.recorder.MemoryEntries(remaining)
					slog.Debug("Evicted expired verdict cache entries", "count", evicted, "remaining", remaining)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// verdictMemory is an in-memory L1 cache with TTL-based expiry.
type verdictMemory struct {
	mu      sync.RWMutex
	entries map[string]verdictEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type verdictEntry struct {
	verdict   domain.Verdict
	expiresAt time.Time
}

func newVerdictMemory(ttl time.Duration, clock clockwork.Clock) *verdictMemory {
	return &verdictMemory{
		entries: make(map[string]verdictEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (m *verdictMemory) get(key string) (domain.Verdict, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || m.clock.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.verdict, true
}

func (m *verdictMemory) set(key string, v domain.Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = verdictEntry{verdict: v, expiresAt: m.clock.Now().Add(m.ttl)}
}

func (m *verdictMemory) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *verdictMemory) evictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	evicted := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	return evicted
}

type noopCacheRecorder struct{}

func (noopCacheRecorder) Hit(string)        {}
func (noopCacheRecorder) Miss(string)       {}
func (noopCacheRecorder) MemoryEntries(int) {}
