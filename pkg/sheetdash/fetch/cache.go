package fetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

const (
	// DefaultTTL is how long a parsed result stays fresh.
	DefaultTTL = 10 * time.Minute
	// DefaultSweepInterval is how often Run removes expired entries.
	DefaultSweepInterval = time.Minute
)

// Key identifies one cached result.
type Key struct {
	URL  string
	Kind parser.Kind
}

func (k Key) String() string {
	return string(k.Kind) + "|" + k.URL
}

// LoadFunc fetches and parses one key.
type LoadFunc func(ctx context.Context, key Key) (models.Result, error)

// Clock returns the current time.
type Clock func() time.Time

type entry struct {
	result    models.Result
	createdAt time.Time
}

// flight tracks the callers waiting on a key's load. cancel belongs to the
// load registered under gen.
type flight struct {
	refs   int
	cancel context.CancelFunc
	gen    uint64
}

// Stats reports cache statistics.
type Stats struct {
	Entries  int   `json:"entries"`
	InFlight int   `json:"in_flight"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Loads    int64 `json:"loads"`
	Failures int64 `json:"failures"`
}

// Cache keeps parsed results for a TTL and runs at most one load per key at
// a time. Concurrent callers share the load and its outcome; failures are
// not cached. A load is cancelled only once every caller waiting on it has
// given up.
type Cache struct {
	load          LoadFunc
	ttl           time.Duration
	sweepInterval time.Duration
	now           Clock
	logger        *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[Key]entry
	flights map[Key]*flight
	gen     uint64

	hits     atomic.Int64
	misses   atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the freshness window.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

// WithSweepInterval sets how often Run removes expired entries.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) { c.sweepInterval = d }
}

// WithClock sets the time source.
func WithClock(now Clock) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates a Cache that loads misses with load.
func NewCache(load LoadFunc, opts ...Option) *Cache {
	c := &Cache{
		load:          load,
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		logger:        slog.Default(),
		entries:       make(map[Key]entry),
		flights:       make(map[Key]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the fresh result for key, or joins or starts its load. When
// ctx ends first, Get returns ctx.Err() and the load keeps running for the
// remaining callers.
func (c *Cache) Get(ctx context.Context, key Key) (models.Result, error) {
	c.mu.Lock()
	if result, ok := c.lookupLocked(key); ok {
		c.mu.Unlock()
		return result, nil
	}
	fl, ok := c.flights[key]
	if !ok {
		fl = &flight{}
		c.flights[key] = fl
	}
	fl.refs++
	c.mu.Unlock()

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.run(context.WithoutCancel(ctx), key, fl)
	})

	select {
	case res := <-ch:
		c.release(key, fl)
		if res.Err != nil {
			return nil, res.Err
		}
		result, _ := res.Val.(models.Result)
		return result, nil
	case <-ctx.Done():
		c.release(key, fl)
		c.logger.Debug("caller stopped waiting", "key", key.String(), "err", ctx.Err())
		return nil, ctx.Err()
	}
}

// lookupLocked returns a fresh entry and drops an expired one.
func (c *Cache) lookupLocked(key Key) (models.Result, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		RecordLookup("miss")
		return nil, false
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		delete(c.entries, key)
		Entries.Set(float64(len(c.entries)))
		c.misses.Add(1)
		RecordLookup("expired")
		return nil, false
	}
	c.hits.Add(1)
	RecordLookup("hit")
	return e.result, true
}

// run is the shared load. It detaches from the starting caller's
// cancellation and registers its own cancel on the flight instead.
func (c *Cache) run(parent context.Context, key Key, fl *flight) (interface{}, error) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if fl.refs == 0 {
		cancel()
	} else {
		fl.cancel, fl.gen = cancel, gen
	}
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		if fl.gen == gen {
			fl.cancel = nil
		}
		c.mu.Unlock()
	}()

	// A load that finished just before this one was started already
	// stored the result.
	if result, ok := c.Peek(key); ok {
		return result, nil
	}

	c.loads.Add(1)
	start := c.now()
	result, err := c.load(ctx, key)
	elapsed := c.now().Sub(start).Seconds()
	if err != nil {
		c.failures.Add(1)
		RecordLoad(string(key.Kind), "error", elapsed)
		c.logger.Warn("load failed", "url", key.URL, "kind", string(key.Kind), "err", err)
		return nil, err
	}

	RecordLoad(string(key.Kind), "ok", elapsed)
	c.Set(key, result)
	return result, nil
}

// release drops one waiter. The last waiter out cancels a running load and
// forgets it so the next Get starts afresh.
func (c *Cache) release(key Key, fl *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fl.refs--
	if fl.refs > 0 {
		return
	}
	if fl.cancel != nil {
		fl.cancel()
		fl.cancel = nil
	}
	if c.flights[key] == fl {
		delete(c.flights, key)
		c.group.Forget(key.String())
	}
}

// Set stores a result as fresh.
func (c *Cache) Set(key Key, result models.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{result: result, createdAt: c.now()}
	Entries.Set(float64(len(c.entries)))
}

// Peek returns the fresh result for key without loading it.
func (c *Cache) Peek(key Key) (models.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.createdAt) >= c.ttl {
		return nil, false
	}
	return e.result, true
}

// Invalidate removes key and reports whether it was stored.
func (c *Cache) Invalidate(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	Entries.Set(float64(len(c.entries)))
	return ok
}

// InvalidateURL removes every kind cached for rawURL and returns how many
// entries were dropped.
func (c *Cache) InvalidateURL(rawURL string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if key.URL == rawURL {
			delete(c.entries, key)
			n++
		}
	}
	Entries.Set(float64(len(c.entries)))
	return n
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
	Entries.Set(0)
}

// Len returns the number of stored entries, fresh or not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// InFlight reports whether callers are waiting on a load of key.
func (c *Cache) InFlight(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.flights[key]
	return ok
}

// Now returns the current time of the cache clock.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Fresh reports whether a time taken from Now is still inside the TTL.
func (c *Cache) Fresh(at time.Time) bool {
	return c.now().Sub(at) < c.ttl
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries, inFlight := len(c.entries), len(c.flights)
	c.mu.Unlock()
	return Stats{
		Entries:  entries,
		InFlight: inFlight,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Failures: c.failures.Load(),
	}
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for key, e := range c.entries {
		if now.Sub(e.createdAt) >= c.ttl {
			delete(c.entries, key)
			n++
		}
	}
	Entries.Set(float64(len(c.entries)))
	return n
}

// Run sweeps expired entries every sweep interval until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("swept expired entries", "count", n)
			}
		}
	}
}
