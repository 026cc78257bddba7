package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Status of a cache entry.
type Status int

const (
	StatusAbsent Status = iota
	StatusFresh
	StatusStale
	StatusFetching
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusFetching:
		return "fetching"
	case StatusError:
		return "error"
	default:
		return "absent"
	}
}

// Fetcher loads a resource from the remote API.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// Update is delivered to subscribers whenever an entry's value (or error
// state) changes.
type Update struct {
	Key   string
	Value json.RawMessage
	Err   error
}

// Options configure a QueryCache.
type Options struct {
	// StalenessWindow is how long a fetched value counts as fresh.
	StalenessWindow time.Duration
	// SizeBytes bounds the payload byte store.
	SizeBytes int
	// EvictionEnabled drops entries with no subscribers after EvictionGrace.
	// Off by default: data volumes here are small enough that unbounded
	// metadata retention is acceptable.
	EvictionEnabled bool
	EvictionGrace   time.Duration
}

const (
	defaultStaleness = 5 * time.Minute
	defaultSize      = 10 * 1024 * 1024
)

// QueryCache is the process-wide keyed store of fetched resources. All views
// read through it; mutations write to it only indirectly, via Invalidate and
// the refetch it triggers. Payload bytes live in freecache; per-entry metadata
// (status, freshness, request sequence, subscribers) in a mutex-guarded map.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	store   *freecache.Cache
	flight  singleflight.Group
	seq     atomic.Uint64

	staleness       time.Duration
	evictionEnabled bool
	evictionGrace   time.Duration

	// NowFunc is the clock, replaceable in tests.
	NowFunc func() time.Time
}

type entry struct {
	key        string
	paramsHash string
	status     Status
	fetchedAt  time.Time
	storedSeq  uint64
	hasValue   bool
	lastErr    error
	fetcher    Fetcher

	subscribers map[int]chan Update
	nextSubID   int
	evictTimer  *time.Timer
}

func New(opts Options) *QueryCache {
	if opts.StalenessWindow <= 0 {
		opts.StalenessWindow = defaultStaleness
	}
	if opts.SizeBytes <= 0 {
		opts.SizeBytes = defaultSize
	}
	return &QueryCache{
		entries:         make(map[string]*entry),
		store:           freecache.NewCache(opts.SizeBytes),
		staleness:       opts.StalenessWindow,
		evictionEnabled: opts.EvictionEnabled,
		evictionGrace:   opts.EvictionGrace,
		NowFunc:         time.Now,
	}
}

func entryKey(key, paramsHash string) string {
	if paramsHash == "" {
		return key
	}
	return key + "::" + paramsHash
}

// Fetch returns the cached value for key+paramsHash if fresh; otherwise it
// runs fetcher, deduplicated so that concurrent callers for the same entry
// share one underlying call and its result. A failed fetch is retried exactly
// once; after that the entry is marked error and the previous value (if any)
// is returned alongside the error so callers can degrade to last-known data.
func (c *QueryCache) Fetch(ctx context.Context, key, paramsHash string, fetcher Fetcher) (json.RawMessage, error) {
	ek := entryKey(key, paramsHash)

	c.mu.Lock()
	e := c.ensureEntryLocked(key, paramsHash)
	e.fetcher = fetcher
	if e.hasValue && e.status == StatusFresh && c.NowFunc().Sub(e.fetchedAt) < c.staleness {
		if value, err := c.store.Get([]byte(ek)); err == nil {
			c.mu.Unlock()
			log.Tracef("cache: %s served fresh", ek)
			return value, nil
		}
		// payload evicted under memory pressure, treat as a miss
		e.hasValue = false
		e.status = StatusStale
	}
	if e.status != StatusError {
		e.status = StatusFetching
	}
	c.mu.Unlock()

	result, err, _ := c.flight.Do(ek, func() (any, error) {
		return c.runFetch(ctx, ek, fetcher), nil
	})
	if err != nil {
		// singleflight itself never fails here; runFetch reports via Update
		return nil, err
	}

	update := result.(Update)
	return update.Value, update.Err
}

// runFetch performs the network load (with the single automatic retry) and
// stores the outcome. Returns the Update shared by all deduplicated callers.
func (c *QueryCache) runFetch(ctx context.Context, ek string, fetcher Fetcher) Update {
	seq := c.seq.Add(1)

	value, err := fetcher(ctx)
	if err != nil {
		log.Debugf("cache: %s fetch failed, retrying once: %s", ek, err)
		value, err = fetcher(ctx)
	}

	return c.storeResult(ek, seq, value, err)
}

// storeResult applies a resolved fetch, enforcing last-response-wins by
// request sequence number: an older response never clobbers a newer one.
func (c *QueryCache) storeResult(ek string, seq uint64, value json.RawMessage, fetchErr error) Update {
	c.mu.Lock()

	e, ok := c.entries[ek]
	if !ok {
		// entry evicted while the request was in flight; drop silently
		c.mu.Unlock()
		return Update{Key: ek, Value: value, Err: fetchErr}
	}

	if seq < e.storedSeq {
		log.Tracef("cache: %s dropping out-of-order response (seq %d < %d)", ek, seq, e.storedSeq)
		current, _ := c.store.Get([]byte(ek))
		err := e.lastErr
		c.mu.Unlock()
		return Update{Key: e.key, Value: current, Err: err}
	}
	e.storedSeq = seq

	var update Update
	if fetchErr != nil {
		// keep the previous value for display, but non-fresh so the next
		// Fetch retries
		e.status = StatusError
		e.lastErr = fetchErr
		previous, _ := c.store.Get([]byte(ek))
		update = Update{Key: e.key, Value: previous, Err: fetchErr}
	} else {
		if err := c.store.Set([]byte(ek), value, 0); err != nil {
			log.Errorf("cache: %s store payload: %s", ek, err)
		}
		e.hasValue = true
		e.status = StatusFresh
		e.fetchedAt = c.NowFunc()
		e.lastErr = nil
		update = Update{Key: e.key, Value: value}
	}

	subs := make([]chan Update, 0, len(e.subscribers))
	for _, ch := range e.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		notify(ch, update)
	}
	return update
}

// notify delivers non-blocking: a slow subscriber keeps only the last value.
func notify(ch chan Update, update Update) {
	for {
		select {
		case ch <- update:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Invalidate marks all entries whose key matches pattern as stale. Pattern is
// a path.Match glob over the resource key (params hash excluded), falling back
// to exact comparison. Entries with live subscribers are refetched in the
// background; the call itself never waits.
func (c *QueryCache) Invalidate(pattern string) {
	c.mu.Lock()
	type refetch struct {
		ek      string
		fetcher Fetcher
	}
	var refetches []refetch
	for ek, e := range c.entries {
		matched, err := path.Match(pattern, e.key)
		if err != nil || !matched {
			if e.key != pattern {
				continue
			}
		}
		if e.hasValue && e.status == StatusFresh {
			e.status = StatusStale
		}
		// a new flight must start even if one is mid-air, so the next read
		// observes post-invalidation data once it resolves
		c.flight.Forget(ek)
		if len(e.subscribers) > 0 && e.fetcher != nil {
			refetches = append(refetches, refetch{ek: ek, fetcher: e.fetcher})
		}
		log.Tracef("cache: invalidated %s", ek)
	}
	c.mu.Unlock()

	for _, r := range refetches {
		go func(r refetch) {
			c.flight.Do(r.ek, func() (any, error) {
				return c.runFetch(context.Background(), r.ek, r.fetcher), nil
			})
		}(r)
	}
}

// Subscribe registers interest in a key. The returned channel receives an
// Update whenever the entry's value or error state changes; the cancel func
// unregisters. In-flight fetches for an unsubscribed key still complete and
// update the cache silently.
func (c *QueryCache) Subscribe(key, paramsHash string) (<-chan Update, func()) {
	ek := entryKey(key, paramsHash)

	c.mu.Lock()
	e := c.ensureEntryLocked(key, paramsHash)
	if e.evictTimer != nil {
		e.evictTimer.Stop()
		e.evictTimer = nil
	}
	id := e.nextSubID
	e.nextSubID++
	ch := make(chan Update, 1)
	e.subscribers[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		e, ok := c.entries[ek]
		if !ok {
			return
		}
		delete(e.subscribers, id)
		if len(e.subscribers) == 0 && c.evictionEnabled {
			e.evictTimer = time.AfterFunc(c.evictionGrace, func() {
				c.evict(ek)
			})
		}
	}
	return ch, cancel
}

func (c *QueryCache) evict(ek string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[ek]
	if !ok || len(e.subscribers) > 0 {
		return
	}
	delete(c.entries, ek)
	c.store.Del([]byte(ek))
	log.Debugf("cache: evicted %s", ek)
}

// EntryStatus reports the current status of an entry, StatusAbsent if the key
// was never fetched. Used for staleness indicators.
func (c *QueryCache) EntryStatus(key, paramsHash string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[entryKey(key, paramsHash)]
	if !ok {
		return StatusAbsent
	}
	if e.status == StatusFresh && c.NowFunc().Sub(e.fetchedAt) >= c.staleness {
		return StatusStale
	}
	return e.status
}

// Peek returns the stored value without triggering any fetch.
func (c *QueryCache) Peek(key, paramsHash string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[entryKey(key, paramsHash)]
	if !ok || !e.hasValue {
		return nil, false
	}
	value, err := c.store.Get([]byte(entryKey(key, paramsHash)))
	if err != nil {
		return nil, false
	}
	return value, true
}

// Clear drops everything. Used on logout so no cached authenticated data
// survives into the next login.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ek, e := range c.entries {
		if e.evictTimer != nil {
			e.evictTimer.Stop()
		}
		delete(c.entries, ek)
	}
	c.store.Clear()
}

func (c *QueryCache) ensureEntryLocked(key, paramsHash string) *entry {
	ek := entryKey(key, paramsHash)
	e, ok := c.entries[ek]
	if !ok {
		e = &entry{
			key:         key,
			paramsHash:  paramsHash,
			status:      StatusAbsent,
			subscribers: make(map[int]chan Update),
		}
		c.entries[ek] = e
	}
	return e
}
