package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripdesk/apiclient"
	"tripdesk/listview"
	"tripdesk/models"
	"tripdesk/resources"
	"tripdesk/utils"

	"golang.org/x/sync/singleflight"
)

// Kind is what a day can hold besides its text: places to stay and places
// to eat.
type Kind string

const (
	Accommodation Kind = "accommodation"
	FineDining    Kind = "fineDining"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Accommodation, FineDining:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown catalog %q", s)
}

// Entry is the slice of a catalog record the day editor shows.
type Entry struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Rating   string `json:"rating"`
}

type Catalog struct {
	Kind    Kind    `json:"kind"`
	Entries []Entry `json:"entries"`
}

// Filter matches q against title and location, ignoring case. An empty q
// returns everything.
func (c *Catalog) Filter(q string) []Entry {
	q = strings.TrimSpace(q)
	if q == "" {
		return c.Entries
	}
	out := []Entry{}
	for _, e := range c.Entries {
		if utils.ContainsIgnoreCase(e.Title, q) || utils.ContainsIgnoreCase(e.Location, q) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Has(id string) bool {
	for _, e := range c.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Cache stores encoded catalogs between loads. rdx.Cache is the redis one.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

func cacheKey(k Kind) string { return "catalog:" + string(k) }

// Loader fetches catalogs once and shares them between every open day
// editor until the TTL runs out or a mutation invalidates them.
type Loader struct {
	Client *apiclient.Client
	Cache  Cache
	TTL    time.Duration
	Limit  int

	group singleflight.Group
}

const fetchTimeout = 30 * time.Second

func (l *Loader) limit() int {
	if l.Limit <= 0 {
		return 1000
	}
	return l.Limit
}

func (l *Loader) Load(ctx context.Context, kind Kind) (*Catalog, error) {
	key := cacheKey(kind)
	if l.Cache != nil {
		raw, ok, err := l.Cache.Get(ctx, key)
		if err != nil {
			log.Printf("[itinerary] cache get %s: %v", key, err)
		}
		if ok {
			var c Catalog
			if err := json.Unmarshal(raw, &c); err == nil {
				return &c, nil
			}
		}
	}

	// The fetch is shared, so it must outlive whichever caller started it.
	ch := l.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		c, err := l.fetch(fctx, kind)
		if err != nil {
			return nil, err
		}
		if l.Cache != nil {
			if raw, err := json.Marshal(c); err == nil {
				if err := l.Cache.Set(fctx, key, raw, l.TTL); err != nil {
					log.Printf("[itinerary] cache set %s: %v", key, err)
				}
			}
		}
		return c, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func (l *Loader) fetch(ctx context.Context, kind Kind) (*Catalog, error) {
	q := url.Values{"limit": {strconv.Itoa(l.limit())}}
	c := &Catalog{Kind: kind, Entries: []Entry{}}

	switch kind {
	case Accommodation:
		env, err := l.Client.Do(ctx, http.MethodGet, "/accommodation/get-selected-data", q, nil, "")
		if err != nil {
			return nil, err
		}
		rows, _, err := listview.DecodeList[models.Accommodation](env.Data, "accommodations")
		if err != nil {
			return nil, err
		}
		for _, a := range rows {
			c.Entries = append(c.Entries, Entry{ID: a.ID, Title: a.AccommodationTitle, Location: a.AccommodationLocation, Rating: a.AccommodationRating})
		}
	case FineDining:
		res, _ := resources.Lookup(resources.Dining)
		env, err := l.Client.Do(ctx, http.MethodGet, res.List, q, nil, "")
		if err != nil {
			return nil, err
		}
		rows, _, err := listview.DecodeList[models.FineDining](env.Data, res.ItemsKey)
		if err != nil {
			return nil, err
		}
		for _, d := range rows {
			c.Entries = append(c.Entries, Entry{ID: d.ID, Title: d.Title, Location: d.Location, Rating: d.Rating})
		}
	default:
		return nil, fmt.Errorf("unknown catalog %q", kind)
	}
	return c, nil
}

// Invalidate drops the cached catalog that a change to resource affects.
func (l *Loader) Invalidate(ctx context.Context, resource string) {
	var kind Kind
	switch resource {
	case resources.Accommodations:
		kind = Accommodation
	case resources.Dining:
		kind = FineDining
	default:
		return
	}
	if l.Cache == nil {
		return
	}
	if err := l.Cache.Del(ctx, cacheKey(kind)); err != nil {
		log.Printf("[itinerary] invalidate %s: %v", kind, err)
	}
}

// MemoryCache is the in-process Cache used when redis is not configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	val     []byte
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{val: val}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
