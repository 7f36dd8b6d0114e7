package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// BuildContext carries the destination state of one import run through
// every factory and builder call. It replaces hidden request-scoped
// global state with an explicit parameter.
type BuildContext struct {
	ImporterUserID int64
	ProjectID      int64
	NamespaceID    int64
	Users          UserMap
	// RootGroup is nil if the root ancestor of the destination is not a group.
	RootGroup *RootGroupInfo
	// Cache is the request-scoped dedup cache, nil disables caching.
	Cache *DedupCache
	// MaxPositions holds the hierarchy maximum relative position per kind,
	// a missing entry defaults to 0.
	MaxPositions map[string]int64
	Clock        clockwork.Clock
}

// RootGroupInfo describes the importing user's membership
// in the destination root namespace.
type RootGroupInfo struct {
	ID            int64
	HasMembership bool
	Membership    AccessLevel
}

func (c *BuildContext) clock() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

// Now returns the current time of the injected clock.
func (c *BuildContext) Now() string {
	return c.clock().Now().UTC().Format("2006-01-02 15:04:05 MST")
}

// MaxPosition returns the cached hierarchy maximum relative position
// for the kind, 0 if absent.
func (c *BuildContext) MaxPosition(kind string) int64 {
	if c.MaxPositions == nil {
		return 0
	}
	return c.MaxPositions[kind]
}

// DedupCache is a request-scoped memo table: one persisted instance per
// logical identity per import run. All methods are nil-safe, a nil cache
// degrades to no caching.
type DedupCache struct {
	lock    sync.Mutex
	entries map[string]*Object
}

func NewDedupCache() *DedupCache {
	return &DedupCache{entries: make(map[string]*Object)}
}

func (c *DedupCache) Get(key string) (*Object, bool) {
	if c == nil {
		return nil, false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	object, found := c.entries[key]
	return object, found
}

func (c *DedupCache) Set(key string, object *Object) {
	if c == nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries[key] = object
}

func (c *DedupCache) Len() int {
	if c == nil {
		return 0
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

// DedupKey composes the cache key from the kind, the normalized
// identifying attributes and the enclosing scope.
func DedupKey(kind string, attributes *orderedmap.OrderedMap, scope string) string {
	pairs := make([]string, 0)
	if attributes != nil {
		for _, key := range attributes.Keys() {
			value, _ := attributes.Get(key)
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, strings.ToLower(strings.TrimSpace(cast.ToString(value)))))
		}
	}
	sort.Strings(pairs)
	return fmt.Sprintf("%s[%s]{%s}", kind, scope, strings.Join(pairs, ","))
}
