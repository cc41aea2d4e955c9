package pattern

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/Veraticus/smsledger/internal/common"
)

// DefaultCacheSize bounds the number of compiled user regexes kept in memory.
const DefaultCacheSize = 256

type cacheEntry struct {
	re  *regexp.Regexp // nil when the pattern failed to compile
	err error
}

// regexCache memoises compiled user regexes. Entries are keyed by rule ID and
// pattern text, so editing a rule naturally misses the old entry.
type regexCache struct {
	entries map[string]cacheEntry
	order   []string
	size    int
	mu      sync.Mutex
}

func newRegexCache(size int) *regexCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &regexCache{
		entries: make(map[string]cacheEntry, size),
		size:    size,
	}
}

// get compiles pattern on first use and returns the cached result afterwards.
func (c *regexCache) get(ruleID int64, pattern string) (*regexp.Regexp, error) {
	key := fmt.Sprintf("%d:%s", ruleID, pattern)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry.re, entry.err
	}

	re, err := common.CompileInsensitive(pattern)
	c.entries[key] = cacheEntry{re: re, err: err}
	c.order = append(c.order, key)

	// Evict oldest first
	for len(c.order) > c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}

	return re, err
}

// len returns the number of cached patterns.
func (c *regexCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
