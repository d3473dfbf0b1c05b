package listctl

import "sync"

type cacheEntry struct {
	gen  uint64
	page *Page
}

// yearCache memoizes fetched pages per year. Each year carries a generation
// counter; invalidation bumps the generation, which makes every entry stored
// under the old generation unreadable. Entries are stamped with the
// generation current at store time, so a fetch that completes after an
// invalidation still lands as fresh data.
type yearCache struct {
	mu    sync.Mutex
	gens  map[string]uint64
	pages map[string]map[string]cacheEntry
}

func newYearCache() *yearCache {
	return &yearCache{
		gens:  make(map[string]uint64),
		pages: make(map[string]map[string]cacheEntry),
	}
}

func (c *yearCache) generation(year string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[year]
}

func (c *yearCache) invalidate(year string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[year]++
	delete(c.pages, year)
}

func (c *yearCache) get(year, key string) (*Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.pages[year][key]
	if !ok || entry.gen != c.gens[year] {
		return nil, false
	}
	return entry.page, true
}

func (c *yearCache) put(year, key string, page *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pages[year] == nil {
		c.pages[year] = make(map[string]cacheEntry)
	}
	c.pages[year][key] = cacheEntry{gen: c.gens[year], page: page}
}
