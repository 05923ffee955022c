package repository

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/selfie/internal/core/domain"
)

type cacheEntry struct {
	digest uint64
	pkg    domain.Package
}

// parseCache keeps decoded packages keyed by file path and content digest,
// so unchanged files are not decoded again.
type parseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    int
}

func newParseCache() *parseCache {
	return &parseCache{entries: make(map[string]cacheEntry)}
}

func (c *parseCache) get(path string, data []byte) (domain.Package, uint64, bool) {
	digest := xxhash.Sum64(data)

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || entry.digest != digest {
		return domain.Package{}, digest, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.pkg, digest, true
}

func (c *parseCache) put(path string, digest uint64, pkg *domain.Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{digest: digest, pkg: *pkg}
}

func (c *parseCache) hitCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}
