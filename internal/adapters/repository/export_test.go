package repository

// CacheHits exposes the parse cache hit counter to tests.
func (r *Repository) CacheHits() int {
	return r.cache.hitCount()
}
