package scanner

import (
	"crypto/sha256"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of files a Cache remembers.
const DefaultCacheSize = 4096

type cacheKey struct {
	path string
	sum  [sha256.Size]byte
}

// Cache remembers extraction results by path and content hash so that
// repeated scans (watch mode, a long-running server) only parse files
// that changed. It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, []Record]
}

// NewCache creates a Cache holding up to size files. A non-positive size
// selects DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, []Record](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{entries: entries}
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) get(path string, content []byte) ([]Record, bool) {
	recs, ok := c.entries.Get(cacheKey{path: path, sum: sha256.Sum256(content)})
	if !ok {
		return nil, false
	}
	return cloneRecords(recs), true
}

func (c *Cache) put(path string, content []byte, recs []Record) {
	c.entries.Add(cacheKey{path: path, sum: sha256.Sum256(content)}, cloneRecords(recs))
}

// cloneRecords deep-copies records; connection resolution mutates them.
func cloneRecords(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		r.Dependencies = slices.Clone(r.Dependencies)
		r.Connections = slices.Clone(r.Connections)
		methods := make([]Method, len(r.Methods))
		for j, m := range r.Methods {
			m.Parameters = slices.Clone(m.Parameters)
			methods[j] = m
		}
		r.Methods = methods
		out[i] = r
	}
	return out
}
