// Package providerindex builds the flat, catalog-ordered index of every
// ProviderLink in a Catalog (spec §4.D), with an LRU-memoized kind bucket
// lookup so a long-lived resolver does not re-scan the full provider list
// once per requirement.
package providerindex

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/link"
)

// defaultCacheSize bounds the number of distinct kinds memoized by one
// Index. Catalogs in this domain are "dozens to hundreds" of resources
// (spec §4.D), so the number of distinct kinds is small; this just caps
// growth when an Index is queried for many distinct kinds.
const defaultCacheSize = 256

// Index is a read-only, catalog-order-preserving view of every provider
// link across a Catalog's resources.
type Index struct {
	links   []link.ProviderLink
	version uint64
	cache   *lru.Cache[cacheKey, []link.ProviderLink]
}

type cacheKey struct {
	version uint64
	kind    string
}

// Build concatenates every resource's Provides, in catalog insertion
// order, into a single flat index. Resources are visited in catalog
// order; each resource's own provides are already in declaration order.
func Build(cat *catalog.Catalog) *Index {
	resources := cat.Iter()
	links := make([]link.ProviderLink, 0, len(resources)*2)
	for _, r := range resources {
		links = append(links, r.Provides...)
	}
	cache, err := lru.New[cacheKey, []link.ProviderLink](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(fmt.Errorf("providerindex: unexpected lru.New error: %w", err))
	}
	return &Index{links: links, version: cat.Version(), cache: cache}
}

// Links returns the full flat, catalog-ordered provider list.
func (idx *Index) Links() []link.ProviderLink {
	return idx.links
}

// ByKind returns every provider link with the given kind, in catalog
// order, transparently memoized per (catalog version, kind).
func (idx *Index) ByKind(kind string) []link.ProviderLink {
	key := cacheKey{version: idx.version, kind: kind}
	if cached, ok := idx.cache.Get(key); ok {
		return cached
	}
	var out []link.ProviderLink
	for _, p := range idx.links {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	idx.cache.Add(key, out)
	return out
}
