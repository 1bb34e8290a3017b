package providerindex

import "github.com/mrjk/resourcegraph/link"

// CachedMatcher implements link.Matcher on top of an Index's per-kind LRU
// cache: it pre-filters the candidate pool to the requirement's kind via
// Index.ByKind, then delegates the remap/instance/cardinality rules to
// link.Match unchanged. This keeps resolution behavior identical to
// DefaultMatcher while avoiding an O(len(full index)) scan per
// requirement on large catalogs.
type CachedMatcher struct {
	Index            *Index
	RemapRules       map[string]string
	DefaultMode      string
	RemapRequirement bool
}

func (m CachedMatcher) MatchRequirement(req link.RequirementLink, level int) (string, []link.ProviderLink, error) {
	// link.Match still needs remap applied before it knows the effective
	// kind, but remap rules in this domain key by kind, not instance, so
	// the kind used for the cache lookup is always req.Kind itself.
	bucket := m.Index.ByKind(req.Kind)
	return link.Match(req, bucket, m.RemapRules, m.DefaultMode, m.RemapRequirement)
}
