// Package resolver implements the dependency-graph walk and topological
// sort at the center of the resolver core (spec §4.E, §4.F): starting
// from a synthetic seed resource carrying the requested feature
// requirements, it walks provider/requirement links to build an edge
// map, then orders the participating resources so every dependency
// precedes its dependent.
package resolver

import (
	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/link"
)

// rootResourceName is the synthetic seed resource constructed in-memory
// for every resolve() run. It is never inserted into the user catalog.
const rootResourceName = "__build_ctx__"

// EdgeLink is a resolved edge: a requirement matched to one of its
// providers, plus the effective instance name used to reach it.
type EdgeLink struct {
	Requirement link.RequirementLink
	Provider    link.ProviderLink
	MatchName   string
}

// DebugObserver receives every match decision made during a walk. It
// must not alter resolution semantics — it is purely an observation
// hook (spec §4.E "debug hook").
type DebugObserver interface {
	OnMatch(level int, resource string, requirement link.RequirementLink, effective link.RequirementLink, candidates []link.ProviderLink, chosen []link.ProviderLink)
}

// Index is the subset of providerindex.Index the resolver depends on,
// expressed as an interface so tests can substitute a bare slice-backed
// fake without importing providerindex. New still special-cases a
// concrete *providerindex.Index to pick its cached matcher by default;
// the interface only matters for the uncached fallback path.
type Index interface {
	Links() []link.ProviderLink
}

// Catalog is the subset of catalog.Catalog the resolver depends on.
type Catalog interface {
	GetResource(name string) (*catalog.Resource, error)
}
