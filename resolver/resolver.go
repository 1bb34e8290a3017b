package resolver

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/errs"
	"github.com/mrjk/resourcegraph/link"
	"github.com/mrjk/resourcegraph/providerindex"
)

// MetricsRecorder receives resolver-run outcomes for callers that want to
// export them as counters/histograms without the resolver importing a
// metrics library itself. Nil is a valid, inert recorder.
type MetricsRecorder interface {
	ObserveResolve(edges, depOrderLen int, err error)
}

// Resolver walks a catalog's provider/requirement links from a seed list
// of feature names and produces a topologically ordered initialization
// sequence. A Resolver instance is single-use: a second Resolve() call
// does not restart the run from a clean state; it returns an
// AlreadyResolved error. Callers construct a new Resolver per run.
type Resolver struct {
	cat          Catalog
	index        Index
	featureNames []string
	remapRules   map[string]string
	matcher      link.Matcher
	log          logr.Logger
	debug        DebugObserver
	metrics      MetricsRecorder

	resolved bool
	edgeMap  map[string][]EdgeLink
	depOrder []string
}

// New constructs a Resolver. remapRules may be nil. If matcher
// is nil and index is a *providerindex.Index, the default matcher is a
// providerindex.CachedMatcher over it, so repeated requirements of the
// same kind hit the index's LRU bucket cache instead of rescanning the
// full provider list (spec §4.D). Any other Index implementation falls
// back to link.DefaultMatcher over index.Links().
func New(cat Catalog, index Index, featureNames []string, remapRules map[string]string, opts ...Option) *Resolver {
	r := &Resolver{
		cat:          cat,
		index:        index,
		featureNames: featureNames,
		remapRules:   remapRules,
		log:          logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.matcher == nil {
		if cached, ok := index.(*providerindex.Index); ok {
			r.matcher = providerindex.CachedMatcher{
				Index:            cached,
				RemapRules:       remapRules,
				DefaultMode:      "one",
				RemapRequirement: true,
			}
		} else {
			r.matcher = link.DefaultMatcher{
				Index:            index.Links(),
				RemapRules:       remapRules,
				DefaultMode:      "one",
				RemapRequirement: true,
			}
		}
	}
	return r
}

// Option configures optional Resolver collaborators.
type Option func(*Resolver)

// WithLogger attaches a structured logger (spec §9 ambient stack). Resolve
// itself writes no log lines.
func WithLogger(log logr.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithDebugObserver attaches the debug hook described in spec §4.E.
func WithDebugObserver(obs DebugObserver) Option {
	return func(r *Resolver) { r.debug = obs }
}

// WithMatcher overrides the strategy extension point (spec §4.E, §9).
func WithMatcher(m link.Matcher) Option {
	return func(r *Resolver) { r.matcher = m }
}

// WithMetricsRecorder attaches a recorder for resolve-run outcomes.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// Resolve runs the walk followed by the topological sort, populating
// EdgeMap() and DepOrder(). It may be called exactly once per Resolver.
func (r *Resolver) Resolve() ([]string, error) {
	if r.resolved {
		return nil, errs.New(errs.AlreadyResolved, "resolve() already called on this Resolver instance")
	}
	r.resolved = true

	root, err := r.buildRoot()
	if err != nil {
		r.recordOutcome(err)
		return nil, err
	}

	r.edgeMap = map[string][]EdgeLink{}

	if err := r.walk(rootResourceName, root, 0); err != nil {
		r.recordOutcome(err)
		return nil, err
	}

	order, err := topoSort(r.edgeMap)
	if err != nil {
		r.recordOutcome(err)
		return nil, err
	}
	r.depOrder = order

	r.recordOutcome(nil)
	return order, nil
}

func (r *Resolver) recordOutcome(err error) {
	if r.metrics == nil {
		return
	}
	edges := 0
	for _, es := range r.edgeMap {
		edges += len(es)
	}
	r.metrics.ObserveResolve(edges, len(r.depOrder), err)
}

// buildRoot constructs the synthetic __build_ctx__ resource with one
// requirement per feature name, each parsed via the requirement parser
// (spec §4.E "Seeding").
func (r *Resolver) buildRoot() (*catalog.Resource, error) {
	requires := make([]any, 0, len(r.featureNames))
	for _, f := range r.featureNames {
		requires = append(requires, f)
	}
	cfg := map[string]any{"requires": requires}
	root, err := catalog.NewTransientResource(rootResourceName, "", cfg)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// walk performs the depth-first traversal described in spec §4.E. level
// is the recursion depth, passed through to the debug hook.
func (r *Resolver) walk(name string, res *catalog.Resource, level int) error {
	if _, seen := r.edgeMap[name]; seen {
		return nil
	}
	r.edgeMap[name] = []EdgeLink{}

	for _, req := range res.Requires {
		matchName, providers, err := r.matcher.MatchRequirement(req, level)
		if err != nil {
			return err
		}
		if r.debug != nil {
			r.debug.OnMatch(level, name, req, r.effectiveRequirement(req), providers, providers)
		}

		for _, p := range providers {
			r.edgeMap[name] = append(r.edgeMap[name], EdgeLink{
				Requirement: req,
				Provider:    p,
				MatchName:   matchName,
			})

			if _, seen := r.edgeMap[p.Owner]; seen {
				continue
			}
			owner, err := r.cat.GetResource(p.Owner)
			if err != nil {
				return errs.New(errs.UnknownResource, fmt.Sprintf("provider %s.%s declares owner %q, not found in catalog", p.Kind, p.Instance, p.Owner)).
					WithContext("resource", name).
					WithContext("owner", p.Owner).
					WithCause(err)
			}
			if err := r.walk(p.Owner, owner, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// effectiveRequirement applies the same remap-by-kind rule the default
// matcher uses, purely for debug-hook reporting — this is informational
// only and never feeds back into matching itself (spec §4.E "the hook
// must not alter semantics").
func (r *Resolver) effectiveRequirement(req link.RequirementLink) link.RequirementLink {
	effective := req
	if override, ok := r.remapRules[req.Kind]; ok {
		effective.Instance, effective.HasInstance = override, true
	}
	return effective
}

// EdgeMap returns the edge map built by Resolve(). It is nil before
// Resolve() runs or when building the synthetic root fails; after a walk
// or sort failure it holds the partial map built so far, for diagnostics.
func (r *Resolver) EdgeMap() map[string][]EdgeLink {
	return r.edgeMap
}

// DepOrder returns the topological order produced by the last successful
// Resolve() call, including the trailing synthetic root.
func (r *Resolver) DepOrder() []string {
	return r.depOrder
}

// ProviderIndex returns the flat provider list this Resolver was built
// against.
func (r *Resolver) ProviderIndex() []link.ProviderLink {
	return r.index.Links()
}
