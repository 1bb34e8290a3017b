package resolver

import (
	"reflect"
	"testing"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/errs"
	"github.com/mrjk/resourcegraph/link"
	"github.com/mrjk/resourcegraph/providerindex"
)

func newCatalog(t *testing.T, entries []catalog.Entry) *catalog.Catalog {
	t.Helper()
	c := catalog.NewCatalog()
	if err := c.AddResources(entries, "", false); err != nil {
		t.Fatalf("unexpected error building catalog: %v", err)
	}
	return c
}

func entry(name string, provides, requires []any) catalog.Entry {
	cfg := map[string]any{}
	if provides != nil {
		cfg["provides"] = provides
	}
	if requires != nil {
		cfg["requires"] = requires
	}
	return catalog.Entry{Name: name, Config: cfg}
}

func resolve(t *testing.T, c *catalog.Catalog, features []string, remap map[string]string) ([]string, error) {
	t.Helper()
	idx := providerindex.Build(c)
	r := New(c, idx, features, remap)
	return r.Resolve()
}

// Scenario 1: linear chain.
func TestResolve_LinearChain(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("database", []any{"database.main"}, nil),
		entry("application", []any{"app.web"}, []any{"database.main"}),
		entry("proxy", nil, []any{"app.web"}),
	})

	order, err := resolve(t, c, []string{"app.web"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"database", "application", "__build_ctx__"}
	assertOrder(t, order, want)
}

func TestResolve_LinearChain_UnsatisfiedFeature(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("database", []any{"database.main"}, nil),
		entry("application", []any{"app.web"}, []any{"database.main"}),
		entry("proxy", nil, []any{"app.web"}),
	})

	_, err := resolve(t, c, []string{"proxy"}, nil)
	if !errs.Is(err, errs.UnsatisfiedRequirement) {
		t.Fatalf("expected UnsatisfiedRequirement, got %v", err)
	}
}

// Scenario 2: optional absent.
func TestResolve_OptionalAbsent(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("db", []any{"database.main"}, nil),
		entry("app", []any{"app.web"}, []any{"database.main", "cache.redis?"}),
	})

	idx := providerindex.Build(c)
	r := New(c, idx, []string{"app.web"}, nil)
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, order, []string{"db", "app", "__build_ctx__"})

	edges := r.EdgeMap()["app"]
	if len(edges) != 1 || edges[0].Provider.Owner != "db" {
		t.Fatalf("expected exactly one edge to db, got %+v", edges)
	}
}

// Scenario 3: ambiguous without remap.
func TestResolve_AmbiguousWithoutRemap(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("pg", []any{"database.main"}, nil),
		entry("mysql", []any{"database.main"}, nil),
		entry("app", []any{"app.web"}, []any{"database"}),
	})

	_, err := resolve(t, c, []string{"app.web"}, nil)
	if !errs.Is(err, errs.AmbiguousRequirement) {
		t.Fatalf("expected AmbiguousRequirement, got %v", err)
	}
}

// Scenario 4: remap disambiguates.
func TestResolve_RemapDisambiguates(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("pg", []any{"database.primary"}, nil),
		entry("mysql", []any{"database.secondary"}, nil),
		entry("app", []any{"app.web"}, []any{"database"}),
	})

	order, err := resolve(t, c, []string{"app.web"}, map[string]string{"database": "primary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, order, []string{"pg", "app", "__build_ctx__"})
	for _, name := range order {
		if name == "mysql" {
			t.Fatalf("mysql should not be reachable, got order %v", order)
		}
	}
}

// Scenario 5: one-or-many cardinality.
func TestResolve_OneOrManyCardinality(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("w1", []any{"worker.a"}, nil),
		entry("w2", []any{"worker.b"}, nil),
		entry("sched", []any{"sched.main"}, []any{"worker+"}),
	})

	idx := providerindex.Build(c)
	r := New(c, idx, []string{"sched.main"}, nil)
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, order, []string{"w1", "w2", "sched", "__build_ctx__"})

	edges := r.EdgeMap()["sched"]
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges for sched, got %d", len(edges))
	}
}

// Scenario 6: cycle detection.
func TestResolve_CycleDetected(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("a", []any{"cap.a"}, []any{"cap.b"}),
		entry("b", []any{"cap.b"}, []any{"cap.a"}),
	})

	_, err := resolve(t, c, []string{"cap.a"}, nil)
	if !errs.Is(err, errs.CycleDetected) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
}

func TestResolve_SelfProvidedCapabilityIsACycle(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("self", []any{"cap.x"}, []any{"cap.x"}),
	})

	_, err := resolve(t, c, []string{"cap.x"}, nil)
	if !errs.Is(err, errs.CycleDetected) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
}

func TestResolve_ZeroFeaturesYieldsOnlyRoot(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("db", []any{"database.main"}, nil),
	})

	idx := providerindex.Build(c)
	r := New(c, idx, nil, nil)
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, order, []string{"__build_ctx__"})
}

func TestResolve_CannotResolveTwice(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("db", []any{"database.main"}, nil),
	})
	idx := providerindex.Build(c)
	r := New(c, idx, nil, nil)
	if _, err := r.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := r.Resolve()
	if !errs.Is(err, errs.AlreadyResolved) {
		t.Fatalf("expected AlreadyResolved, got %v", err)
	}
}

// The LRU kind-bucket cache providerindex.Index carries (and that New
// wires in by default as providerindex.CachedMatcher) must never change
// a resolve's outcome: run the same catalog once through the cached
// default matcher and once through an explicit uncached link.DefaultMatcher
// and assert byte-identical EdgeMap/DepOrder.
func TestResolve_CachedAndUncachedMatcherAgree(t *testing.T) {
	c := newCatalog(t, []catalog.Entry{
		entry("pg", []any{"database.primary"}, nil),
		entry("mysql", []any{"database.secondary"}, nil),
		entry("w1", []any{"worker.a"}, nil),
		entry("w2", []any{"worker.b"}, nil),
		entry("app", []any{"app.web"}, []any{"database", "worker+", "cache.redis?"}),
	})
	features := []string{"app.web"}
	remap := map[string]string{"database": "primary"}

	idx := providerindex.Build(c)
	cached := New(c, idx, features, remap)
	cachedOrder, err := cached.Resolve()
	if err != nil {
		t.Fatalf("cached resolve: unexpected error: %v", err)
	}

	uncached := New(c, idx, features, remap, WithMatcher(link.DefaultMatcher{
		Index:            idx.Links(),
		RemapRules:       remap,
		DefaultMode:      "one",
		RemapRequirement: true,
	}))
	uncachedOrder, err := uncached.Resolve()
	if err != nil {
		t.Fatalf("uncached resolve: unexpected error: %v", err)
	}

	if !reflect.DeepEqual(cachedOrder, uncachedOrder) {
		t.Fatalf("dep order diverged: cached=%v uncached=%v", cachedOrder, uncachedOrder)
	}
	if !reflect.DeepEqual(cached.EdgeMap(), uncached.EdgeMap()) {
		t.Fatalf("edge map diverged: cached=%+v uncached=%+v", cached.EdgeMap(), uncached.EdgeMap())
	}
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got order %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got order %v, want %v", got, want)
		}
	}
}
