package catalog

import (
	"testing"

	"github.com/mrjk/resourcegraph/errs"
)

func TestAddResource_DuplicateWithoutForce(t *testing.T) {
	c := NewCatalog()
	if err := c.AddResource("db", "", nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := c.AddResource("db", "", nil, false)
	if !errs.Is(err, errs.DuplicateResource) {
		t.Fatalf("expected DuplicateResource, got %v", err)
	}
}

func TestAddResource_ForceOverwriteIsIdempotent(t *testing.T) {
	c := NewCatalog()
	cfg := map[string]any{"provides": []any{"database.main"}}
	if err := c.AddResource("db", "", cfg, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddResource("db", "", cfg, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, err := c.GetResource("db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Provides) != 1 || r.Provides[0].Rule() != "database.main" {
		t.Fatalf("got %+v", r.Provides)
	}
}

func TestGetResource_Unknown(t *testing.T) {
	c := NewCatalog()
	_, err := c.GetResource("missing")
	if !errs.Is(err, errs.UnknownResource) {
		t.Fatalf("expected UnknownResource, got %v", err)
	}
}

func TestGetResources_PreservesInsertionOrder(t *testing.T) {
	c := NewCatalog()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if err := c.AddResource(n, "", nil, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got := c.Iter()
	for i, r := range got {
		if r.Name != names[i] {
			t.Fatalf("got order %v, want %v", namesOf(got), names)
		}
	}
}

func TestGetResources_FiltersByScope(t *testing.T) {
	c := NewCatalog()
	if err := c.AddResource("a", "core", nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddResource("b", "extra", nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.GetResources("core")
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("got %v", namesOf(got))
	}
}

func TestAddResource_MalformedRuleFailsWholeAdd(t *testing.T) {
	c := NewCatalog()
	cfg := map[string]any{"provides": []any{"a.b.c"}}
	err := c.AddResource("bad", "", cfg, false)
	if !errs.Is(err, errs.MalformedRule) {
		t.Fatalf("expected MalformedRule, got %v", err)
	}
	if _, err := c.GetResource("bad"); !errs.Is(err, errs.UnknownResource) {
		t.Fatalf("resource should not have been added")
	}
}

func TestAddResource_DuplicateProviderOnSameResourceIsNoOp(t *testing.T) {
	c := NewCatalog()
	cfg := map[string]any{"provides": []any{"database.main", "database.main"}}
	if err := c.AddResource("db", "", cfg, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, _ := c.GetResource("db")
	if len(r.Provides) != 1 {
		t.Fatalf("expected deduped provides, got %d", len(r.Provides))
	}
}

func namesOf(rs []*Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}
