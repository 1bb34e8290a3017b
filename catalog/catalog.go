// Package catalog holds the Resource/Catalog model (spec §4.C): a
// named entity carrying provider/requirement links plus an attribute
// bag, stored in an insertion-ordered catalog keyed by name.
package catalog

import (
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mrjk/resourcegraph/errs"
)

// Entry pairs a resource name with its structured configuration, used by
// AddResources to preserve a deterministic insertion order — Go maps do
// not iterate in insertion order, so the bulk form takes an ordered
// slice rather than a map (spec §9: "pick ordered containers
// deliberately").
type Entry struct {
	Name   string
	Config map[string]any
}

// Catalog is a name -> *Resource mapping with insertion order preserved
// as the deterministic tie-breaker spec §3 requires, plus a secondary
// scope -> set<name> index.
type Catalog struct {
	mu         sync.RWMutex
	order      []string
	byName     map[string]*Resource
	scopeIndex map[string]sets.Set[string]
	version    uint64
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName:     map[string]*Resource{},
		scopeIndex: map[string]sets.Set[string]{},
	}
}

// Version returns a counter bumped on every mutation, used by the
// provider index to invalidate its cache.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// AddResource creates or replaces a resource. If name already exists and
// force is false, it fails with a DuplicateResource error.
func (c *Catalog) AddResource(name, scope string, config map[string]any, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addResourceLocked(name, scope, config, force)
}

func (c *Catalog) addResourceLocked(name, scope string, config map[string]any, force bool) error {
	if config == nil {
		config = map[string]any{}
	}
	if !force {
		if _, exists := c.byName[name]; exists {
			return errs.New(errs.DuplicateResource, fmt.Sprintf("duplicate resource: %s", name)).
				WithContext("resource", name)
		}
	}

	r, err := newResource(name, scope, config)
	if err != nil {
		return err
	}

	if old, exists := c.byName[name]; exists {
		c.unindexScope(old)
	} else {
		c.order = append(c.order, name)
	}
	c.byName[name] = r
	c.indexScope(r)
	c.version++
	return nil
}

// AddResources adds multiple resources in entries order. scope, if
// non-empty, is applied to every entry and takes precedence over an
// entry's own "scope" key, which is used only when scope is empty (the
// same rule AddResource applies). Not atomic: a failure partway through leaves prior
// entries added, matching the original implementation.
func (c *Catalog) AddResources(entries []Entry, scope string, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		if err := c.addResourceLocked(e.Name, scope, e.Config, force); err != nil {
			return err
		}
	}
	return nil
}

// GetResource retrieves a resource by name.
func (c *Catalog) GetResource(name string) (*Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byName[name]
	if !ok {
		return nil, errs.New(errs.UnknownResource, fmt.Sprintf("unknown resource: %s", name)).
			WithContext("resource", name)
	}
	return r, nil
}

// GetResources returns resources in catalog insertion order, optionally
// filtered by scope. An empty scope returns every resource.
func (c *Catalog) GetResources(scope string) []*Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Resource, 0, len(c.order))
	for _, name := range c.order {
		r := c.byName[name]
		if scope == "" || r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}

// Iter returns every resource in insertion order. Equivalent to
// GetResources("").
func (c *Catalog) Iter() []*Resource {
	return c.GetResources("")
}

// Scopes returns the set of distinct non-empty scopes present in the
// catalog. Order is not part of the contract (the secondary index is a
// pure membership structure, unlike the primary insertion-ordered list).
func (c *Catalog) Scopes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.scopeIndex))
	for scope := range c.scopeIndex {
		out = append(out, scope)
	}
	return out
}

func (c *Catalog) indexScope(r *Resource) {
	if r.Scope == "" {
		return
	}
	set, ok := c.scopeIndex[r.Scope]
	if !ok {
		set = sets.New[string]()
		c.scopeIndex[r.Scope] = set
	}
	set.Insert(r.Name)
}

func (c *Catalog) unindexScope(r *Resource) {
	if r.Scope == "" {
		return
	}
	if set, ok := c.scopeIndex[r.Scope]; ok {
		set.Delete(r.Name)
		if set.Len() == 0 {
			delete(c.scopeIndex, r.Scope)
		}
	}
}
