// Package link defines the typed provider/requirement link primitives
// and the cardinality-aware matching algorithm that sits at the center
// of the resolver.
package link

import (
	"strings"

	"github.com/mrjk/resourcegraph/errs"
	"github.com/mrjk/resourcegraph/rule"
)

// Cardinality is the (min, max) bound a modifier places on the number of
// providers a requirement may match. Max of -1 means unbounded.
type Cardinality struct {
	Min int
	Max int
}

var cardinalities = map[string]Cardinality{
	"!": {Min: 1, Max: 1},
	"?": {Min: 0, Max: 1},
	"+": {Min: 1, Max: -1},
	"*": {Min: 0, Max: -1},

	"one":          {Min: 1, Max: 1},
	"zero_or_one":  {Min: 0, Max: 1},
	"one_or_many":  {Min: 1, Max: -1},
	"zero_or_many": {Min: 0, Max: -1},
}

// CardinalityFor returns the (min, max) bound for a short-form modifier
// or its long-name synonym (one, zero_or_one, one_or_many, zero_or_many).
func CardinalityFor(mod string) (Cardinality, error) {
	c, ok := cardinalities[mod]
	if !ok {
		return Cardinality{}, errs.New(errs.MalformedRule, "invalid cardinality modifier "+mod)
	}
	return c, nil
}

// ProviderLink is a capability exposed by a resource. Modifiers on
// provider rules are accepted at the rule layer and discarded here.
type ProviderLink struct {
	Kind        string
	Instance    string
	HasInstance bool
	Owner       string
}

// RequirementLink is a capability a resource depends on, with its
// cardinality modifier.
type RequirementLink struct {
	Kind        string
	Instance    string
	HasInstance bool
	Mod         string
	Owner       string
}

// NewProviderLink binds a parsed rule.Template to an owning resource.
func NewProviderLink(t rule.Template, owner string) ProviderLink {
	return ProviderLink{Kind: t.Kind, Instance: t.Instance, HasInstance: t.HasInstance, Owner: owner}
}

// NewRequirementLink binds a parsed rule.Template to an owning resource.
func NewRequirementLink(t rule.Template, owner string) RequirementLink {
	mod := t.Mod
	if mod == "" {
		mod = "!"
	}
	return RequirementLink{Kind: t.Kind, Instance: t.Instance, HasInstance: t.HasInstance, Mod: mod, Owner: owner}
}

// Identity returns the (kind, instance) tuple used for provider
// deduplication within a single owning resource.
func (p ProviderLink) Identity() (string, string, bool) {
	return p.Kind, p.Instance, p.HasInstance
}

// Rule renders the canonical "kind[.instance]" form (providers carry no
// modifier).
func (p ProviderLink) Rule() string {
	var sb strings.Builder
	sb.WriteString(p.Kind)
	if p.HasInstance {
		sb.WriteByte('.')
		sb.WriteString(p.Instance)
	}
	return sb.String()
}

// Rule renders the canonical "kind[.instance]mod" form.
func (r RequirementLink) Rule() string {
	var sb strings.Builder
	sb.WriteString(r.Kind)
	if r.HasInstance {
		sb.WriteByte('.')
		sb.WriteString(r.Instance)
	}
	sb.WriteString(r.Mod)
	return sb.String()
}
