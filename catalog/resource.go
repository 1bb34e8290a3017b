package catalog

import (
	"fmt"

	field "k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/mrjk/resourcegraph/errs"
	"github.com/mrjk/resourcegraph/link"
	"github.com/mrjk/resourcegraph/rule"
)

// Resource is a named entity that provides and requires typed
// capabilities, plus an opaque attribute bag for user payload (vars,
// desc, and any other caller-supplied keys). The core never inspects
// Attrs beyond the well-known keys it extracts at construction time.
type Resource struct {
	Name     string
	Scope    string
	Desc     string
	Provides []link.ProviderLink
	Requires []link.RequirementLink
	Attrs    map[string]any
}

// newResource builds a Resource from a structured config map, parsing
// "provides" and "requires" into link objects and binding their owner.
// A malformed rule anywhere in the config fails the whole construction,
// reported as a field.ErrorList folded into a single *errs.Error.
func newResource(name, scope string, config map[string]any) (*Resource, error) {
	var errList field.ErrorList

	r := &Resource{Name: name, Scope: scope, Attrs: map[string]any{}}

	if scopeRaw, ok := config["scope"]; ok && r.Scope == "" {
		if s, ok := scopeRaw.(string); ok {
			r.Scope = s
		} else {
			errList = append(errList, field.Invalid(field.NewPath("scope"), scopeRaw, "must be a string"))
		}
	}
	if descRaw, ok := config["desc"]; ok {
		if s, ok := descRaw.(string); ok {
			r.Desc = s
		} else {
			errList = append(errList, field.Invalid(field.NewPath("desc"), descRaw, "must be a string"))
		}
	}

	if providesRaw, ok := config["provides"]; ok {
		items, ok := asSlice(providesRaw)
		if !ok {
			errList = append(errList, field.Invalid(field.NewPath("provides"), providesRaw, "must be a list"))
		} else {
			fld := field.NewPath("provides")
			seen := map[[2]string]bool{}
			for i, item := range items {
				tmpl, err := rule.ParseProviderConfig(item)
				if err != nil {
					errList = append(errList, field.Invalid(fld.Index(i), item, err.Error()))
					continue
				}
				pl := link.NewProviderLink(tmpl, name)
				key := [2]string{pl.Kind, pl.Instance}
				if seen[key] {
					// Duplicate (owner, kind, instance) on the same resource: no-op.
					continue
				}
				seen[key] = true
				r.Provides = append(r.Provides, pl)
			}
		}
	}

	if requiresRaw, ok := config["requires"]; ok {
		items, ok := asSlice(requiresRaw)
		if !ok {
			errList = append(errList, field.Invalid(field.NewPath("requires"), requiresRaw, "must be a list"))
		} else {
			fld := field.NewPath("requires")
			for i, item := range items {
				tmpl, err := rule.ParseRequirementConfig(item)
				if err != nil {
					errList = append(errList, field.Invalid(fld.Index(i), item, err.Error()))
					continue
				}
				r.Requires = append(r.Requires, link.NewRequirementLink(tmpl, name))
			}
		}
	}

	if varsRaw, ok := config["vars"]; ok {
		if vars, ok := varsRaw.(map[string]any); ok {
			r.Attrs["vars"] = vars
		} else {
			errList = append(errList, field.Invalid(field.NewPath("vars"), varsRaw, "must be a map"))
		}
	}

	for k, v := range config {
		switch k {
		case "scope", "desc", "provides", "requires", "vars":
			continue
		default:
			r.Attrs[k] = v
		}
	}

	if len(errList) > 0 {
		return nil, errs.New(errs.MalformedRule, fmt.Sprintf("resource %q has an invalid configuration", name)).
			WithContext("resource", name).
			WithContext("fieldErrors", errList.ToAggregate().Error())
	}

	return r, nil
}

// NewTransientResource builds a Resource outside of any Catalog, using
// the same parsing and validation as a catalog-inserted resource. It is
// used to construct the resolver's synthetic seed resource (spec §4.E),
// which is never inserted into the user catalog.
func NewTransientResource(name, scope string, config map[string]any) (*Resource, error) {
	return newResource(name, scope, config)
}

func asSlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}

func (r *Resource) String() string {
	return fmt.Sprintf("Resource(%s, %s)", r.Name, r.Scope)
}
