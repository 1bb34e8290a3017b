package link

import (
	"fmt"

	"github.com/mrjk/resourcegraph/errs"
)

// DefaultInstanceName is used as a requirement's match name when neither
// the requirement nor a remap rule supplies an explicit instance.
const DefaultInstanceName = "default"

// Matcher is the documented strategy extension point (spec §4.E, §9): an
// implementer may substitute environment filtering, feature toggles,
// priority, or alternative-implementation selection by providing a type
// satisfying this interface. The default implementation is Match.
type Matcher interface {
	MatchRequirement(req RequirementLink, level int) (matchName string, providers []ProviderLink, err error)
}

// DefaultMatcher implements Matcher using the algorithm in Match.
type DefaultMatcher struct {
	Index            []ProviderLink
	RemapRules       map[string]string
	DefaultMode      string
	RemapRequirement bool
}

func (m DefaultMatcher) MatchRequirement(req RequirementLink, level int) (string, []ProviderLink, error) {
	return Match(req, m.Index, m.RemapRules, m.DefaultMode, m.RemapRequirement)
}

// Match is the central matching primitive (spec §4.B). It applies
// remapping, filters the provider index by kind and then by instance,
// and validates the candidate count against the requirement's (or
// defaultMode's) cardinality.
func Match(
	req RequirementLink,
	index []ProviderLink,
	remapRules map[string]string,
	defaultMode string,
	remapRequirement bool,
) (matchName string, providers []ProviderLink, err error) {
	effective := req
	if remapRequirement {
		if override, ok := remapRules[req.Kind]; ok {
			effective.Instance, effective.HasInstance = override, true
		}
	}

	var byKind []ProviderLink
	for _, p := range index {
		if p.Kind == effective.Kind {
			byKind = append(byKind, p)
		}
	}

	candidates := byKind
	if effective.HasInstance {
		var byInstance []ProviderLink
		for _, p := range byKind {
			if p.HasInstance && p.Instance == effective.Instance {
				byInstance = append(byInstance, p)
			}
		}
		// Kind-first, instance-as-refinement: an empty instance-filtered
		// set falls back to the kind-only set rather than failing outright.
		if len(byInstance) > 0 {
			candidates = byInstance
		}
	}

	matchName = DefaultInstanceName
	if effective.HasInstance {
		matchName = effective.Instance
	}

	mod := req.Mod
	if mod == "" {
		mod = defaultMode
	}
	card, cardErr := CardinalityFor(mod)
	if cardErr != nil {
		return "", nil, cardErr
	}

	candidateNames := make([]string, 0, len(byKind))
	for _, p := range byKind {
		candidateNames = append(candidateNames, instanceNameOrDefault(p))
	}

	if len(candidates) < card.Min {
		return "", nil, errs.New(errs.UnsatisfiedRequirement,
			fmt.Sprintf("requirement %s matched %d provider(s), need at least %d", req.Rule(), len(candidates), card.Min)).
			WithContext("resource", req.Owner).
			WithContext("requirement", req.Rule()).
			WithContext("effective", effective.Rule()).
			WithContext("candidates", candidateNames).
			WithContext("cardinality", card)
	}
	if card.Max != -1 && len(candidates) > card.Max {
		return "", nil, errs.New(errs.AmbiguousRequirement,
			fmt.Sprintf("requirement %s matched %d provider(s), allow at most %d", req.Rule(), len(candidates), card.Max)).
			WithContext("resource", req.Owner).
			WithContext("requirement", req.Rule()).
			WithContext("effective", effective.Rule()).
			WithContext("candidates", candidateNames).
			WithContext("cardinality", card)
	}

	return matchName, candidates, nil
}

func instanceNameOrDefault(p ProviderLink) string {
	if p.HasInstance {
		return p.Instance
	}
	return DefaultInstanceName
}
