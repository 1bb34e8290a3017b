// Package rule parses provider and requirement rule strings into their
// structured (kind, instance, mod) form.
//
// Canonical grammar (spec §6):
//
//	rule     := kind ('.' instance)? mod?
//	kind     := ident
//	instance := ident
//	ident    := [A-Za-z0-9_-]+
//	mod      := '!' | '?' | '+' | '*'
//
// Structured input accepts the long-form modifier synonyms (one,
// zero_or_one, one_or_many, zero_or_many) in addition to the short form.
package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mrjk/resourcegraph/errs"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ShortMods are the canonical single-character cardinality modifiers.
var ShortMods = []string{"!", "?", "+", "*"}

var modAliases = map[string]string{
	"!": "!", "one": "!",
	"?": "?", "zero_or_one": "?",
	"+": "+", "one_or_many": "+",
	"*": "*", "zero_or_many": "*",
}

// Template is the parsed form of a rule, before it is bound to an owner
// resource. Mod is "" for provider templates (modifiers on provider rules
// are accepted and ignored, per spec §9 open question 4).
type Template struct {
	Kind         string
	Instance     string
	HasInstance  bool
	Mod          string
	HadModifier  bool // true if a provider rule carried a (ignored) modifier
	Raw          string
}

// Rule reconstructs the canonical "kind[.instance][mod]" string for this
// template. Providers never emit a modifier.
func (t Template) Rule() string {
	var sb strings.Builder
	sb.WriteString(t.Kind)
	if t.HasInstance {
		sb.WriteByte('.')
		sb.WriteString(t.Instance)
	}
	if t.Mod != "" {
		sb.WriteString(t.Mod)
	}
	return sb.String()
}

func isIdent(s string) bool {
	return s != "" && identPattern.MatchString(s)
}

func normalizeMod(raw string) (string, error) {
	short, ok := modAliases[raw]
	if !ok {
		return "", errs.New(errs.MalformedRule, fmt.Sprintf("invalid modifier %q", raw)).
			WithContext("mod", raw)
	}
	return short, nil
}

// ParseProviderString parses a raw provider rule string. A trailing
// cardinality character is accepted and discarded (providers carry no
// cardinality); hadModifier reports whether one was present so callers
// may choose to warn.
func ParseProviderString(raw string) (Template, error) {
	body := raw
	hadModifier := false
	if n := len(body); n > 0 && isShortMod(body[n-1:]) {
		hadModifier = true
		body = body[:n-1]
	}
	kind, instance, hasInstance, err := splitKindInstance(body, raw)
	if err != nil {
		return Template{}, err
	}
	return Template{Kind: kind, Instance: instance, HasInstance: hasInstance, Raw: raw, HadModifier: hadModifier}, nil
}

// ParseRequirementString parses a raw requirement rule string. The
// trailing character is consumed as the modifier if it is one of
// "! ? + *"; otherwise the modifier defaults to "!" (one).
func ParseRequirementString(raw string) (Template, error) {
	body := raw
	mod := "!"
	if n := len(body); n > 0 && isShortMod(body[n-1:]) {
		mod = body[n-1:]
		body = body[:n-1]
	}
	kind, instance, hasInstance, err := splitKindInstance(body, raw)
	if err != nil {
		return Template{}, err
	}
	return Template{Kind: kind, Instance: instance, HasInstance: hasInstance, Mod: mod, Raw: raw}, nil
}

func isShortMod(c string) bool {
	for _, m := range ShortMods {
		if m == c {
			return true
		}
	}
	return false
}

func splitKindInstance(body, raw string) (kind string, instance string, hasInstance bool, err error) {
	parts := strings.Split(body, ".")
	switch len(parts) {
	case 1:
		kind = parts[0]
	case 2:
		kind, instance, hasInstance = parts[0], parts[1], true
	default:
		return "", "", false, errs.New(errs.MalformedRule, fmt.Sprintf("rule %q has more than one '.'", raw)).
			WithContext("raw", raw)
	}
	if !isIdent(kind) {
		return "", "", false, errs.New(errs.MalformedRule, fmt.Sprintf("rule %q has an invalid or empty kind", raw)).
			WithContext("raw", raw)
	}
	if hasInstance && !isIdent(instance) {
		return "", "", false, errs.New(errs.MalformedRule, fmt.Sprintf("rule %q has an invalid instance", raw)).
			WithContext("raw", raw)
	}
	return kind, instance, hasInstance, nil
}

// ParseProviderConfig accepts either a raw rule string or a structured
// mapping ({kind, instance?}) and normalizes it identically to
// ParseProviderString.
func ParseProviderConfig(v any) (Template, error) {
	switch val := v.(type) {
	case string:
		return ParseProviderString(val)
	case map[string]any:
		return templateFromMap(val, false)
	case Template:
		val.Mod = ""
		return val, nil
	default:
		return Template{}, errs.New(errs.MalformedRule, fmt.Sprintf("unsupported provider rule type %T", v))
	}
}

// ParseRequirementConfig accepts either a raw rule string or a structured
// mapping ({kind, instance?, mod?}) and normalizes it identically to
// ParseRequirementString. mod may be given in long-name form.
func ParseRequirementConfig(v any) (Template, error) {
	switch val := v.(type) {
	case string:
		return ParseRequirementString(val)
	case map[string]any:
		return templateFromMap(val, true)
	case Template:
		return val, nil
	default:
		return Template{}, errs.New(errs.MalformedRule, fmt.Sprintf("unsupported requirement rule type %T", v))
	}
}

func templateFromMap(m map[string]any, isRequirement bool) (Template, error) {
	kind, _ := m["kind"].(string)
	if !isIdent(kind) {
		return Template{}, errs.New(errs.MalformedRule, fmt.Sprintf("config has an invalid or empty kind: %v", m["kind"]))
	}
	t := Template{Kind: kind}
	if instRaw, ok := m["instance"]; ok && instRaw != nil {
		instance, ok := instRaw.(string)
		if !ok || !isIdent(instance) {
			return Template{}, errs.New(errs.MalformedRule, fmt.Sprintf("config has an invalid instance: %v", instRaw))
		}
		t.Instance, t.HasInstance = instance, true
	}
	if isRequirement {
		t.Mod = "!"
		if modRaw, ok := m["mod"]; ok && modRaw != nil {
			modStr, ok := modRaw.(string)
			if !ok {
				return Template{}, errs.New(errs.MalformedRule, fmt.Sprintf("config mod must be a string, got %T", modRaw))
			}
			norm, err := normalizeMod(modStr)
			if err != nil {
				return Template{}, err
			}
			t.Mod = norm
		}
	}
	return t, nil
}
