// Package config loads catalog definitions from YAML, the structured
// resource configuration format spec §6 documents. Config file loading
// is explicitly an external collaborator (spec §1 Non-goals), so this
// package sits outside catalog/resolver and only ever talks to them
// through their public constructors.
package config

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/mrjk/resourcegraph/catalog"
)

// Document is the top-level shape of a catalog YAML file. Resources is a
// YAML sequence rather than a mapping so insertion order survives the
// YAML->JSON->struct round trip sigs.k8s.io/yaml performs — a Go map
// would not (spec §9 "pick ordered containers deliberately").
type Document struct {
	Resources  []ResourceEntry    `json:"resources"`
	Features   []string           `json:"features,omitempty"`
	RemapRules map[string]string  `json:"remap_rules,omitempty"`
}

// ResourceEntry is one element of Document.Resources: the resource's
// name plus its structured configuration (spec §6), held as a raw map
// so every documented and caller-defined attribute round-trips.
type ResourceEntry struct {
	Name   string
	Config map[string]any
}

// UnmarshalJSON decodes a ResourceEntry from a flat object carrying
// "name" alongside the structured configuration fields (desc, scope,
// provides, requires, vars, ...), splitting "name" out into Name and
// leaving everything else in Config.
func (e *ResourceEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, _ := raw["name"].(string)
	if name == "" {
		return fmt.Errorf("config: resource entry missing a non-empty \"name\"")
	}
	delete(raw, "name")
	e.Name = name
	e.Config = raw
	return nil
}

// Load parses r as a Document. sigs.k8s.io/yaml converts YAML to JSON
// internally and decodes through encoding/json, the same path the
// teacher's CRD types rely on for their YAML/JSON duality.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	return &doc, nil
}

// BuildCatalog loads r and inserts every declared resource into a fresh
// Catalog in document order.
func BuildCatalog(r io.Reader) (*catalog.Catalog, *Document, error) {
	doc, err := Load(r)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.NewCatalog()
	entries := make([]catalog.Entry, len(doc.Resources))
	for i, e := range doc.Resources {
		entries[i] = catalog.Entry{Name: e.Name, Config: e.Config}
	}
	if err := cat.AddResources(entries, "", false); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return cat, doc, nil
}
