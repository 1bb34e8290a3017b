// Package graphexport projects a resolved edge map into a neutral
// adjacency description (spec §4.G) that any renderer — DOT, JSON,
// an in-memory graph library — can consume without reaching back into
// the catalog or resolver internals.
package graphexport

import (
	"sort"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/resolver"
)

// Node is a participating resource: its name, scope, and attribute bag.
type Node struct {
	Name  string
	Scope string
	Attrs map[string]any
}

// Edge is (from=provider, to=requirer, rule=human-readable requirement
// string, match_name), per spec §4.G.
type Edge struct {
	From      string
	To        string
	Rule      string
	MatchName string
}

// Cluster groups node names sharing a non-empty scope, an optional hint
// for renderers that support subgraphs (e.g. Graphviz clusters).
type Cluster struct {
	Scope   string
	Members []string
}

// Graph is the read-only neutral projection of a resolver run.
type Graph struct {
	Nodes    []Node
	Edges    []Edge
	Clusters []Cluster
}

// Build projects edgeMap (as produced by resolver.Resolver.EdgeMap) into
// a Graph. cat supplies each node's scope and attribute bag; the
// synthetic root is not present in cat and is projected with an empty
// scope and attribute bag.
func Build(cat *catalog.Catalog, edgeMap map[string][]resolver.EdgeLink) *Graph {
	g := &Graph{}
	clusterOf := map[string][]string{}

	names := make([]string, 0, len(edgeMap))
	for name := range edgeMap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := Node{Name: name, Attrs: map[string]any{}}
		if r, err := cat.GetResource(name); err == nil {
			node.Scope = r.Scope
			for k, v := range r.Attrs {
				node.Attrs[k] = v
			}
		}
		g.Nodes = append(g.Nodes, node)
		if node.Scope != "" {
			clusterOf[node.Scope] = append(clusterOf[node.Scope], name)
		}

		for _, e := range edgeMap[name] {
			g.Edges = append(g.Edges, Edge{
				From:      e.Provider.Owner,
				To:        name,
				Rule:      e.Requirement.Rule(),
				MatchName: e.MatchName,
			})
		}
	}

	scopes := make([]string, 0, len(clusterOf))
	for scope := range clusterOf {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		members := clusterOf[scope]
		sort.Strings(members)
		g.Clusters = append(g.Clusters, Cluster{Scope: scope, Members: members})
	}

	return g
}
