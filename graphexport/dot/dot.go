// Package dot renders a graphexport.Graph as Graphviz DOT text. It is an
// external collaborator in the sense spec §4.G describes: the core never
// mandates a concrete image format, and DOT is one of several emitters
// that could sit on top of graphexport.Graph.
//
// No Graphviz/DOT-writing library is present anywhere in the reference
// corpus this module is grounded on (the closest analogue, an
// OpenTofu-style internal/dag.Dot, ships without its implementation in
// the retrieval pack available here), so this emitter is hand-written
// against the standard library's text/template and strings packages
// rather than against a library example.
package dot

import (
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/mrjk/resourcegraph/graphexport"
)

const tmplSource = `digraph resourcegraph {
  rankdir=LR;
{{- range .Clusters}}
  subgraph "cluster_{{.Scope}}" {
    label={{.Scope | quote}};
{{- range .Members}}
    {{. | quote}};
{{- end}}
  }
{{- end}}
{{- range .Nodes}}
  {{.Name | quote}} [label={{.Name | quote}}];
{{- end}}
{{- range .Edges}}
  {{.From | quote}} -> {{.To | quote}} [label={{.EdgeLabel | quote}}];
{{- end}}
}
`

var tmpl = template.Must(template.New("dot").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(tmplSource))

type edgeView struct {
	From, To, EdgeLabel string
}

// Render renders g as Graphviz DOT text. Edge labels combine the rule
// string and effective match name, e.g. "database.main! (main)".
func Render(g *graphexport.Graph) (string, error) {
	edges := make([]edgeView, len(g.Edges))
	for i, e := range g.Edges {
		label := e.Rule
		if e.MatchName != "" {
			label = e.Rule + " (" + e.MatchName + ")"
		}
		edges[i] = edgeView{From: e.From, To: e.To, EdgeLabel: label}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	var sb strings.Builder
	err := tmpl.Execute(&sb, struct {
		Nodes    []graphexport.Node
		Edges    []edgeView
		Clusters []graphexport.Cluster
	}{Nodes: g.Nodes, Edges: edges, Clusters: g.Clusters})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
