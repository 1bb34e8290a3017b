// Command resourcegraphctl is a one-shot CLI driver: it loads a catalog
// YAML document, runs a single resolve, and prints the dependency order
// or a graph export. Grounded on the teacher's cmd/engine-module-client
// (flag-based one-shot gRPC smoke test) adapted to a local, in-process
// resolve instead of a network call.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrjk/resourcegraph/config"
	"github.com/mrjk/resourcegraph/graphexport"
	"github.com/mrjk/resourcegraph/graphexport/dot"
	"github.com/mrjk/resourcegraph/providerindex"
	"github.com/mrjk/resourcegraph/resolver"
)

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

type remapFlag map[string]string

func (m remapFlag) String() string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (m remapFlag) Set(v string) error {
	kind, instance, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("remap %q must be kind=instance", v)
	}
	m[kind] = instance
	return nil
}

func main() {
	var configPath string
	var format string
	var features stringList
	remap := remapFlag{}

	flag.StringVar(&configPath, "config", "", "path to a catalog YAML document (required)")
	flag.StringVar(&format, "format", "text", "output format: text, json, or dot")
	flag.Var(&features, "feature", "a requested feature rule; repeatable (defaults to the document's own features)")
	flag.Var(remap, "remap", "a kind=instance remap rule; repeatable (merged over the document's own remap_rules)")
	flag.Parse()

	if configPath == "" {
		fmt.Fprintln(os.Stderr, "resourcegraphctl: -config is required")
		os.Exit(2)
	}

	f, err := os.Open(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resourcegraphctl: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, doc, err := config.BuildCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resourcegraphctl: %v\n", err)
		os.Exit(1)
	}

	effectiveFeatures := []string(features)
	if len(effectiveFeatures) == 0 {
		effectiveFeatures = doc.Features
	}
	effectiveRemap := map[string]string{}
	for k, v := range doc.RemapRules {
		effectiveRemap[k] = v
	}
	for k, v := range remap {
		effectiveRemap[k] = v
	}

	idx := providerindex.Build(cat)
	r := resolver.New(cat, idx, effectiveFeatures, effectiveRemap)
	order, err := r.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resourcegraphctl: resolve failed: %v\n", err)
		os.Exit(1)
	}

	switch format {
	case "text":
		for _, name := range order {
			fmt.Println(name)
		}
	case "json":
		g := graphexport.Build(cat, r.EdgeMap())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			DepOrder []string           `json:"dep_order"`
			Graph    *graphexport.Graph `json:"graph"`
		}{DepOrder: order, Graph: g}); err != nil {
			fmt.Fprintf(os.Stderr, "resourcegraphctl: %v\n", err)
			os.Exit(1)
		}
	case "dot":
		g := graphexport.Build(cat, r.EdgeMap())
		out, err := dot.Render(g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resourcegraphctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
	default:
		fmt.Fprintf(os.Stderr, "resourcegraphctl: unknown -format %q\n", format)
		os.Exit(2)
	}
}
