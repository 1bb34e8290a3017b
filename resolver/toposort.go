package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrjk/resourcegraph/errs"
)

type color int

const (
	white color = iota
	gray
	black
)

// topoSort orders edgeMap's keys via three-color DFS (spec §4.F):
// visiting a gray node is a cycle, sibling order is the order edges were
// recorded in edgeMap[node] (which traces back to catalog insertion
// order), and the synthetic root sorts to the tail since every other
// node is, transitively, one of its dependencies.
func topoSort(edgeMap map[string][]EdgeLink) ([]string, error) {
	colors := make(map[string]color, len(edgeMap))
	order := make([]string, 0, len(edgeMap))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, stack...), name)
			return errs.New(errs.CycleDetected, fmt.Sprintf("cycle detected: %s", strings.Join(cycle, " -> "))).
				WithContext("cycle", cycle)
		}

		colors[name] = gray
		stack = append(stack, name)

		for _, e := range edgeMap[name] {
			if err := visit(e.Provider.Owner); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		colors[name] = black
		order = append(order, name)
		return nil
	}

	if err := visit(rootResourceName); err != nil {
		return nil, err
	}
	// Any node present in edgeMap but not reachable from the root would
	// be a resolver-walk bug (the walk only ever records nodes it
	// reached from the root); visit them defensively, in sorted order so
	// the fallback itself stays deterministic, rather than silently
	// dropping entries.
	remaining := make([]string, 0, len(edgeMap))
	for name := range edgeMap {
		if colors[name] == white {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	for _, name := range remaining {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return order, nil
}
