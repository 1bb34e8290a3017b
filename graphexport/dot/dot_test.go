package dot

import (
	"strings"
	"testing"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/graphexport"
	"github.com/mrjk/resourcegraph/providerindex"
	"github.com/mrjk/resourcegraph/resolver"
)

func TestRender_ProducesValidDotSkeleton(t *testing.T) {
	c := catalog.NewCatalog()
	must(t, c.AddResource("db", "", map[string]any{"provides": []any{"database.main"}}, false))
	must(t, c.AddResource("app", "", map[string]any{"provides": []any{"app.web"}, "requires": []any{"database.main"}}, false))

	idx := providerindex.Build(c)
	r := resolver.New(c, idx, []string{"app.web"}, nil)
	if _, err := r.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := Render(graphexport.Build(c, r.EdgeMap()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph resourcegraph {") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"db" -> "app"`) {
		t.Fatalf("expected db -> app edge, got: %s", out)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
