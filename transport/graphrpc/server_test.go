package graphrpc

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mrjk/resourcegraph/link"
)

type recordingObserver struct {
	calls int
}

func (o *recordingObserver) OnMatch(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink) {
	o.calls++
}

func TestResolve_LinearChainOverStruct(t *testing.T) {
	req, err := structpb.NewStruct(map[string]any{
		"resources": []any{
			map[string]any{"name": "db", "provides": []any{"database.main"}},
			map[string]any{"name": "app", "provides": []any{"app.web"}, "requires": []any{"database.main"}},
		},
		"features": []any{"app.web"},
	})
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}

	svc := &ResolverService{}
	resp, err := svc.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := resp.AsMap()
	if _, isErr := out["error"]; isErr {
		t.Fatalf("unexpected error field in response: %v", out)
	}
	depOrder, _ := out["dep_order"].([]any)
	want := []string{"db", "app", "__build_ctx__"}
	if len(depOrder) != len(want) {
		t.Fatalf("got dep_order %v, want %v", depOrder, want)
	}
	for i, w := range want {
		if depOrder[i] != w {
			t.Fatalf("got dep_order %v, want %v", depOrder, want)
		}
	}
}

func TestResolve_DebugObserverReceivesEveryMatch(t *testing.T) {
	req, err := structpb.NewStruct(map[string]any{
		"resources": []any{
			map[string]any{"name": "db", "provides": []any{"database.main"}},
			map[string]any{"name": "app", "provides": []any{"app.web"}, "requires": []any{"database.main"}},
		},
		"features": []any{"app.web"},
	})
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}

	obs := &recordingObserver{}
	svc := &ResolverService{Debug: obs}
	if _, err := svc.Resolve(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.calls == 0 {
		t.Fatal("expected the configured Debug observer to receive match events, got none")
	}
}

func TestResolve_UnsatisfiedRequirementReportsErrorField(t *testing.T) {
	req, err := structpb.NewStruct(map[string]any{
		"resources": []any{
			map[string]any{"name": "db", "provides": []any{"database.main"}},
		},
		"features": []any{"proxy"},
	})
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}

	svc := &ResolverService{}
	resp, err := svc.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	out := resp.AsMap()
	errField, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected an error field, got %v", out)
	}
	if errField["kind"] != "UnsatisfiedRequirement" {
		t.Fatalf("got error kind %v", errField["kind"])
	}
}
