package graphrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mrjk/resourcegraph/catalog"
	"github.com/mrjk/resourcegraph/errs"
	"github.com/mrjk/resourcegraph/metrics"
	"github.com/mrjk/resourcegraph/providerindex"
	"github.com/mrjk/resourcegraph/resolver"
)

// ResolverService implements Server by decoding a request Struct into a
// transient Catalog, running a Resolver over it, and encoding the
// resulting dependency order back into a Struct.
type ResolverService struct {
	Log logr.Logger

	// Debug, if set, receives every match decision from every Resolve
	// call (spec §4.E's debug hook) — typically a *wsobserver.Hub, wired
	// in so the debug stream is reachable from a running server instead
	// of only from its own unit test.
	Debug resolver.DebugObserver
}

var rec metrics.Recorder

// Resolve implements Server.
func (s *ResolverService) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID := uuid.New().String()
	log := s.Log.WithValues("requestId", requestID)

	fields := req.AsMap()

	cat, err := decodeCatalog(fields)
	if err != nil {
		log.Error(err, "decode catalog failed")
		return encodeError(requestID, err)
	}
	features := decodeStringList(fields["features"])
	remap := decodeStringMap(fields["remap_rules"])

	idx := providerindex.Build(cat)
	opts := []resolver.Option{resolver.WithLogger(log), resolver.WithMetricsRecorder(rec)}
	if s.Debug != nil {
		opts = append(opts, resolver.WithDebugObserver(s.Debug))
	}
	r := resolver.New(cat, idx, features, remap, opts...)

	start := time.Now()
	order, err := r.Resolve()
	rec.ObserveSeconds(time.Since(start).Seconds())
	if err != nil {
		log.Error(err, "resolve failed")
		return encodeError(requestID, err)
	}

	return structpb.NewStruct(map[string]any{
		"request_id": requestID,
		"dep_order":  toAnySlice(order),
	})
}

func decodeCatalog(fields map[string]any) (*catalog.Catalog, error) {
	cat := catalog.NewCatalog()
	raw, _ := fields["resources"].([]any)
	entries := make([]catalog.Entry, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("graphrpc: resources[%d] is not an object", i)
		}
		name, _ := m["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("graphrpc: resources[%d] missing \"name\"", i)
		}
		cfg := map[string]any{}
		for k, v := range m {
			if k == "name" {
				continue
			}
			cfg[k] = v
		}
		entries = append(entries, catalog.Entry{Name: name, Config: cfg})
	}
	if err := cat.AddResources(entries, "", false); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeStringList(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeStringMap(v any) map[string]string {
	raw, _ := v.(map[string]any)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func encodeError(requestID string, err error) (*structpb.Struct, error) {
	kind := "unknown"
	ctxFields := map[string]any{}
	var e *errs.Error
	if asErr, ok := err.(*errs.Error); ok {
		e = asErr
		kind = string(e.Kind)
		for k, v := range e.Context {
			ctxFields[k] = fmt.Sprintf("%v", v)
		}
	}
	out, encErr := structpb.NewStruct(map[string]any{
		"request_id": requestID,
		"error": map[string]any{
			"kind":    kind,
			"message": err.Error(),
			"context": ctxFields,
		},
	})
	if encErr != nil {
		return nil, encErr
	}
	return out, nil
}
