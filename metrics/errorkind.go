package metrics

import "github.com/mrjk/resourcegraph/errs"

// errorKind extracts the taxonomy Kind label from a resolver error for
// the resourcegraph_resolve_errors_total{kind} counter, falling back to
// "unknown" for errors outside the errs.Error taxonomy.
func errorKind(err error) string {
	var e *errs.Error
	if asErr, ok := err.(*errs.Error); ok {
		e = asErr
	}
	if e == nil {
		return "unknown"
	}
	return string(e.Kind)
}
