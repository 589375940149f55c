package media

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Result is the outcome of resolving one file reference.
type Result struct {
	Ref   model.FileRef
	Value string
	OK    bool
}

// ResolveFunc resolves a single reference; false means it failed.
type ResolveFunc func(ctx context.Context, ref model.FileRef) (string, bool)

// ResolveAll runs fn over refs with at most limit calls in flight.
// results[i] always belongs to refs[i], whatever order the calls finish in.
func ResolveAll(ctx context.Context, limit int, refs []model.FileRef, fn ResolveFunc) []Result {
	results := make([]Result, len(refs))
	if len(refs) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, ref := range refs {
		g.Go(func() error {
			value, ok := fn(ctx, ref)
			results[i] = Result{Ref: ref, Value: value, OK: ok}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
