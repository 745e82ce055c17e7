package engine

import (
	"slices"
	"time"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// pathFinder holds the state of one FindPaths call.
type pathFinder struct {
	engine  *Engine
	opts    FindPathOptions
	maxHops int
	dest    string
	auths   visibility.Authorizations

	seen  map[string]struct{}
	found []Path
}

// FindPaths enumerates the paths between two vertices that use at most
// MaxHops edges, following edges in both directions.
//
// The search is a depth-first traversal with backtracking: a vertex is never
// visited twice on the same path but may appear on several paths. Self-loops
// and edges whose other vertex cannot be read are skipped. If either endpoint
// is not readable with auths, no path is returned.
func (e *Engine) FindPaths(opts FindPathOptions, auths visibility.Authorizations) ([]Path, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	if opts.SourceVertexID == "" || opts.DestVertexID == "" {
		return nil, invalidArgument("path search needs a source and a destination vertex")
	}

	start := time.Now()
	defer func() {
		metrics.PathSearchDuration.WithLabelValues(e.opts.Name).Observe(time.Since(start).Seconds())
	}()

	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = e.opts.DefaultMaxHops
	}

	// 1. Resolve both endpoints
	src, err := e.project(core.ElementTypeVertex, opts.SourceVertexID, core.FetchHintsNone, core.Latest, auths)
	if err != nil || src == nil {
		return nil, err
	}
	dst, err := e.project(core.ElementTypeVertex, opts.DestVertexID, core.FetchHintsNone, core.Latest, auths)
	if err != nil || dst == nil {
		return nil, err
	}

	// 2. Depth-first search
	f := &pathFinder{
		engine:  e,
		opts:    opts,
		maxHops: maxHops,
		dest:    dst.ID,
		auths:   auths,
		seen:    make(map[string]struct{}),
	}
	if err := f.find(src.ID, maxHops, Path{src.ID}); err != nil {
		return nil, err
	}

	if opts.ProgressCallback != nil {
		opts.ProgressCallback(Progress{Fraction: 1, Step: ProgressStepComplete})
	}
	e.logger.Debug("path search finished",
		"source", opts.SourceVertexID, "dest", opts.DestVertexID, "max_hops", maxHops, "paths", len(f.found))
	return f.found, nil
}

func (f *pathFinder) find(vertexID string, hops int, current Path) error {
	f.seen[vertexID] = struct{}{}
	defer delete(f.seen, vertexID)

	if vertexID == f.dest {
		f.found = append(f.found, slices.Clone(current))
		return nil
	}
	if hops <= 0 {
		return nil
	}

	children, err := f.children(vertexID)
	if err != nil {
		return err
	}

	top := hops == f.maxHops
	for i, child := range children {
		if top && f.opts.ProgressCallback != nil {
			f.opts.ProgressCallback(Progress{
				Fraction: float64(i) / float64(len(children)),
				Step:     ProgressStepSearchingEdges,
				Current:  i + 1,
				Total:    len(children),
			})
		}
		if _, ok := f.seen[child]; ok {
			continue
		}
		if err := f.find(child, hops-1, append(current, child)); err != nil {
			return err
		}
		if f.opts.GetAnyPath && len(f.found) > 0 {
			return nil
		}
	}
	return nil
}

// children returns the readable neighbours of vertexID through edges that
// pass the label filters.
func (f *pathFinder) children(vertexID string) ([]string, error) {
	edges, err := f.engine.vertexEdges(vertexID, core.DirectionBoth, f.opts.Labels, core.FetchHintsNone, core.Latest, f.auths)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, edge := range edges {
		if slices.Contains(f.opts.ExcludedLabels, edge.Label) {
			continue
		}
		other := edge.OtherVertexID(vertexID)
		if other == vertexID || slices.Contains(ids, other) {
			continue
		}
		v, err := f.engine.project(core.ElementTypeVertex, other, core.FetchHintsNone, core.Latest, f.auths)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		ids = append(ids, other)
	}
	return ids, nil
}
