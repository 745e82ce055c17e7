// Package engine provides the embedded property-graph store.
//
// An Engine holds vertices and edges as append-only mutation logs, evaluates
// cell-level visibilities against caller authorizations, and orchestrates
// cascading deletes, hide/unhide, extended data tables, search index
// notification and path finding. All operations are synchronous and safe
// for concurrent use.
//
// Basic usage:
//
//	eng, err := engine.Open(engine.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	auths := eng.CreateAuthorizations("public")
//	v, err := eng.PrepareVertex("v1", "public", "person").Save(auths)
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// DefaultMaxHops is the path-finding hop budget used when none is given.
const DefaultMaxHops = 4

// Options configures the behavior of the Engine. The YAML-tagged fields can
// be loaded from a file with LoadOptions; collaborators are set in code.
type Options struct {
	// Name labels logs and metrics. Default: "default".
	Name string `yaml:"name"`

	// DefaultMaxHops is used by FindPaths when the request has no hop budget.
	DefaultMaxHops int `yaml:"default_max_hops"`

	// VisibilityCacheSize bounds the number of parsed visibility
	// expressions kept by the evaluator.
	VisibilityCacheSize int `yaml:"visibility_cache_size"`

	// LogLevel is one of "debug", "info", "warn", "error". It is only used
	// when Logger is nil.
	LogLevel string `yaml:"log_level"`

	// IDGenerator supplies ids for builders without one. Default: UUIDGenerator.
	IDGenerator IDGenerator `yaml:"-"`

	// SearchIndex is notified of every content change. Default: NopSearchIndex.
	SearchIndex SearchIndex `yaml:"-"`

	// Logger overrides the logger built from LogLevel.
	Logger *slog.Logger `yaml:"-"`

	// Now is the wall clock behind mutation timestamps. Default: time.Now.
	Now func() time.Time `yaml:"-"`
}

// DefaultOptions returns a standard configuration suitable for most use cases.
//
// Defaults:
//   - Name: "default"
//   - DefaultMaxHops: 4
//   - VisibilityCacheSize: 4096
//   - LogLevel: "info"
func DefaultOptions() Options {
	return Options{
		Name:                "default",
		DefaultMaxHops:      DefaultMaxHops,
		VisibilityCacheSize: 4096,
		LogLevel:            "info",
	}
}

// Engine is the main entry point of the graph store.
//
// Use Open() to initialize an Engine and Close() to shut it down.
type Engine struct {
	opts      Options
	logger    *slog.Logger
	evaluator *visibility.Evaluator
	clock     *core.IncreasingClock
	ids       IDGenerator
	index     SearchIndex

	vertices  *core.Table
	edges     *core.Table
	adjacency *core.AdjacencyIndex
	extended  *core.ExtendedDataStore
	metadata  *core.MetadataStore

	// Labels registered through CreateAuthorizations.
	authMu      sync.RWMutex
	knownLabels map[string]struct{}

	listenersMu    sync.RWMutex
	listeners      []listenerEntry
	nextListenerID ListenerID

	closed atomic.Bool
}

// Open initializes a new Engine instance using the provided options.
// Zero-valued options fall back to DefaultOptions.
func Open(opts Options) (*Engine, error) {
	defaults := DefaultOptions()
	if opts.Name == "" {
		opts.Name = defaults.Name
	}
	if opts.DefaultMaxHops <= 0 {
		opts.DefaultMaxHops = defaults.DefaultMaxHops
	}
	if opts.VisibilityCacheSize <= 0 {
		opts.VisibilityCacheSize = defaults.VisibilityCacheSize
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = UUIDGenerator{}
	}
	if opts.SearchIndex == nil {
		opts.SearchIndex = NopSearchIndex{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		level, err := parseLogLevel(opts.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	evaluator := visibility.NewEvaluatorSize(opts.VisibilityCacheSize)
	e := &Engine{
		opts:        opts,
		logger:      logger.With("component", "graph", "graph", opts.Name),
		evaluator:   evaluator,
		clock:       core.NewIncreasingClockFunc(opts.Now),
		ids:         opts.IDGenerator,
		index:       opts.SearchIndex,
		vertices:    core.NewTable(core.ElementTypeVertex),
		edges:       core.NewTable(core.ElementTypeEdge),
		adjacency:   core.NewAdjacencyIndex(),
		extended:    core.NewExtendedDataStore(evaluator),
		metadata:    core.NewMetadataStore(),
		knownLabels: make(map[string]struct{}),
	}
	e.updateRowGauges()
	return e, nil
}

// Close shuts the engine down. Later calls return ErrClosed; calling Close
// more than once is safe.
func (e *Engine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.logger.Debug("engine closed")
	}
	return nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Truncate removes every element, extended data row and adjacency entry and
// truncates the search index. Registered authorizations and metadata are
// kept.
func (e *Engine) Truncate() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.clearData()
	if err := e.index.Truncate(); err != nil {
		return e.indexFailed("truncate", err)
	}
	return nil
}

// Drop is Truncate plus the removal of metadata and registered
// authorizations. The search index is dropped.
func (e *Engine) Drop() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.clearData()
	e.metadata.Clear()

	e.authMu.Lock()
	e.knownLabels = make(map[string]struct{})
	e.authMu.Unlock()

	if err := e.index.Drop(); err != nil {
		return e.indexFailed("drop", err)
	}
	return nil
}

func (e *Engine) clearData() {
	e.vertices.Clear()
	e.edges.Clear()
	e.adjacency.Clear()
	e.extended.Clear()
	e.updateRowGauges()
	e.logger.Info("graph data cleared")
}

func (e *Engine) checkOpen() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (e *Engine) table(typ core.ElementType) *core.Table {
	if typ == core.ElementTypeEdge {
		return e.edges
	}
	return e.vertices
}

// timestamp returns ts when set, keeping the clock ahead of it, or the next
// clock value.
func (e *Engine) timestamp(ts int64) int64 {
	if ts > 0 {
		e.clock.Observe(ts)
		return ts
	}
	return e.clock.Next()
}

func (e *Engine) appended(typ core.ElementType, ms []core.Mutation) {
	for _, m := range ms {
		metrics.MutationsTotal.WithLabelValues(e.opts.Name, typ.String(), m.Kind().String()).Inc()
	}
}

func (e *Engine) updateRowGauges() {
	metrics.Rows.WithLabelValues(e.opts.Name, core.ElementTypeVertex.String()).Set(float64(e.vertices.Len()))
	metrics.Rows.WithLabelValues(e.opts.Name, core.ElementTypeEdge.String()).Set(float64(e.edges.Len()))
}

// indexFailed logs and counts a failed search index notification and wraps
// the error for the caller.
func (e *Engine) indexFailed(op string, err error) error {
	metrics.IndexErrorsTotal.WithLabelValues(e.opts.Name, op).Inc()
	e.logger.Warn("search index notification failed", "op", op, "error", err)
	return fmt.Errorf("search index %s: %w", op, err)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
