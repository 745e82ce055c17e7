// Package cli implements the kektorgraph command line: it loads a fixture
// graph into an in-memory engine and runs one query against it.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/internal/fixture"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/search"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Fixture        string
	Config         string
	Authorizations []string
	Verbose        bool
	Format         string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kektorgraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kektorgraph",
		Short: "Explore a property graph with cell-level visibility",
		Long: `kektorgraph loads a YAML graph fixture into an in-memory engine and
queries it: path finding, element inspection and property search, all
filtered by the authorizations given with --auths.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.Fixture, "fixture", "f", "", "path to the YAML graph fixture (required)")
	_ = cmd.MarkPersistentFlagRequired("fixture")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to the YAML engine options")
	cmd.PersistentFlags().StringSliceVarP(&opts.Authorizations, "auths", "a", nil, "authorization labels of the reader (default: every fixture label)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewPathsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

// graph is a loaded fixture.
type graph struct {
	engine *engine.Engine
	index  *search.MemoryIndex
	auths  visibility.Authorizations
}

func (g *graph) Close() {
	g.engine.Close()
}

// loadGraph opens an engine with a search index, applies the fixture and
// resolves the reader authorizations.
func loadGraph(opts *RootOptions, cmd *cobra.Command) (*graph, error) {
	engOpts, err := engine.LoadOptions(opts.Config)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	engOpts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	index := search.NewMemoryIndex(nil)
	engOpts.SearchIndex = index

	eng, err := engine.Open(engOpts)
	if err != nil {
		return nil, err
	}

	f, err := fixture.Load(opts.Fixture)
	if err != nil {
		eng.Close()
		return nil, err
	}
	auths, err := f.Apply(eng)
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("apply fixture %s: %w", opts.Fixture, err)
	}
	if opts.Authorizations != nil {
		auths = visibility.NewAuthorizations(opts.Authorizations...)
	}
	return &graph{engine: eng, index: index, auths: auths}, nil
}
