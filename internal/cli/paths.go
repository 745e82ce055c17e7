package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/pkg/engine"
)

// PathsOptions holds flags for the paths command.
type PathsOptions struct {
	*RootOptions
	MaxHops        int
	Labels         []string
	ExcludedLabels []string
	Any            bool
}

// PathsResult is the JSON output of the paths command.
type PathsResult struct {
	Source string        `json:"source"`
	Dest   string        `json:"dest"`
	Paths  []engine.Path `json:"paths"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "paths SOURCE DEST",
		Short: "Find paths between two vertices",
		Long: `Enumerate the paths between two vertices that use at most --max-hops
edges, following edges in both directions. Vertices and edges the reader
cannot see are skipped.

Examples:
  kektorgraph paths alice carol -f social.yaml
  kektorgraph paths alice carol -f social.yaml --max-hops 3 --label knows
  kektorgraph paths alice carol -f social.yaml --auths public --any`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.MaxHops, "max-hops", 0, "largest number of edges per path (default: engine option)")
	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "only follow edges with these labels")
	cmd.Flags().StringSliceVar(&opts.ExcludedLabels, "exclude-label", nil, "never follow edges with these labels")
	cmd.Flags().BoolVar(&opts.Any, "any", false, "stop at the first path found")

	return cmd
}

func runPaths(opts *PathsOptions, cmd *cobra.Command, source, dest string) error {
	g, err := loadGraph(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	findOpts := engine.FindPathOptions{
		SourceVertexID: source,
		DestVertexID:   dest,
		MaxHops:        opts.MaxHops,
		Labels:         opts.Labels,
		ExcludedLabels: opts.ExcludedLabels,
		GetAnyPath:     opts.Any,
	}
	if opts.Verbose {
		findOpts.ProgressCallback = func(p engine.Progress) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %3.0f%%\n", p.Step, p.Fraction*100)
		}
	}

	paths, err := g.engine.FindPaths(findOpts, g.auths)
	if err != nil {
		return fmt.Errorf("find paths: %w", err)
	}

	result := PathsResult{Source: source, Dest: dest, Paths: paths}
	return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Print(result, func(w io.Writer) {
		if len(paths) == 0 {
			fmt.Fprintf(w, "no path from %s to %s\n", source, dest)
			return
		}
		for _, p := range paths {
			fmt.Fprintln(w, strings.Join(p, " -> "))
		}
	})
}
