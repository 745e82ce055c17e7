package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Edge          bool
	At            int64
	IncludeHidden bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a vertex or an edge",
		Long: `Print one element as the reader sees it: visibility, properties,
edges and extended data tables.

Examples:
  kektorgraph show alice -f social.yaml
  kektorgraph show e5 -f social.yaml --edge --hidden
  kektorgraph show alice -f social.yaml --at 1700000000000 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Edge, "edge", false, "ID is an edge id")
	cmd.Flags().Int64Var(&opts.At, "at", 0, "read the element as of this time (unix milliseconds)")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", false, "include hidden elements and properties")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command, id string) error {
	g, err := loadGraph(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	hints := core.FetchHintsAll
	if opts.IncludeHidden {
		hints = core.FetchHintsAllIncludingHidden
	}
	endTime := core.Latest
	if opts.At > 0 {
		endTime = opts.At
	}

	var el engine.Element
	if opts.Edge {
		e, err := g.engine.GetEdgeAt(id, hints, endTime, g.auths)
		if err != nil {
			return err
		}
		if e != nil {
			el = e
		}
	} else {
		v, err := g.engine.GetVertexAt(id, hints, endTime, g.auths)
		if err != nil {
			return err
		}
		if v != nil {
			el = v
		}
	}
	if el == nil {
		return fmt.Errorf("element %q not found", id)
	}

	view := newElementView(el)
	return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Print(view, view.writeText)
}
