package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Type  string
	Limit int
}

// SearchHit is one line of the search output.
type SearchHit struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search FILTER",
		Short: "Find elements by property values",
		Long: `Find the elements whose readable properties or extended data columns
satisfy FILTER. Conditions use =, <, >, <=, >= or CONTAINS(field, 'words')
and combine with AND / OR.

Examples:
  kektorgraph search "age >= 30" -f social.yaml
  kektorgraph search "name = 'Bob' OR CONTAINS(bio, 'graph')" -f social.yaml
  kektorgraph search "since > 2020" -f social.yaml --type edge`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "restrict to vertex or edge")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of results (0 = no limit)")

	return cmd
}

func runSearch(opts *SearchOptions, cmd *cobra.Command, filter string) error {
	q := search.Query{Filter: filter, Limit: opts.Limit}
	switch opts.Type {
	case "":
	case "vertex":
		q.Types = []core.ElementType{core.ElementTypeVertex}
	case "edge":
		q.Types = []core.ElementType{core.ElementTypeEdge}
	default:
		return fmt.Errorf("invalid type %q: must be vertex or edge", opts.Type)
	}

	g, err := loadGraph(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	refs, err := g.index.Search(q, g.auths)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	hits := make([]SearchHit, 0, len(refs))
	for _, ref := range refs {
		hits = append(hits, SearchHit{Type: ref.Type.String(), ID: ref.ID})
	}
	return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Print(hits, func(w io.Writer) {
		if len(hits) == 0 {
			fmt.Fprintln(w, "no match")
			return
		}
		for _, h := range hits {
			fmt.Fprintf(w, "%s %s\n", h.Type, h.ID)
		}
	})
}

