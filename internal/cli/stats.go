package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/query"
)

// summary is the cached overview of a recording.
type summary struct {
	Version   string         `json:"version,omitempty"`
	URL       string         `json:"url,omitempty"`
	FrameID   string         `json:"frame_id,omitempty"`
	IsRoot    bool           `json:"is_root"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	NodeKinds map[string]int `json:"node_kinds"`
	EdgeKinds map[string]int `json:"edge_kinds"`
}

func summarize(g *graph.Graph) summary {
	s := summary{
		IsRoot:    g.IsRoot(),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		NodeKinds: map[string]int{},
		EdgeKinds: map[string]int{},
	}
	if d, ok := g.Descriptor(); ok {
		s.Version, s.URL = d.Version, d.URL
		if !d.FrameID.IsZero() {
			s.FrameID = d.FrameID.String()
		}
	}
	for k, n := range g.CountNodesByKind() {
		s.NodeKinds[string(k)] = n
	}
	for k, n := range g.CountEdgesByKind() {
		s.EdgeKinds[string(k)] = n
	}
	return s
}

func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarize a recording by node and edge kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			hash, err := hashFile(args[0])
			if err != nil {
				return err
			}
			key := c.keyer().GraphKey(hash, c.mergeFrames())
			data, hit, err := c.cached(ctx, key, func() ([]byte, error) {
				g, err := c.loadGraph(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return json.Marshal(summarize(g))
			})
			if err != nil {
				return err
			}
			var s summary
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			if s.URL != "" {
				printKeyValue(out, "url", s.URL)
			}
			if s.Version != "" {
				printKeyValue(out, "version", s.Version)
			}
			if s.FrameID != "" {
				printKeyValue(out, "frame", s.FrameID)
			}
			printStats(out, s.Nodes, s.Edges, hit)
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(countTable(s.NodeKinds, "node kind")))
			fmt.Fprintln(out, renderTable(countTable(s.EdgeKinds, "edge kind")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// countTable lists counts by descending count, then name.
func countTable(counts map[string]int, label string) query.Table {
	names := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	t := query.Table{Columns: []string{label, "count"}, Rows: [][]string{}}
	for _, n := range names {
		t.Rows = append(t.Rows, []string{n, strconv.Itoa(counts[n])})
	}
	return t
}
