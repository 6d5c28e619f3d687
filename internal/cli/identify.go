package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

func (c *CLI) identifyCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <file> <node-or-edge-id>",
		Short: "Print a node or edge with its attributes",
		Example: `  pagegraph identify page_graph.graphml n42
  pagegraph identify page_graph.graphml e7:0A1B2C3D4E5F60718293A4B5C6D7E8F9`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v, err := lookupElement(g, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			switch el := v.(type) {
			case graph.Node:
				fmt.Fprintln(out, StyleTitle.Render(string(el.ID))+" "+StyleDim.Render(string(el.Kind())))
				printKeyValue(out, "timestamp", el.Timestamp.String())
				printFields(cmd, el.Type)
			case graph.Edge:
				fmt.Fprintln(out, StyleTitle.Render(string(el.ID))+" "+StyleDim.Render(string(el.Kind())))
				printKeyValue(out, "source", describeNode(g, el.Source))
				printKeyValue(out, "target", describeNode(g, el.Target))
				printKeyValue(out, "sequence", strconv.FormatInt(el.Sequence, 10))
				printKeyValue(out, "timestamp", el.Timestamp.String())
				printFields(cmd, el.Type)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// lookupElement resolves a raw node or edge id to a graph.Node or
// graph.Edge.
func lookupElement(g *graph.Graph, raw string) (any, error) {
	switch {
	case strings.HasPrefix(raw, string(id.NodePrefix)):
		if _, err := id.ParseNode(raw); err != nil {
			return nil, err
		}
		n, ok := g.Node(graph.NodeID(raw))
		if !ok {
			return nil, &errors.NodeNotFoundError{ID: raw}
		}
		return n, nil
	case strings.HasPrefix(raw, string(id.EdgePrefix)):
		if _, err := id.ParseEdge(raw); err != nil {
			return nil, err
		}
		e, ok := g.Edge(graph.EdgeID(raw))
		if !ok {
			return nil, &errors.EdgeNotFoundError{ID: raw}
		}
		return e, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidID, "%q is neither a node id (n...) nor an edge id (e...)", raw)
}

func describeNode(g *graph.Graph, nid graph.NodeID) string {
	n, ok := g.Node(nid)
	if !ok {
		return string(nid)
	}
	return fmt.Sprintf("%s (%s)", nid, n.Kind())
}

func printFields(cmd *cobra.Command, v any) {
	for _, f := range kind.Attributes(v) {
		value := f.Value
		if !f.Present {
			value = StyleDim.Render("absent")
		}
		printKeyValue(cmd.OutOrStdout(), f.Name, value)
	}
}
