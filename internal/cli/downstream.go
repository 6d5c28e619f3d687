package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/query"
)

func (c *CLI) downstreamCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "downstream <file> <edge-id>",
		Short: "Show the requests an edge led to",
		Long: `Show every network request that would not have happened without the
given edge, nested by which request caused which.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := id.ParseEdge(args[1]); err != nil {
				return err
			}
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			reqs, err := query.DownstreamRequests(g, graph.EdgeID(args[1]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reqs)
			}
			if len(reqs) == 0 {
				printInfo(out, "No requests depend on %s", args[1])
				return nil
			}
			printRequestTree(out, reqs, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printRequestTree(w io.Writer, reqs []query.DownstreamRequest, depth int) {
	for _, r := range reqs {
		fmt.Fprintf(w, "%s%s %s %s %s\n",
			strings.Repeat("  ", depth),
			StyleDim.Render(iconArrow),
			StyleNumber.Render(strconv.FormatUint(r.RequestID, 10)),
			StyleDim.Render(r.RequestType),
			StyleValue.Render(r.URL))
		printRequestTree(w, r.Children, depth+1)
	}
}

func (c *CLI) requestInfoCommand() *cobra.Command {
	var (
		frame  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "request-info <file> <request-id>",
		Short: "Show what a network request fetched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "request id %q is not a number", args[1])
			}
			var fid id.FrameID
			if frame != "" {
				if fid, err = id.ParseFrameID(frame); err != nil {
					return err
				}
			}
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			info, err := query.LookupRequest(g, rid, fid)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printKeyValue(out, "url", info.URL)
			printKeyValue(out, "request type", info.RequestType)
			printKeyValue(out, "resource type", info.ResourceType)
			printKeyValue(out, "status", info.Status)
			printKeyValue(out, "size", info.Size)
			printKeyValue(out, "response hash", info.ResponseHash.String())
			printKeyValue(out, "headers", "")
			for _, line := range strings.Split(strings.TrimSpace(info.Headers), "\n") {
				if line != "" {
					printDetail(out, "%s", line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&frame, "frame", "", "frame id of a merged remote frame (default: root frame)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
