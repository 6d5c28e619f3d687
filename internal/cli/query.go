package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/query"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatTable = "table"
)

func (c *CLI) queryCommand() *cobra.Command {
	var (
		format string
		rawArg []string
	)

	cmd := &cobra.Command{
		Use:   "query <file> <name>",
		Short: "Run a built-in query",
		Long: `Run a built-in query over a recording and print the result.

Results are cached by the content of the recording, so repeated queries over
the same file skip parsing. Run "pagegraph queries" for the list.`,
		Example: `  pagegraph query page_graph.graphml deleted-elements
  pagegraph query page_graph.graphml modified-elements --arg min=3 --format table`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return query.Names(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, name := args[0], args[1]
			if err := checkFormat(format); err != nil {
				return err
			}
			qargs, err := parseArgs(rawArg)
			if err != nil {
				return err
			}
			if _, ok := query.Lookup(name); !ok {
				return errors.New(errors.ErrCodeInvalidQuery, "unknown query %q, run \"pagegraph queries\" for the list", name)
			}

			hash, err := hashFile(path)
			if err != nil {
				return err
			}
			keyArgs := maps.Clone(qargs)
			if keyArgs == nil {
				keyArgs = map[string]string{}
			}
			keyArgs["frames"] = strconv.FormatBool(c.mergeFrames())
			key := c.keyer().QueryKey(hash, name, keyArgs)

			data, hit, err := c.cached(ctx, key, func() ([]byte, error) {
				g, err := c.loadGraph(ctx, path)
				if err != nil {
					return nil, err
				}
				t, err := query.Run(ctx, g, name, qargs)
				if err != nil {
					return nil, err
				}
				return json.Marshal(t)
			})
			if err != nil {
				return err
			}
			var t query.Table
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			c.Logger.Debug("query", "name", name, "rows", t.Len(), "cached", hit)
			return writeTable(cmd.OutOrStdout(), t, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatCSV, "output format: csv, json or table")
	cmd.Flags().StringArrayVar(&rawArg, "arg", nil, "query argument as key=value (repeatable)")
	return cmd
}

func (c *CLI) queriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List the built-in queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := query.Table{Columns: []string{"name", "description", "arguments"}, Rows: [][]string{}}
			for _, q := range query.All() {
				var qa []string
				for _, a := range q.Args {
					qa = append(qa, fmt.Sprintf("%s=%s (%s)", a.Name, a.Default, a.Description))
				}
				t.Rows = append(t.Rows, []string{q.Name, q.Description, strings.Join(qa, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(t))
			return nil
		},
	}
}

func checkFormat(format string) error {
	switch format {
	case FormatCSV, FormatJSON, FormatTable:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (csv, json or table)", format)
}

// parseArgs splits key=value pairs.
func parseArgs(raw []string) (query.Args, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := query.Args{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "argument %q must look like key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}

func writeTable(w io.Writer, t query.Table, format string) error {
	switch format {
	case FormatJSON:
		return t.WriteJSON(w)
	case FormatTable:
		_, err := fmt.Fprintln(w, renderTable(t))
		return err
	}
	return t.WriteCSV(w)
}
