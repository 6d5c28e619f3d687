package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/kind"
	"github.com/matzehuels/pagegraph/pkg/query"
)

func (c *CLI) adblockCommand() *cobra.Command {
	var (
		rulesFile  string
		exceptions bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "adblock <file> [rule...]",
		Short: "List resources matching network filter rules",
		Long: `List the resources that Adblock Plus style network filters would have
blocked on the recorded page. Rules come from the arguments and from
--rules-file, one per line.`,
		Example: `  pagegraph adblock page.graphml '||doubleclick.net^$third-party'
  pagegraph adblock page.graphml --rules-file easylist.txt --exceptions`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := args[1:]
			if rulesFile != "" {
				lines, err := readLines(rulesFile)
				if err != nil {
					return err
				}
				rules = append(rules, lines...)
			}
			if len(rules) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no filter rules given")
			}

			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			matches, err := query.ResourcesMatchingFilters(g, rules, exceptions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}
			if len(matches) == 0 {
				printInfo(out, "No resources match")
				return nil
			}
			for _, n := range matches {
				fmt.Fprintf(out, "%s %s\n", StyleNumber.Render(string(n.ID)), StyleValue.Render(n.Type.(kind.Resource).URL))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesFile, "rules-file", "", "file with one filter rule per line")
	cmd.Flags().BoolVar(&exceptions, "exceptions", false, "list resources an exception rule allowed instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return lines, nil
}
