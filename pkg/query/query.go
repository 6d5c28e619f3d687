package query

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/kind"
	"github.com/matzehuels/pagegraph/pkg/observability"
)

// Table is the tabular result of a named query.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// WriteCSV writes the table with a header row.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Records returns the rows as column-keyed maps.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

// WriteJSON writes the rows as an indented JSON array of objects.
func (t Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Records())
}

// Args are the string arguments of a query invocation.
type Args map[string]string

// Arg describes an argument a query accepts.
type Arg struct {
	Name        string
	Description string
	Default     string
}

// Query is a named, built-in query over a graph.
type Query struct {
	Name        string
	Description string
	Args        []Arg
	run         func(g *graph.Graph, args Args) (Table, error)
}

var queries = []Query{
	{
		Name:        "nodes",
		Description: "every node with its kind and timestamp",
		run:         allNodes,
	},
	{
		Name:        "edges",
		Description: "every edge with its endpoints and sequence",
		run:         allEdges,
	},
	{
		Name:        "deleted-elements",
		Description: "HTML elements removed from the document",
		run: func(g *graph.Graph, _ Args) (Table, error) {
			return htmlElements(g, func(el kind.HTMLElement) bool { return el.IsDeleted }), nil
		},
	},
	{
		Name:        "html-elements",
		Description: "every HTML element",
		run: func(g *graph.Graph, _ Args) (Table, error) {
			return htmlElements(g, func(kind.HTMLElement) bool { return true }), nil
		},
	},
	{
		Name:        "scripts",
		Description: "compiled scripts with their origin",
		run:         scripts,
	},
	{
		Name:        "resources",
		Description: "fetched resources",
		run:         resources,
	},
	{
		Name:        "requests",
		Description: "network requests with their outcome",
		run:         requests,
	},
	{
		Name:        "storage",
		Description: "reads and writes of cookies, local and session storage",
		run:         storage,
	},
	{
		Name:        "event-listeners",
		Description: "event listeners added or removed by scripts",
		run:         eventListeners,
	},
	{
		Name:        "remote-frames",
		Description: "out-of-process frames recorded in separate files",
		run:         remoteFrames,
	},
	{
		Name:        "modified-elements",
		Description: "HTML elements with at least min modifications",
		Args:        []Arg{{Name: "min", Description: "minimum number of modifications", Default: "1"}},
		run:         modifiedElements,
	},
	{
		Name:        "dom-root",
		Description: "the document a DOM node belongs to",
		Args:        []Arg{{Name: "node", Description: "id of an element, text node or frame owner"}},
		run:         domRoot,
	},
	{
		Name:        "adblock",
		Description: "resources a network filter would have blocked",
		Args: []Arg{
			{Name: "rule", Description: "Adblock Plus network filter"},
			{Name: "exceptions", Description: "report resources an exception filter allowed", Default: "false"},
		},
		run: adblockMatches,
	},
}

// All returns the built-in queries sorted by name.
func All() []Query {
	out := slices.Clone(queries)
	slices.SortFunc(out, func(a, b Query) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Lookup returns the built-in query called name.
func Lookup(name string) (Query, bool) {
	i := slices.IndexFunc(queries, func(q Query) bool { return q.Name == name })
	if i < 0 {
		return Query{}, false
	}
	return queries[i], true
}

// Names returns the names of the built-in queries, sorted.
func Names() []string {
	var out []string
	for _, q := range All() {
		out = append(out, q.Name)
	}
	return out
}

// Run executes the named query. Arguments the query does not declare
// fail with INVALID_QUERY; missing ones take their default.
func Run(ctx context.Context, g *graph.Graph, name string, args Args) (Table, error) {
	if err := errors.ValidateQueryName(name); err != nil {
		return Table{}, err
	}
	q, ok := Lookup(name)
	if !ok {
		return Table{}, errors.New(errors.ErrCodeInvalidQuery, "unknown query %q (available: %v)", name, Names())
	}
	resolved, err := q.resolve(args)
	if err != nil {
		return Table{}, err
	}

	hooks := observability.Query()
	hooks.OnQueryStart(ctx, name)
	start := time.Now()
	t, err := q.run(g, resolved)
	hooks.OnQueryComplete(ctx, name, t.Len(), time.Since(start), err)
	return t, err
}

func (q Query) resolve(args Args) (Args, error) {
	out := make(Args, len(q.Args))
	for k, v := range args {
		if err := errors.ValidateArgument(k, v); err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(q.Args, func(a Arg) bool { return a.Name == k }) {
			return nil, errors.New(errors.ErrCodeInvalidQuery, "query %s does not take argument %q", q.Name, k)
		}
	}
	for _, a := range q.Args {
		v, ok := args[a.Name]
		if !ok {
			v = a.Default
		}
		out[a.Name] = v
	}
	return out, nil
}

func table(cols ...string) Table {
	return Table{Columns: cols, Rows: [][]string{}}
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func allNodes(g *graph.Graph, _ Args) (Table, error) {
	t := table("id", "kind", "timestamp")
	for _, n := range g.Nodes() {
		t.Rows = append(t.Rows, []string{string(n.ID), string(n.Kind()), n.Timestamp.String()})
	}
	return t, nil
}

func allEdges(g *graph.Graph, _ Args) (Table, error) {
	t := table("id", "kind", "source", "target", "sequence")
	for _, e := range g.Edges() {
		t.Rows = append(t.Rows, []string{
			string(e.ID), string(e.Kind()), string(e.Source), string(e.Target),
			strconv.FormatInt(e.Sequence, 10),
		})
	}
	return t, nil
}

func htmlElements(g *graph.Graph, keep func(kind.HTMLElement) bool) Table {
	t := table("id", "tag", "node_id", "deleted")
	for _, n := range g.Nodes() {
		el, ok := n.Type.(kind.HTMLElement)
		if !ok || !keep(el) {
			continue
		}
		t.Rows = append(t.Rows, []string{string(n.ID), el.TagName, u64(el.NodeID), strconv.FormatBool(el.IsDeleted)})
	}
	return t
}

func scripts(g *graph.Graph, _ Args) (Table, error) {
	t := table("id", "script_id", "script_type", "url")
	for _, n := range g.Nodes() {
		s, ok := n.Type.(kind.Script)
		if !ok {
			continue
		}
		t.Rows = append(t.Rows, []string{string(n.ID), u64(s.ScriptID), s.ScriptType, s.URL.String()})
	}
	return t, nil
}

func resources(g *graph.Graph, _ Args) (Table, error) {
	t := table("id", "url", "resource_type")
	for _, n := range g.Nodes() {
		r, ok := n.Type.(kind.Resource)
		if !ok {
			continue
		}
		t.Rows = append(t.Rows, []string{string(n.ID), r.URL, r.ResourceType.String()})
	}
	return t, nil
}

func requests(g *graph.Graph, _ Args) (Table, error) {
	t := table("edge_id", "request_id", "request_type", "resource_id", "url", "outcome", "status", "size")
	for _, e := range g.Edges() {
		rs, ok := e.Type.(kind.RequestStart)
		if !ok {
			continue
		}
		url := ""
		if r, ok := g.Target(e).Type.(kind.Resource); ok {
			url = r.URL
		}
		outcome, status, size := "pending", "", ""
		for _, next := range mustOut(g, e.Target) {
			switch nt := next.Type.(type) {
			case kind.RequestComplete:
				if nt.RequestID == rs.RequestID {
					outcome, status, size = "complete", nt.Status, nt.Size
				}
			case kind.RequestError:
				if nt.RequestID == rs.RequestID {
					outcome, status, size = "error", nt.Status, nt.Size
				}
			}
		}
		t.Rows = append(t.Rows, []string{
			string(e.ID), u64(rs.RequestID), rs.RequestType.Label(), string(e.Target), url, outcome, status, size,
		})
	}
	return t, nil
}

func storage(g *graph.Graph, _ Args) (Table, error) {
	t := table("edge_id", "kind", "actor", "store", "key", "value")
	for _, e := range g.Edges() {
		var key, value string
		switch et := e.Type.(type) {
		case kind.StorageSet:
			key, value = et.Key, et.Value.String()
		case kind.StorageReadResult:
			key, value = et.Key, et.Value.String()
		case kind.DeleteStorage:
			key = et.Key
		case kind.ReadStorageCall:
			key = et.Key
		case kind.ClearStorage:
			key = et.Key
		default:
			continue
		}
		t.Rows = append(t.Rows, []string{
			string(e.ID), string(e.Kind()), string(e.Source), string(e.Target), key, value,
		})
	}
	return t, nil
}

func eventListeners(g *graph.Graph, _ Args) (Table, error) {
	t := table("edge_id", "kind", "element", "event", "listener_id", "script_id")
	for _, e := range g.Edges() {
		switch et := e.Type.(type) {
		case kind.AddEventListener:
			t.Rows = append(t.Rows, []string{
				string(e.ID), string(e.Kind()), string(e.Target), et.Key, u64(et.EventListenerID), u64(et.ScriptID),
			})
		case kind.RemoveEventListener:
			t.Rows = append(t.Rows, []string{
				string(e.ID), string(e.Kind()), string(e.Target), et.Key, u64(et.EventListenerID), u64(et.ScriptID),
			})
		}
	}
	return t, nil
}

func remoteFrames(g *graph.Graph, _ Args) (Table, error) {
	t := table("id", "frame_id")
	for _, n := range g.Nodes() {
		if rf, ok := n.Type.(kind.RemoteFrame); ok {
			t.Rows = append(t.Rows, []string{string(n.ID), rf.FrameID.String()})
		}
	}
	return t, nil
}

func modifiedElements(g *graph.Graph, args Args) (Table, error) {
	minimum, err := strconv.Atoi(args["min"])
	if err != nil || minimum < 0 {
		return Table{}, errors.New(errors.ErrCodeInvalidQuery, "min must be a non-negative integer, got %q", args["min"])
	}
	t := table("id", "tag", "modifications")
	for _, n := range g.Nodes() {
		el, ok := n.Type.(kind.HTMLElement)
		if !ok {
			continue
		}
		mods, err := HTMLModifications(g, n.ID)
		if err != nil {
			return Table{}, err
		}
		if len(mods) >= minimum {
			t.Rows = append(t.Rows, []string{string(n.ID), el.TagName, strconv.Itoa(len(mods))})
		}
	}
	return t, nil
}

func domRoot(g *graph.Graph, args Args) (Table, error) {
	nid := args["node"]
	if nid == "" {
		return Table{}, errors.New(errors.ErrCodeInvalidQuery, "dom-root needs a node argument")
	}
	root, err := DOMRootFor(g, graph.NodeID(nid))
	if err != nil {
		return Table{}, err
	}
	t := table("id", "dom_root", "url")
	t.Rows = append(t.Rows, []string{nid, string(root.ID), root.Type.(kind.DOMRoot).URL.String()})
	return t, nil
}

func adblockMatches(g *graph.Graph, args Args) (Table, error) {
	if args["rule"] == "" {
		return Table{}, errors.New(errors.ErrCodeInvalidQuery, "adblock needs a rule argument")
	}
	exceptions, err := strconv.ParseBool(args["exceptions"])
	if err != nil {
		return Table{}, errors.New(errors.ErrCodeInvalidQuery, "exceptions must be true or false, got %q", args["exceptions"])
	}
	matches, err := ResourcesMatchingFilters(g, []string{args["rule"]}, exceptions)
	if err != nil {
		return Table{}, err
	}
	t := table("id", "url")
	for _, n := range matches {
		t.Rows = append(t.Rows, []string{string(n.ID), n.Type.(kind.Resource).URL})
	}
	return t, nil
}
