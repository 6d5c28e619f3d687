package query

import (
	"slices"
	"strconv"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

func node(g *graph.Graph, nid graph.NodeID) (graph.Node, error) {
	n, ok := g.Node(nid)
	if !ok {
		return graph.Node{}, &errors.NodeNotFoundError{ID: string(nid)}
	}
	return n, nil
}

func edge(g *graph.Graph, eid graph.EdgeID) (graph.Edge, error) {
	e, ok := g.Edge(eid)
	if !ok {
		return graph.Edge{}, &errors.EdgeNotFoundError{ID: string(eid)}
	}
	return e, nil
}

// mustOut and mustIn walk edges of a node known to be in g.
func mustOut(g *graph.Graph, nid graph.NodeID) []graph.Edge {
	out, _ := g.OutgoingEdges(nid)
	return out
}

func mustIn(g *graph.Graph, nid graph.NodeID) []graph.Edge {
	in, _ := g.IncomingEdges(nid)
	return in
}

func edgesOfKind(edges []graph.Edge, kinds ...kind.EdgeKind) []graph.Edge {
	var out []graph.Edge
	for _, e := range edges {
		if slices.Contains(kinds, e.Kind()) {
			out = append(out, e)
		}
	}
	return out
}

// HTMLModifications returns every edge that modified the HTML element id,
// by sequence. Structural edges are not modifications.
func HTMLModifications(g *graph.Graph, nid graph.NodeID) ([]graph.Edge, error) {
	n, err := node(g, nid)
	if err != nil {
		return nil, err
	}
	if _, ok := n.Type.(kind.HTMLElement); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a %s, not an HTML element", nid, n.Kind())
	}
	out := []graph.Edge{}
	for _, e := range mustIn(g, nid) {
		if e.Kind() != kind.EdgeStructure {
			out = append(out, e)
		}
	}
	return out, nil
}

// ScriptsForResource returns the nodes with an edge into the resource id:
// the scripts and elements that caused it to be fetched.
func ScriptsForResource(g *graph.Graph, nid graph.NodeID) ([]graph.Node, error) {
	n, err := node(g, nid)
	if err != nil {
		return nil, err
	}
	if _, ok := n.Type.(kind.Resource); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a %s, not a resource", nid, n.Kind())
	}
	ids, err := g.Neighbors(nid, graph.Incoming)
	if err != nil {
		return nil, err
	}
	return nodes(g, ids), nil
}

// ResourcesFromScript returns the resources requested by a script, or by a
// <script> element either directly or through the scripts it executed.
func ResourcesFromScript(g *graph.Graph, nid graph.NodeID) ([]graph.Node, error) {
	n, err := node(g, nid)
	if err != nil {
		return nil, err
	}
	scriptElement := false
	switch t := n.Type.(type) {
	case kind.Script:
	case kind.HTMLElement:
		if t.TagName != "script" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a <%s> element, not a script", nid, t.TagName)
		}
		scriptElement = true
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a %s, not a script", nid, n.Kind())
	}

	out := []graph.Node{}
	seen := map[graph.NodeID]bool{}
	collect := func(from graph.NodeID) {
		ids, _ := g.Neighbors(from, graph.Outgoing)
		for _, rid := range ids {
			r, _ := g.Node(rid)
			if _, ok := r.Type.(kind.Resource); ok && !seen[rid] {
				seen[rid] = true
				out = append(out, r)
			}
		}
	}
	collect(nid)
	if scriptElement {
		ids, _ := g.Neighbors(nid, graph.Outgoing)
		for _, sid := range ids {
			s, _ := g.Node(sid)
			if _, ok := s.Type.(kind.Script); ok {
				collect(sid)
			}
		}
	}
	return out, nil
}

func nodes(g *graph.Graph, ids []graph.NodeID) []graph.Node {
	out := make([]graph.Node, 0, len(ids))
	for _, nid := range ids {
		n, _ := g.Node(nid)
		out = append(out, n)
	}
	return out
}

// RequestUsage is one way a resource was requested.
type RequestUsage struct {
	Type string               `json:"type"`
	Size attr.Optional[int64] `json:"size"`
}

// RequestTypes returns the distinct request types used to fetch the
// resource id, each with the response size of its first completion when
// known. A resource never requested reports a single "other" usage.
func RequestTypes(g *graph.Graph, nid graph.NodeID) ([]RequestUsage, error) {
	n, err := node(g, nid)
	if err != nil {
		return nil, err
	}
	if _, ok := n.Type.(kind.Resource); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a %s, not a resource", nid, n.Kind())
	}

	var out []RequestUsage
	for _, e := range mustIn(g, nid) {
		rs, ok := e.Type.(kind.RequestStart)
		if !ok {
			continue
		}
		u := RequestUsage{Type: rs.RequestType.Label(), Size: completedSize(g, rs.RequestID)}
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return []RequestUsage{{Type: "other"}}, nil
	}
	return out, nil
}

func completedSize(g *graph.Graph, requestID uint64) attr.Optional[int64] {
	for _, e := range g.Edges() {
		if rc, ok := e.Type.(kind.RequestComplete); ok && rc.RequestID == requestID {
			if n, err := strconv.ParseInt(rc.Size, 10, 64); err == nil {
				return attr.Some(n)
			}
			return attr.None[int64]()
		}
	}
	return attr.None[int64]()
}

// RequestInfo gathers what the recording knows about one network request.
type RequestInfo struct {
	RequestType  string                `json:"request_type"`
	URL          string                `json:"url"`
	ResourceType string                `json:"resource_type"`
	Status       string                `json:"status"`
	Value        attr.Optional[string] `json:"value"`
	ResponseHash attr.Optional[string] `json:"response_hash"`
	Headers      string                `json:"headers"`
	Size         string                `json:"size"`
}

// LookupRequest finds the request start and completion recorded for
// requestID within one frame context. A zero frame selects the root frame.
// Several starts or completions can share an id when a cached resource is
// requested again; they carry the same information, so the last one wins.
func LookupRequest(g *graph.Graph, requestID uint64, frame id.FrameID) (RequestInfo, error) {
	var start, complete *graph.Edge
	for _, e := range g.Edges() {
		if f, _ := id.FrameOf(string(e.ID)); f != frame {
			continue
		}
		switch t := e.Type.(type) {
		case kind.RequestStart:
			if t.RequestID == requestID {
				start = &e
			}
		case kind.RequestComplete:
			if t.RequestID == requestID {
				complete = &e
			}
		}
	}
	if start == nil {
		return RequestInfo{}, errors.New(errors.ErrCodeNotFound, "no request start for request id %d", requestID)
	}
	if complete == nil {
		return RequestInfo{}, errors.New(errors.ErrCodeNotFound, "no request completion for request id %d", requestID)
	}
	if start.Target != complete.Source {
		return RequestInfo{}, errors.New(errors.ErrCodeInvalidInput,
			"request %d: start targets %s but completion comes from %s", requestID, start.Target, complete.Source)
	}
	res, ok := g.Target(*start).Type.(kind.Resource)
	if !ok {
		return RequestInfo{}, errors.New(errors.ErrCodeInvalidInput, "request %d does not target a resource", requestID)
	}

	rs := start.Type.(kind.RequestStart)
	rc := complete.Type.(kind.RequestComplete)
	return RequestInfo{
		RequestType:  rs.RequestType.Label(),
		URL:          res.URL,
		ResourceType: rc.ResourceType,
		Status:       rc.Status,
		Value:        rc.Value,
		ResponseHash: rc.ResponseHash,
		Headers:      rc.Headers,
		Size:         rc.Size,
	}, nil
}
