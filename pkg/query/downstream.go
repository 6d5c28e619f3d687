package query

import (
	"slices"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// Elements whose src attribute starts a fetch.
var canHaveSrc = []string{"audio", "embed", "iframe", "img", "input", "script", "source", "track", "video"}

// DirectEffects returns the edges that would not have been recorded had e
// not happened, one causal step away.
//
// Only the causal rules the recording supports are followed: request starts
// lead to their completion or error, executions lead to requests, nested
// executions and attribute writes, src writes on fetching elements lead to
// requests or frame loads, completed script fetches lead to executions,
// text inserted into a <script> leads to its next execution, and cross DOM
// edges lead to the parser's construction of the attached document. Other
// edge kinds fail with an UNSUPPORTED error.
func DirectEffects(g *graph.Graph, e graph.Edge) ([]graph.Edge, error) {
	switch t := e.Type.(type) {
	case kind.CrossDOM:
		return crossDOMEffects(g, e)
	case kind.InsertNode:
		return insertEffects(g, e, t)
	case kind.CreateNode, kind.RequestError:
		return nil, nil
	case kind.RequestComplete:
		target := g.Target(e)
		if el, ok := target.Type.(kind.HTMLElement); ok && t.ResourceType == "script" && el.TagName == "script" {
			return edgesOfKind(mustOut(g, target.ID), kind.EdgeExecute), nil
		}
		return nil, nil
	case kind.RequestStart:
		var out []graph.Edge
		for _, next := range mustOut(g, e.Target) {
			switch nt := next.Type.(type) {
			case kind.RequestComplete:
				if nt.RequestID == t.RequestID {
					out = append(out, next)
				}
			case kind.RequestError:
				if nt.RequestID == t.RequestID {
					out = append(out, next)
				}
			}
		}
		return out, nil
	case kind.Execute:
		return edgesOfKind(mustOut(g, e.Target), kind.EdgeRequestStart, kind.EdgeExecute, kind.EdgeSetAttribute), nil
	case kind.SetAttribute:
		return setAttributeEffects(g, e, t)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "downstream effects of %s edges are not tracked", e.Kind())
}

func setAttributeEffects(g *graph.Graph, e graph.Edge, t kind.SetAttribute) ([]graph.Edge, error) {
	if t.Key != "src" {
		return nil, nil
	}
	target := g.Target(e)
	switch nt := target.Type.(type) {
	case kind.HTMLElement:
		if slices.Contains(canHaveSrc, nt.TagName) {
			return edgesOfKind(mustOut(g, target.ID), kind.EdgeRequestStart), nil
		}
	case kind.FrameOwner:
		if !slices.Contains(canHaveSrc, nt.TagName) {
			return nil, nil
		}
		// Frame loads between this src write and the next one.
		next, bounded := int64(0), false
		for _, other := range mustIn(g, target.ID) {
			sa, ok := other.Type.(kind.SetAttribute)
			if ok && sa.Key == "src" && other.ID != e.ID && other.Sequence > e.Sequence {
				next, bounded = other.Sequence, true
				break
			}
		}
		var out []graph.Edge
		for _, cd := range edgesOfKind(mustOut(g, target.ID), kind.EdgeCrossDOM) {
			if cd.Sequence < e.Sequence || (bounded && cd.Sequence >= next) {
				continue
			}
			switch dt := g.Target(cd).Type.(type) {
			case kind.DOMRoot:
				if dt.URL.OrElse("") != "about:blank" {
					out = append(out, cd)
				}
			case kind.RemoteFrame:
				out = append(out, cd)
			}
		}
		return out, nil
	}
	return nil, nil
}

// insertEffects attributes the next execution of a <script> element to the
// insertion of its text.
func insertEffects(g *graph.Graph, e graph.Edge, t kind.InsertNode) ([]graph.Edge, error) {
	if _, ok := g.Target(e).Type.(kind.TextNode); !ok {
		return nil, nil
	}
	frame, _ := id.FrameOf(string(e.ID))
	parent, err := domNode(g, frame, t.Parent)
	if err != nil {
		return nil, err
	}
	if el, ok := parent.Type.(kind.HTMLElement); !ok || el.TagName != "script" {
		return nil, nil
	}
	for _, x := range edgesOfKind(mustOut(g, parent.ID), kind.EdgeExecute) {
		if x.Sequence >= e.Sequence {
			return []graph.Edge{x}, nil
		}
	}
	return nil, nil
}

// domNodeID returns the DOM node id of element-like nodes.
func domNodeID(n graph.Node) (uint64, bool) {
	switch t := n.Type.(type) {
	case kind.HTMLElement:
		return t.NodeID, true
	case kind.DOMRoot:
		return t.NodeID, true
	case kind.FrameOwner:
		return t.NodeID, true
	case kind.TextNode:
		return t.NodeID, true
	}
	return 0, false
}

// domNode finds the single parent-capable node with DOM node id nid in
// the given frame context.
func domNode(g *graph.Graph, frame id.FrameID, nid uint64) (graph.Node, error) {
	matches := g.FilterNodes(func(n graph.Node) bool {
		if _, isText := n.Type.(kind.TextNode); isText {
			return false
		}
		f, _ := id.FrameOf(string(n.ID))
		v, ok := domNodeID(n)
		return ok && f == frame && v == nid
	})
	if len(matches) != 1 {
		return graph.Node{}, errors.New(errors.ErrCodeInvalidInput, "found %d DOM nodes with id %d, want 1", len(matches), nid)
	}
	return matches[0], nil
}

func crossDOMEffects(g *graph.Graph, e graph.Edge) ([]graph.Edge, error) {
	target := g.Target(e)
	switch target.Type.(type) {
	case kind.Parser:
		// Enumerated through the DOM root of the same frame.
		return nil, nil
	case kind.RemoteFrame:
		return edgesOfKind(mustOut(g, target.ID), kind.EdgeCrossDOM), nil
	case kind.DOMRoot:
		return documentConstruction(g, target)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "cross DOM edge %s points to a %s", e.ID, target.Kind())
}

type domEntry struct {
	node  graph.Node
	id    uint64
	state uint8 // 0 unknown, 1 visiting, 2 outside, 3 inside
}

// documentConstruction returns the parser's create, insert and attribute
// edges that built the document under root.
func documentConstruction(g *graph.Graph, root graph.Node) ([]graph.Edge, error) {
	frame, _ := id.FrameOf(string(root.ID))
	sameFrame := func(nid graph.NodeID) bool {
		f, _ := id.FrameOf(string(nid))
		return f == frame
	}

	parsers := g.FilterNodes(func(n graph.Node) bool {
		_, ok := n.Type.(kind.Parser)
		return ok && sameFrame(n.ID)
	})
	if len(parsers) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frame context of %s has %d parsers, want 1", root.ID, len(parsers))
	}
	parser := parsers[0]

	var candidates []graph.Node
	for _, ce := range edgesOfKind(mustOut(g, parser.ID), kind.EdgeCreateNode) {
		candidates = append(candidates, g.Target(ce))
	}
	candidates = append(candidates, g.FilterNodes(func(n graph.Node) bool {
		_, ok := n.Type.(kind.DOMRoot)
		return ok && sameFrame(n.ID) && len(edgesOfKind(mustIn(g, n.ID), kind.EdgeCreateNode)) == 0
	})...)

	entries := make([]domEntry, 0, len(candidates))
	for _, n := range candidates {
		v, ok := domNodeID(n)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "parser created %s, which has no DOM node id", n.Kind())
		}
		entries = append(entries, domEntry{node: n, id: v})
	}
	slices.SortFunc(entries, func(a, b domEntry) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	for i := 1; i < len(entries); i++ {
		if entries[i].id == entries[i-1].id {
			return nil, errors.New(errors.ErrCodeInvalidInput, "DOM node id %d is present twice", entries[i].id)
		}
	}

	var inside func(i int) bool
	inside = func(i int) bool {
		switch entries[i].state {
		case 1, 2:
			return false
		case 3:
			return true
		}
		entries[i].state = 1
		result := false
		if _, isRoot := entries[i].node.Type.(kind.DOMRoot); isRoot {
			result = entries[i].node.ID == root.ID
		} else {
			for _, ins := range mustIn(g, entries[i].node.ID) {
				in, ok := ins.Type.(kind.InsertNode)
				if !ok {
					continue
				}
				j, found := slices.BinarySearchFunc(entries, in.Parent, func(e domEntry, t uint64) int {
					switch {
					case e.id < t:
						return -1
					case e.id > t:
						return 1
					}
					return 0
				})
				if found {
					result = inside(j)
					break
				}
			}
		}
		entries[i].state = 2
		if result {
			entries[i].state = 3
		}
		return result
	}

	var out []graph.Edge
	for i := range entries {
		if !inside(i) {
			continue
		}
		if _, isRoot := entries[i].node.Type.(kind.DOMRoot); isRoot {
			continue
		}
		for _, in := range mustIn(g, entries[i].node.ID) {
			switch in.Kind() {
			case kind.EdgeCreateNode, kind.EdgeSetAttribute, kind.EdgeInsertNode:
				if in.Source == parser.ID {
					out = append(out, in)
				}
			}
		}
	}
	return out, nil
}

// DownstreamEffects returns every edge transitively caused by the edge
// eid, excluding eid itself, in discovery order.
func DownstreamEffects(g *graph.Graph, eid graph.EdgeID) ([]graph.Edge, error) {
	origin, err := edge(g, eid)
	if err != nil {
		return nil, err
	}
	out := []graph.Edge{}
	seen := map[graph.EdgeID]bool{origin.ID: true}
	stack := []graph.Edge{origin}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.ID != origin.ID {
			out = append(out, cur)
		}
		direct, err := DirectEffects(g, cur)
		if err != nil {
			return nil, err
		}
		for _, d := range direct {
			if !seen[d.ID] {
				seen[d.ID] = true
				stack = append(stack, d)
			}
		}
	}
	return out, nil
}

// DownstreamRequest is a network request caused by an edge, with the
// requests it caused in turn.
type DownstreamRequest struct {
	RequestID   uint64              `json:"request_id"`
	RequestType string              `json:"request_type"`
	EdgeID      graph.EdgeID        `json:"edge_id"`
	NodeID      graph.NodeID        `json:"node_id"`
	URL         string              `json:"url"`
	Children    []DownstreamRequest `json:"children"`
}

// DownstreamRequests returns the requests that would not have happened
// without the edge eid, nested by causation.
func DownstreamRequests(g *graph.Graph, eid graph.EdgeID) ([]DownstreamRequest, error) {
	origin, err := edge(g, eid)
	if err != nil {
		return nil, err
	}
	return downstreamRequests(g, origin, map[graph.EdgeID]bool{origin.ID: true})
}

func downstreamRequests(g *graph.Graph, origin graph.Edge, seen map[graph.EdgeID]bool) ([]DownstreamRequest, error) {
	out := []DownstreamRequest{}
	stack := []graph.Edge{origin}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		direct, err := DirectEffects(g, cur)
		if err != nil {
			return nil, err
		}
		for _, d := range direct {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			rs, ok := d.Type.(kind.RequestStart)
			if !ok {
				stack = append(stack, d)
				continue
			}
			req := DownstreamRequest{
				RequestID:   rs.RequestID,
				RequestType: rs.RequestType.Label(),
				EdgeID:      d.ID,
				NodeID:      d.Target,
			}
			if res, ok := g.Target(d).Type.(kind.Resource); ok {
				req.URL = res.URL
			}
			req.Children, err = downstreamRequests(g, d, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, req)
		}
	}
	return out, nil
}
