package graph

import (
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// RemoteFrameIDs returns the frame ids of all remote frame nodes, in
// document order, without duplicates.
func (g *Graph) RemoteFrameIDs() []id.FrameID {
	var out []id.FrameID
	for _, n := range g.nodes {
		if rf, ok := n.Type.(kind.RemoteFrame); ok && !slices.Contains(out, rf.FrameID) {
			out = append(out, rf.FrameID)
		}
	}
	return out
}

// MergeFrame returns a new graph holding g plus the separately recorded
// graph of one of its remote frames.
//
// Every node and edge of frame is copied with its id namespaced by fid
// ("n12" becomes "n12:<fid>"). The remote frame node of g gains two cross
// DOM edges: one to the frame's top-level DOM root and one to its parser.
// g must be a root graph and frame a non-root graph recorded for fid.
func (g *Graph) MergeFrame(frame *Graph, fid id.FrameID) (*Graph, error) {
	if !g.IsRoot() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "merge frame %s: target graph is not a root graph", fid)
	}
	fd, ok := frame.Descriptor()
	if !ok || fd.IsRoot {
		return nil, errors.New(errors.ErrCodeInvalidInput, "merge frame %s: frame graph is not a frame recording", fid)
	}
	if fd.FrameID != fid {
		return nil, errors.New(errors.ErrCodeInvalidInput, "merge frame %s: frame graph was recorded for %s", fid, fd.FrameID)
	}

	remotes := g.FilterNodes(func(n Node) bool {
		rf, ok := n.Type.(kind.RemoteFrame)
		return ok && rf.FrameID == fid
	})
	if len(remotes) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "merge frame %s: found %d remote frame nodes, want 1", fid, len(remotes))
	}
	remote := remotes[0].ID

	root, err := frame.topLevel(kind.NodeDOMRoot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "merge frame %s", fid)
	}
	parser, err := frame.topLevel(kind.NodeParser)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "merge frame %s", fid)
	}

	out := newGraph(len(g.nodes)+len(frame.nodes), len(g.edges)+len(frame.edges)+2)
	out.desc = g.desc
	for _, n := range g.nodes {
		out.addNode(n)
	}
	for _, e := range g.edges {
		out.addEdge(e)
	}

	for _, n := range frame.nodes {
		n.ID = NodeID(id.Namespace(string(n.ID), fid))
		out.addNode(n)
	}
	for _, target := range []NodeID{root, parser} {
		out.addEdge(Edge{
			ID:     out.syntheticEdgeID(),
			Source: remote,
			Target: NodeID(id.Namespace(string(target), fid)),
			Type:   kind.CrossDOM{},
		})
	}
	for _, e := range frame.edges {
		e.ID = EdgeID(id.Namespace(string(e.ID), fid))
		e.Source = NodeID(id.Namespace(string(e.Source), fid))
		e.Target = NodeID(id.Namespace(string(e.Target), fid))
		out.addEdge(e)
	}

	out.index()
	return out, nil
}

// topLevel returns the single node of kind k that has no incoming cross DOM
// edge.
func (g *Graph) topLevel(k kind.NodeKind) (NodeID, error) {
	var found []NodeID
	for i, n := range g.nodes {
		if n.Kind() != k {
			continue
		}
		crossed := slices.ContainsFunc(g.incoming[i], func(ei int) bool {
			return g.edges[ei].Kind() == kind.EdgeCrossDOM
		})
		if !crossed {
			found = append(found, n.ID)
		}
	}
	if len(found) != 1 {
		return "", errors.New(errors.ErrCodeInvalidInput, "found %d top-level %s nodes, want 1", len(found), k)
	}
	return found[0], nil
}

// syntheticEdgeID returns an unused edge id counting down from the largest
// representable id.
func (g *Graph) syntheticEdgeID() EdgeID {
	for n := uint64(math.MaxUint64); ; n-- {
		eid := EdgeID("e" + strconv.FormatUint(n, 10))
		if _, taken := g.edgeIdx[eid]; !taken {
			return eid
		}
	}
}
