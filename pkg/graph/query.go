package graph

import (
	"github.com/matzehuels/pagegraph/pkg/errors"
)

// NodePredicate selects nodes. It is called for nodes of every kind; use a
// type switch on [Node.Type] to discriminate.
type NodePredicate func(Node) bool

// EdgePredicate selects edges. It is called for edges of every kind.
type EdgePredicate func(Edge) bool

// FilterNodes returns the nodes for which pred holds, in document order.
// The result is empty, not nil, when nothing matches.
func (g *Graph) FilterNodes(pred NodePredicate) []Node {
	out := []Node{}
	for _, n := range g.nodes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// FilterEdges returns the edges for which pred holds, in document order.
// The result is empty, not nil, when nothing matches.
func (g *Graph) FilterEdges(pred EdgePredicate) []Edge {
	out := []Edge{}
	for _, e := range g.edges {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns the edges leaving id, by sequence.
func (g *Graph) OutgoingEdges(id NodeID) ([]Edge, error) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, &errors.NodeNotFoundError{ID: string(id)}
	}
	return g.collect(g.outgoing[i]), nil
}

// IncomingEdges returns the edges entering id, by sequence.
func (g *Graph) IncomingEdges(id NodeID) ([]Edge, error) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, &errors.NodeNotFoundError{ID: string(id)}
	}
	return g.collect(g.incoming[i]), nil
}

func (g *Graph) collect(idx []int) []Edge {
	out := make([]Edge, len(idx))
	for j, i := range idx {
		out[j] = g.edges[i]
	}
	return out
}

// Neighbors returns the ids of nodes adjacent to id in direction d, ordered
// by the sequence of the connecting edge. A neighbor reachable by several
// edges is listed once, at its first position. With [Both] outgoing and
// incoming edges are merged by sequence.
func (g *Graph) Neighbors(id NodeID, d Direction) ([]NodeID, error) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, &errors.NodeNotFoundError{ID: string(id)}
	}
	var idx []int
	switch d {
	case Outgoing:
		idx = g.outgoing[i]
	case Incoming:
		idx = g.incoming[i]
	case Both:
		idx = g.merge(g.outgoing[i], g.incoming[i])
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid direction")
	}

	out := []NodeID{}
	seen := make(map[NodeID]bool, len(idx))
	for _, ei := range idx {
		e := g.edges[ei]
		other := e.Target
		if d == Incoming || (d == Both && e.Source != id) {
			other = e.Source
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out, nil
}

// merge combines two sequence-ordered index lists, dropping indices present
// in both (self loops).
func (g *Graph) merge(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	seen := make(map[int]bool, len(a))
	for _, i := range a {
		seen[i] = true
	}
	x, y := 0, 0
	for x < len(a) || y < len(b) {
		if y < len(b) && seen[b[y]] {
			y++
			continue
		}
		if y >= len(b) || (x < len(a) && g.before(a[x], b[y])) {
			out = append(out, a[x])
			x++
		} else {
			out = append(out, b[y])
			y++
		}
	}
	return out
}

// before reports whether edge i orders before edge j.
func (g *Graph) before(i, j int) bool {
	si, sj := g.edges[i].Sequence, g.edges[j].Sequence
	if si != sj {
		return si < sj
	}
	return i < j
}

// EdgesBetween returns every edge from source to target, by sequence.
// Unknown ids yield an empty result.
func (g *Graph) EdgesBetween(source, target NodeID) []Edge {
	out := []Edge{}
	i, ok := g.nodeIdx[source]
	if !ok {
		return out
	}
	for _, ei := range g.outgoing[i] {
		if g.edges[ei].Target == target {
			out = append(out, g.edges[ei])
		}
	}
	return out
}
