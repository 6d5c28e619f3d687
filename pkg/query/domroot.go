package query

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// errCycle marks a walk that came back to an item it is still resolving.
var errCycle = stderrors.New("dom root walk revisited an item")

// DOMRootFor returns the document root that the element, text node or frame
// owner nid belongs to. Inserted nodes follow their first recorded parent;
// nodes that were never inserted are attributed to the document of the
// script that created them.
func DOMRootFor(g *graph.Graph, nid graph.NodeID) (graph.Node, error) {
	n, err := node(g, nid)
	if err != nil {
		return graph.Node{}, err
	}
	w := newRootWalk(g)
	root, err := w.forNode(n)
	return root, w.finish(err)
}

// DOMRootForEdge returns the document root an execute, request complete or
// cross DOM edge acts within. ok is false for requests the parser made
// outside of any document.
func DOMRootForEdge(g *graph.Graph, eid graph.EdgeID) (root graph.Node, ok bool, err error) {
	e, err := edge(g, eid)
	if err != nil {
		return graph.Node{}, false, err
	}
	w := newRootWalk(g)
	root, ok, err = w.forEdge(e)
	return root, ok, w.finish(err)
}

type rootWalk struct {
	g      *graph.Graph
	active map[string]bool
}

func newRootWalk(g *graph.Graph) *rootWalk {
	return &rootWalk{g: g, active: make(map[string]bool)}
}

func (w *rootWalk) finish(err error) error {
	if stderrors.Is(err, errCycle) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "no DOM root reachable")
	}
	return err
}

func (w *rootWalk) enter(key string) error {
	if w.active[key] {
		return errCycle
	}
	w.active[key] = true
	return nil
}

func (w *rootWalk) leave(key string) { delete(w.active, key) }

func (w *rootWalk) forNode(n graph.Node) (graph.Node, error) {
	switch n.Type.(type) {
	case kind.DOMRoot:
		return n, nil
	case kind.HTMLElement, kind.TextNode, kind.FrameOwner:
	default:
		return graph.Node{}, errors.New(errors.ErrCodeInvalidInput, "%s is a %s, not a DOM node", n.ID, n.Kind())
	}

	key := "node:" + string(n.ID)
	if err := w.enter(key); err != nil {
		return graph.Node{}, err
	}
	defer w.leave(key)

	frame, _ := id.FrameOf(string(n.ID))
	for _, ins := range edgesOfKind(mustIn(w.g, n.ID), kind.EdgeInsertNode) {
		parent, err := domNode(w.g, frame, ins.Type.(kind.InsertNode).Parent)
		if err != nil {
			return graph.Node{}, err
		}
		root, err := w.forNode(parent)
		if stderrors.Is(err, errCycle) {
			continue
		}
		return root, err
	}

	creators := edgesOfKind(mustIn(w.g, n.ID), kind.EdgeCreateNode)
	if len(creators) != 1 {
		return graph.Node{}, errors.New(errors.ErrCodeInvalidInput, "%s was never inserted and has %d creators, want 1", n.ID, len(creators))
	}
	creator := w.g.Source(creators[0])
	if _, ok := creator.Type.(kind.Script); !ok {
		return graph.Node{}, errors.New(errors.ErrCodeInvalidInput, "%s was never inserted and was created by a %s", n.ID, creator.Kind())
	}
	return w.forScript(creator, creator.ID)
}

// forScript resolves a script to the document it executed in. A script run
// from several documents is attributed to the one with the smallest URL.
func (w *rootWalk) forScript(script graph.Node, context graph.NodeID) (graph.Node, error) {
	var roots []graph.Node
	for _, x := range edgesOfKind(mustIn(w.g, script.ID), kind.EdgeExecute) {
		root, ok, err := w.forEdge(x)
		if stderrors.Is(err, errCycle) {
			continue
		}
		if err != nil {
			return graph.Node{}, err
		}
		if ok && !slices.ContainsFunc(roots, func(r graph.Node) bool { return r.ID == root.ID }) {
			roots = append(roots, root)
		}
	}

	var named []graph.Node
	for _, r := range roots {
		if r.Type.(kind.DOMRoot).URL.IsPresent() {
			named = append(named, r)
		}
	}
	if len(named) == 0 {
		return localContextRoot(w.g, string(context))
	}
	slices.SortFunc(named, func(a, b graph.Node) int {
		return strings.Compare(a.Type.(kind.DOMRoot).URL.OrElse(""), b.Type.(kind.DOMRoot).URL.OrElse(""))
	})
	return named[0], nil
}

func (w *rootWalk) forEdge(e graph.Edge) (graph.Node, bool, error) {
	key := "edge:" + string(e.ID)
	if err := w.enter(key); err != nil {
		return graph.Node{}, false, err
	}
	defer w.leave(key)

	wrap := func(root graph.Node, err error) (graph.Node, bool, error) {
		return root, err == nil, err
	}

	switch e.Type.(type) {
	case kind.RequestComplete:
		initiator := w.g.Target(e)
		switch initiator.Type.(type) {
		case kind.HTMLElement, kind.FrameOwner:
			return wrap(w.forNode(initiator))
		case kind.Script:
			return wrap(w.forScript(initiator, graph.NodeID(e.ID)))
		case kind.Parser:
			return graph.Node{}, false, nil
		}
		return graph.Node{}, false, errors.New(errors.ErrCodeInvalidInput, "request completed for a %s", initiator.Kind())

	case kind.Execute:
		source := w.g.Source(e)
		switch st := source.Type.(type) {
		case kind.HTMLElement:
			if st.TagName == "script" {
				return wrap(w.forNode(source))
			}
		case kind.Script:
			if st.ScriptType == "module" {
				return wrap(localContextRoot(w.g, string(e.ID)))
			}
			return wrap(w.forScript(source, graph.NodeID(e.ID)))
		case kind.DOMRoot:
			return source, true, nil
		}
		return graph.Node{}, false, errors.New(errors.ErrCodeInvalidInput, "execute edge %s starts at a %s", e.ID, source.Kind())

	case kind.CrossDOM:
		source := w.g.Source(e)
		switch source.Type.(type) {
		case kind.RemoteFrame:
			in := edgesOfKind(mustIn(w.g, source.ID), kind.EdgeCrossDOM)
			if len(in) != 1 {
				return graph.Node{}, false, errors.New(errors.ErrCodeInvalidInput, "remote frame %s has %d owners, want 1", source.ID, len(in))
			}
			return w.forEdge(in[0])
		case kind.FrameOwner:
			return wrap(w.forNode(source))
		case kind.DOMRoot:
			return source, true, nil
		}
		return graph.Node{}, false, errors.New(errors.ErrCodeInvalidInput, "cross DOM edge %s starts at a %s", e.ID, source.Kind())
	}
	return graph.Node{}, false, errors.New(errors.ErrCodeUnsupported, "DOM roots are not tracked for %s edges", e.Kind())
}

// localContextRoot returns the top document of the frame context item
// belongs to: the DOM root of that context no same-context frame owner
// leads to.
func localContextRoot(g *graph.Graph, item string) (graph.Node, error) {
	frame, _ := id.FrameOf(item)
	sameFrame := func(s string) bool {
		f, _ := id.FrameOf(s)
		return f == frame
	}
	roots := g.FilterNodes(func(n graph.Node) bool {
		if _, ok := n.Type.(kind.DOMRoot); !ok || !sameFrame(string(n.ID)) {
			return false
		}
		return !slices.ContainsFunc(edgesOfKind(mustIn(g, n.ID), kind.EdgeCrossDOM), func(cd graph.Edge) bool {
			return sameFrame(string(cd.ID))
		})
	})
	if len(roots) != 1 {
		return graph.Node{}, errors.New(errors.ErrCodeInvalidInput, "frame context of %s has %d top-level DOM roots, want 1", item, len(roots))
	}
	return roots[0], nil
}
