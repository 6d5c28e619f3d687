// Package graph holds the typed, immutable PageGraph model and its builder.
//
// # Building
//
// [Build] consumes the key schema and raw records produced by package
// graphml. Node records are resolved first, then edge records, whose
// endpoints must resolve to existing nodes. Any failure aborts the build:
//
//	p, err := graphml.NewParser(r)
//	if err != nil {
//	    return err
//	}
//	g, err := graph.FromParser(p)
//
// Most callers use package io instead, which also opens files and merges
// remote frame recordings.
//
// # Querying
//
// [Graph.FilterNodes] and [Graph.FilterEdges] select by predicate and keep
// document order. Predicates see every kind and discriminate with a type
// switch:
//
//	deleted := g.FilterNodes(func(n graph.Node) bool {
//	    el, ok := n.Type.(kind.HTMLElement)
//	    return ok && el.IsDeleted && el.TagName == "div"
//	})
//
// [Graph.Neighbors], [Graph.OutgoingEdges] and [Graph.IncomingEdges] walk
// adjacency ordered by edge sequence.
//
// # Deletion
//
// Deletion is modeled as the "is deleted" flag on DOM nodes. The "remove
// node" and "delete node" edges that led to it are kept as ordinary edges.
package graph
