// Package kind defines the closed taxonomy of PageGraph node and edge kinds.
//
// Every node carries a [NodeType] and every edge an [EdgeType]. Both are
// sealed interfaces implemented only by the payload structs in this package,
// so a type switch over them is exhaustive for a given release.
//
// Each kind registers an attribute contract: the attributes it requires,
// the ones it optionally accepts, and a constructor from a decoded
// [attr.Bag]. [ResolveNode] and [ResolveEdge] dispatch on the discriminator
// text ("node type" / "edge type"). An unknown discriminator is an
// [errors.UnknownKindError]; it is never mapped to a catch-all kind.
//
// Adding a kind means adding its payload struct and one registry entry.
// Neither the parser nor the graph builder changes.
package kind
