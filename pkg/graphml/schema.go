package graphml

import (
	"slices"

	"github.com/matzehuels/pagegraph/pkg/attr"
)

// Domain is the element class a key applies to (the key's "for" attribute).
type Domain uint8

const (
	DomainNode Domain = 1 << iota
	DomainEdge
	DomainAll = DomainNode | DomainEdge
)

// String returns the GraphML spelling of d.
func (d Domain) String() string {
	switch d {
	case DomainNode:
		return "node"
	case DomainEdge:
		return "edge"
	case DomainAll:
		return "all"
	}
	return "invalid"
}

func parseDomain(s string) (Domain, bool) {
	switch s {
	case "node":
		return DomainNode, true
	case "edge":
		return DomainEdge, true
	case "all":
		return DomainAll, true
	}
	return 0, false
}

// Key is one <key> declaration from the preamble.
type Key struct {
	ID      string    // short identifier referenced by <data key=...>
	Name    string    // semantic name (attr.name), e.g. "node type"
	Type    attr.Type // declared scalar type (attr.type)
	For     Domain
	Default attr.Optional[string] // text of a <default> child, if any
}

// Schema is the attribute-key schema declared by a document's preamble.
// Node and edge keys live in separate namespaces; a key declared for "all"
// is visible in both.
type Schema struct {
	keys []Key
	node map[string]int
	edge map[string]int
}

func newSchema() *Schema {
	return &Schema{node: map[string]int{}, edge: map[string]int{}}
}

// add registers k, reporting false if its id is already taken in one of
// the domains it applies to.
func (s *Schema) add(k Key) bool {
	if k.For&DomainNode != 0 {
		if _, dup := s.node[k.ID]; dup {
			return false
		}
	}
	if k.For&DomainEdge != 0 {
		if _, dup := s.edge[k.ID]; dup {
			return false
		}
	}
	idx := len(s.keys)
	s.keys = append(s.keys, k)
	if k.For&DomainNode != 0 {
		s.node[k.ID] = idx
	}
	if k.For&DomainEdge != 0 {
		s.edge[k.ID] = idx
	}
	return true
}

// Lookup returns the key with the given id visible from domain d, which
// must be DomainNode or DomainEdge.
func (s *Schema) Lookup(d Domain, id string) (Key, bool) {
	var idx int
	var ok bool
	switch d {
	case DomainNode:
		idx, ok = s.node[id]
	case DomainEdge:
		idx, ok = s.edge[id]
	}
	if !ok {
		return Key{}, false
	}
	return s.keys[idx], true
}

// ByName returns the key with the given semantic name visible from domain d.
func (s *Schema) ByName(d Domain, name string) (Key, bool) {
	for _, k := range s.keys {
		if k.For&d != 0 && k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Keys returns all keys in declaration order.
func (s *Schema) Keys() []Key {
	return slices.Clone(s.keys)
}

// Defaults returns the keys visible from domain d that declare a default.
func (s *Schema) Defaults(d Domain) []Key {
	var out []Key
	for _, k := range s.keys {
		if k.For&d != 0 && k.Default.IsPresent() {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of declared keys.
func (s *Schema) Len() int { return len(s.keys) }
