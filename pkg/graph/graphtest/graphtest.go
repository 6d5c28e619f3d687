// Package graphtest builds small PageGraph GraphML documents for tests.
//
// The key preamble is derived from the kind registry, so any attribute a
// kind declares can be set by its semantic name:
//
//	doc := graphtest.New().
//	    Node("n1", "HTML element", "tag name", "div", "is deleted", "true", "node id", "1").
//	    Node("n2", "parser").
//	    Edge("e1", "n2", "n1", "create node", "sequence", "5").
//	    String()
package graphtest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

type key struct {
	id   string
	name string
	typ  string
}

var nodeKeys, edgeKeys = schema()

func schema() (map[string]key, map[string]key) {
	common := []kind.AttrSpec{
		{Name: kind.AttrID, Type: attr.TypeUint},
		{Name: kind.AttrTimestamp, Type: attr.TypeInt},
		{Name: kind.AttrSequence, Type: attr.TypeInt},
	}
	nodes := []kind.AttrSpec{{Name: kind.AttrNodeType, Type: attr.TypeString}}
	nodes = append(nodes, common...)
	for _, k := range kind.NodeKinds() {
		s, _ := kind.LookupNode(k)
		nodes = append(nodes, s.Attrs...)
	}
	edges := []kind.AttrSpec{{Name: kind.AttrEdgeType, Type: attr.TypeString}}
	edges = append(edges, common...)
	for _, k := range kind.EdgeKinds() {
		s, _ := kind.LookupEdge(k)
		edges = append(edges, s.Attrs...)
	}
	return index("n", nodes), index("e", edges)
}

func index(prefix string, specs []kind.AttrSpec) map[string]key {
	out := map[string]key{}
	for _, s := range specs {
		if _, ok := out[s.Name]; ok {
			continue
		}
		out[s.Name] = key{id: fmt.Sprintf("%s%d", prefix, len(out)), name: s.Name, typ: typeName(s.Type)}
	}
	return out
}

func typeName(t attr.Type) string {
	switch t {
	case attr.TypeBool:
		return "boolean"
	case attr.TypeInt, attr.TypeUint:
		return "long"
	case attr.TypeFloat:
		return "double"
	}
	return "string"
}

// Doc accumulates the body of a GraphML document.
type Doc struct {
	desc string
	body strings.Builder
}

// New returns an empty document.
func New() *Doc { return &Doc{} }

// Desc adds a descriptor block. An empty frame omits the frame id.
func (d *Doc) Desc(isRoot bool, frame string) *Doc {
	var b strings.Builder
	fmt.Fprintf(&b, "<desc><version>0.7.3</version><url>https://example.com/</url><is_root>%t</is_root>", isRoot)
	if frame != "" {
		fmt.Fprintf(&b, "<frame_id>%s</frame_id>", frame)
	}
	b.WriteString("<time><start>1700000000000</start><end>1700000005000</end></time></desc>\n")
	d.desc = b.String()
	return d
}

// Node adds a node of the given kind. attrs alternate semantic name and
// raw value.
func (d *Doc) Node(id, nodeKind string, attrs ...string) *Doc {
	fmt.Fprintf(&d.body, "<node id=%q>", id)
	d.data(nodeKeys, kind.AttrNodeType, nodeKind)
	d.pairs(nodeKeys, attrs)
	d.body.WriteString("</node>\n")
	return d
}

// Edge adds an edge of the given kind. attrs alternate semantic name and
// raw value.
func (d *Doc) Edge(id, source, target, edgeKind string, attrs ...string) *Doc {
	fmt.Fprintf(&d.body, "<edge id=%q source=%q target=%q>", id, source, target)
	d.data(edgeKeys, kind.AttrEdgeType, edgeKind)
	d.pairs(edgeKeys, attrs)
	d.body.WriteString("</edge>\n")
	return d
}

// HTML adds an HTML element node.
func (d *Doc) HTML(id, tag string, deleted bool, nodeID int) *Doc {
	return d.Node(id, string(kind.NodeHTMLElement),
		kind.AttrTagName, tag, kind.AttrIsDeleted, fmt.Sprint(deleted), kind.AttrNodeID, fmt.Sprint(nodeID))
}

// Raw appends text to the graph body verbatim.
func (d *Doc) Raw(s string) *Doc {
	d.body.WriteString(s)
	return d
}

func (d *Doc) pairs(keys map[string]key, attrs []string) {
	if len(attrs)%2 != 0 {
		panic("graphtest: attributes must come in name/value pairs")
	}
	for i := 0; i < len(attrs); i += 2 {
		d.data(keys, attrs[i], attrs[i+1])
	}
}

func (d *Doc) data(keys map[string]key, name, value string) {
	k, ok := keys[name]
	if !ok {
		panic("graphtest: no key for attribute " + name)
	}
	fmt.Fprintf(&d.body, "<data key=%q>", k.id)
	_ = xml.EscapeText(&d.body, []byte(value))
	d.body.WriteString("</data>")
}

// String renders the complete document.
func (d *Doc) String() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns">` + "\n")
	b.WriteString(d.desc)
	writeKeys(&b, "node", nodeKeys)
	writeKeys(&b, "edge", edgeKeys)
	b.WriteString(`<graph id="G" edgedefault="directed">` + "\n")
	b.WriteString(d.body.String())
	b.WriteString("</graph>\n</graphml>\n")
	return b.String()
}

func writeKeys(b *strings.Builder, domain string, keys map[string]key) {
	ordered := make([]key, len(keys))
	for _, k := range keys {
		var n int
		fmt.Sscanf(k.id[1:], "%d", &n)
		ordered[n] = k
	}
	for _, k := range ordered {
		fmt.Fprintf(b, "<key id=%q for=%q attr.name=%q attr.type=%q/>\n", k.id, domain, k.name, k.typ)
	}
}
