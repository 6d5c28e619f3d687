// Package graphml streams GraphML documents into raw, untyped records.
//
// A document starts with a preamble of <key> declarations mapping short
// key ids to a semantic name, a scalar type and the element class they apply
// to. PageGraph documents add a <desc> block describing the recording. A
// single <graph> element follows with <node> and <edge> children whose
// <data key="..."> children carry attribute text.
//
//	p, err := graphml.NewParser(r)
//	if err != nil {
//	    return err
//	}
//	for rec, err := range p.Records() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec.Kind, rec.ID, len(rec.Data))
//	}
//
// The parser checks only document structure: well-formed XML, complete key
// declarations, and data elements that reference declared keys. It knows
// nothing about PageGraph node or edge kinds; that lives in package kind and
// is applied by package graph.
package graphml
