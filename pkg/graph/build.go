package graph

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graphml"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// FromParser builds a graph from everything p has left to read.
func FromParser(p *graphml.Parser) (*Graph, error) {
	var desc *graphml.Descriptor
	if d, ok := p.Descriptor(); ok {
		desc = &d
	}
	return Build(p.Schema(), desc, p.Records())
}

// Build resolves raw records into a typed graph.
//
// Records are buffered first because edges may precede the nodes they
// reference. Nodes are then resolved in document order, followed by edges,
// whose endpoints must exist. Any error aborts the build; no partial graph
// is returned.
func Build(schema *graphml.Schema, desc *graphml.Descriptor, records iter.Seq2[graphml.Record, error]) (*Graph, error) {
	var nodeRecs, edgeRecs []graphml.Record
	for rec, err := range records {
		if err != nil {
			return nil, err
		}
		switch rec.Kind {
		case graphml.ElementNode:
			nodeRecs = append(nodeRecs, rec)
		case graphml.ElementEdge:
			edgeRecs = append(edgeRecs, rec)
		}
	}

	g := newGraph(len(nodeRecs), len(edgeRecs))
	if desc != nil {
		d, err := parseDescriptor(*desc)
		if err != nil {
			return nil, err
		}
		g.desc = &d
	}

	for _, rec := range nodeRecs {
		if _, dup := g.nodeIdx[NodeID(rec.ID)]; dup {
			return nil, &errors.DuplicateNodeIDError{ID: rec.ID}
		}
		n, err := resolveNode(schema, rec)
		if err != nil {
			return nil, err
		}
		g.addNode(n)
	}

	edges := make([]Edge, 0, len(edgeRecs))
	orders := make([]edgeOrder, 0, len(edgeRecs))
	seen := make(map[string]bool, len(edgeRecs))
	for pos, rec := range edgeRecs {
		if seen[rec.ID] {
			return nil, &errors.DuplicateEdgeIDError{ID: rec.ID}
		}
		seen[rec.ID] = true
		e, ord, err := resolveEdge(schema, rec, int64(pos))
		if err != nil {
			return nil, err
		}
		if _, ok := g.nodeIdx[e.Source]; !ok {
			return nil, &errors.DanglingEdgeError{EdgeID: rec.ID, Endpoint: "source", MissingID: rec.Source}
		}
		if _, ok := g.nodeIdx[e.Target]; !ok {
			return nil, &errors.DanglingEdgeError{EdgeID: rec.ID, Endpoint: "target", MissingID: rec.Target}
		}
		edges = append(edges, e)
		orders = append(orders, ord)
	}
	src := orderSourceOf(orders)
	for i, e := range edges {
		e.Sequence = orders[i].value(src)
		g.addEdge(e)
	}

	g.index()
	return g, nil
}

func resolveNode(schema *graphml.Schema, rec graphml.Record) (Node, error) {
	b, err := bagOf(schema, rec)
	if err != nil {
		return Node{}, err
	}
	disc, err := b.String(kind.AttrNodeType)
	if err != nil {
		return Node{}, err
	}
	if err := checkID(b, rec.ID, id.ParseNode); err != nil {
		return Node{}, err
	}
	ts, err := timestamp(b)
	if err != nil {
		return Node{}, err
	}
	seq, err := recordedSequence(b)
	if err != nil {
		return Node{}, err
	}
	nt, err := kind.ResolveNode(disc, b)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: NodeID(rec.ID), Timestamp: ts, Sequence: seq, Type: nt}, nil
}

func resolveEdge(schema *graphml.Schema, rec graphml.Record, pos int64) (Edge, edgeOrder, error) {
	b, err := bagOf(schema, rec)
	if err != nil {
		return Edge{}, edgeOrder{}, err
	}
	disc, err := b.String(kind.AttrEdgeType)
	if err != nil {
		return Edge{}, edgeOrder{}, err
	}
	if err := checkID(b, rec.ID, id.ParseEdge); err != nil {
		return Edge{}, edgeOrder{}, err
	}
	ts, err := timestamp(b)
	if err != nil {
		return Edge{}, edgeOrder{}, err
	}
	seq, err := recordedSequence(b)
	if err != nil {
		return Edge{}, edgeOrder{}, err
	}
	et, err := kind.ResolveEdge(disc, b)
	if err != nil {
		return Edge{}, edgeOrder{}, err
	}
	ord := edgeOrder{seq: seq, ts: ts, num: attr.None[int64](), pos: pos}
	if it, err := id.ParseEdge(rec.ID); err == nil && it.Num <= math.MaxInt64 {
		ord.num = attr.Some(int64(it.Num))
	}
	return Edge{
		ID:        EdgeID(rec.ID),
		Source:    NodeID(rec.Source),
		Target:    NodeID(rec.Target),
		Timestamp: ts,
		Type:      et,
	}, ord, nil
}

// bagOf decodes the data of rec against the schema. Declared defaults fill
// in absent attributes, but only those the element's kind accepts.
func bagOf(schema *graphml.Schema, rec graphml.Record) (*attr.Bag, error) {
	d := rec.Kind.Domain()
	values := make(map[string]attr.Value, len(rec.Data))
	for _, datum := range rec.Data {
		k, ok := schema.Lookup(d, datum.Key)
		if !ok {
			return nil, &errors.MalformedDocumentError{
				Line:   rec.Line,
				Reason: fmt.Sprintf("%s %s references undeclared key %q", rec.Kind, rec.ID, datum.Key),
			}
		}
		v, err := attr.Decode(k.Name, k.Type, datum.Value)
		if err != nil {
			return nil, withElement(err, rec.ID)
		}
		values[k.Name] = v
	}

	defaults := schema.Defaults(d)
	if len(defaults) == 0 {
		return attr.NewBag(rec.ID, values), nil
	}
	discName := kind.AttrNodeType
	if rec.Kind == graphml.ElementEdge {
		discName = kind.AttrEdgeType
	}
	fill := func(k graphml.Key) error {
		if _, ok := values[k.Name]; ok {
			return nil
		}
		raw, _ := k.Default.Get()
		v, err := attr.Decode(k.Name, k.Type, raw)
		if err != nil {
			return withElement(err, rec.ID)
		}
		values[k.Name] = v
		return nil
	}
	for _, k := range defaults {
		if k.Name == discName {
			if err := fill(k); err != nil {
				return nil, err
			}
		}
	}
	disc := values[discName].Raw()
	for _, k := range defaults {
		if k.Name == discName || !accepts(rec.Kind, disc, k.Name) {
			continue
		}
		if err := fill(k); err != nil {
			return nil, err
		}
	}
	return attr.NewBag(rec.ID, values), nil
}

// accepts reports whether an element of the given kind reads attribute name.
func accepts(el graphml.ElementKind, disc, name string) bool {
	switch name {
	case kind.AttrID, kind.AttrTimestamp, kind.AttrSequence:
		return true
	}
	if el == graphml.ElementEdge {
		return kind.EdgeAccepts(kind.EdgeKind(disc), name)
	}
	return kind.NodeAccepts(kind.NodeKind(disc), name)
}

func withElement(err error, elementID string) error {
	if de, ok := err.(*errors.DecodeError); ok && de.ElementID == "" {
		de.ElementID = elementID
	}
	return err
}

// checkID verifies that an "id" attribute, when recorded, matches the
// numeric part of the element id.
func checkID(b *attr.Bag, raw string, parse func(string) (id.Item, error)) error {
	v, ok := b.Take(kind.AttrID)
	if !ok {
		return nil
	}
	n, err := v.As(kind.AttrID, attr.TypeUint)
	if err != nil {
		return withElement(err, raw)
	}
	it, err := parse(raw)
	if err != nil {
		return err
	}
	if it.Num != n.Uint() {
		return &errors.DecodeError{
			ElementID: raw,
			Key:       kind.AttrID,
			Expected:  strconv.FormatUint(it.Num, 10),
			Raw:       v.Raw(),
		}
	}
	return nil
}

// timestamp reads the optional timestamp. Recordings declare it as long or
// double; fractional values are truncated.
func timestamp(b *attr.Bag) (attr.Optional[int64], error) {
	v, ok := b.Take(kind.AttrTimestamp)
	if !ok {
		return attr.None[int64](), nil
	}
	if v.Type() == attr.TypeFloat {
		return attr.Some(int64(v.Float())), nil
	}
	n, err := v.As(kind.AttrTimestamp, attr.TypeInt)
	if err != nil {
		return attr.None[int64](), withElement(err, b.ElementID())
	}
	return attr.Some(n.Int()), nil
}

// recordedSequence reads the optional sequence attribute.
func recordedSequence(b *attr.Bag) (attr.Optional[int64], error) {
	v, ok := b.Take(kind.AttrSequence)
	if !ok {
		return attr.None[int64](), nil
	}
	n, err := v.As(kind.AttrSequence, attr.TypeInt)
	if err != nil {
		return attr.None[int64](), withElement(err, b.ElementID())
	}
	return attr.Some(n.Int()), nil
}

// orderSource is where a graph takes the sequence of its edges from.
type orderSource uint8

const (
	orderSequence orderSource = iota
	orderTimestamp
	orderEdgeID
	orderPosition
)

// edgeOrder holds the candidate ordering values of one edge.
type edgeOrder struct {
	seq, ts, num attr.Optional[int64]
	pos          int64
}

// orderSourceOf picks the first source that every edge records: the
// sequence attribute, the timestamp, the numeric edge id, the document
// position. All edges of one graph are ordered on the same scale.
func orderSourceOf(orders []edgeOrder) orderSource {
	all := func(has func(edgeOrder) bool) bool {
		for _, o := range orders {
			if !has(o) {
				return false
			}
		}
		return true
	}
	switch {
	case all(func(o edgeOrder) bool { return o.seq.IsPresent() }):
		return orderSequence
	case all(func(o edgeOrder) bool { return o.ts.IsPresent() }):
		return orderTimestamp
	case all(func(o edgeOrder) bool { return o.num.IsPresent() }):
		return orderEdgeID
	}
	return orderPosition
}

func (o edgeOrder) value(src orderSource) int64 {
	switch src {
	case orderSequence:
		return o.seq.OrElse(0)
	case orderTimestamp:
		return o.ts.OrElse(0)
	case orderEdgeID:
		return o.num.OrElse(0)
	}
	return o.pos
}

func parseDescriptor(raw graphml.Descriptor) (Descriptor, error) {
	d := Descriptor{Version: raw.Version, About: raw.About, URL: raw.URL}
	if raw.IsRoot != "" {
		v, err := attr.Decode("is_root", attr.TypeBool, raw.IsRoot)
		if err != nil {
			return Descriptor{}, err
		}
		d.IsRoot = v.Bool()
	}
	if raw.FrameID != "" {
		f, err := id.ParseFrameID(raw.FrameID)
		if err != nil {
			return Descriptor{}, &errors.DecodeError{Key: "frame_id", Expected: "frame id", Raw: raw.FrameID, Cause: err}
		}
		d.FrameID = f
	}
	var err error
	if d.Start, err = millis("time.start", raw.TimeStart); err != nil {
		return Descriptor{}, err
	}
	if d.End, err = millis("time.end", raw.TimeEnd); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func millis(key, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	v, err := attr.Decode(key, attr.TypeInt, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(v.Int()).UTC(), nil
}
