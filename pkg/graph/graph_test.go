package graph

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph/graphtest"
	"github.com/matzehuels/pagegraph/pkg/graphml"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

func build(t *testing.T, doc string) (*Graph, error) {
	t.Helper()
	p, err := graphml.NewParser(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	return FromParser(p)
}

func mustBuild(t *testing.T, doc *graphtest.Doc) *Graph {
	t.Helper()
	g, err := build(t, doc.String())
	require.NoError(t, err)
	return g
}

func TestFilterDeletedDivs(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		HTML("n1", "div", true, 1).
		HTML("n2", "span", false, 2))

	got := g.FilterNodes(func(n Node) bool {
		el, ok := n.Type.(kind.HTMLElement)
		return ok && el.IsDeleted
	})
	require.Len(t, got, 1)
	assert.Equal(t, NodeID("n1"), got[0].ID)
	assert.Equal(t, "div", got[0].Type.(kind.HTMLElement).TagName)
}

func TestNeighborsScenario(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		HTML("n1", "div", false, 1).
		HTML("n2", "span", false, 2).
		Edge("e1", "n1", "n2", "structure", "sequence", "5"))

	tests := []struct {
		id   NodeID
		dir  Direction
		want []NodeID
	}{
		{"n1", Outgoing, []NodeID{"n2"}},
		{"n2", Incoming, []NodeID{"n1"}},
		{"n2", Outgoing, []NodeID{}},
		{"n1", Incoming, []NodeID{}},
		{"n1", Both, []NodeID{"n2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.id)+"/"+tt.dir.String(), func(t *testing.T) {
			got, err := g.Neighbors(tt.id, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	e, ok := g.Edge("e1")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Sequence)
	assert.Equal(t, kind.EdgeStructure, e.Kind())
}

func TestNeighborsNotFound(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().HTML("n1", "div", false, 1))

	_, err := g.Neighbors("n9", Outgoing)
	var nf *errors.NodeNotFoundError
	require.True(t, stderrors.As(err, &nf))
	assert.Equal(t, "n9", nf.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound))

	_, err = g.OutgoingEdges("n9")
	assert.True(t, stderrors.As(err, &nf))
	_, err = g.IncomingEdges("n9")
	assert.True(t, stderrors.As(err, &nf))
}

func TestAdjacencyOrderedBySequence(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		Node("n1", "parser").
		HTML("n2", "div", false, 2).
		HTML("n3", "p", false, 3).
		HTML("n4", "a", false, 4).
		Edge("e1", "n1", "n2", "create node", "sequence", "30").
		Edge("e2", "n1", "n3", "create node", "sequence", "10").
		Edge("e3", "n1", "n4", "create node", "sequence", "10").
		Edge("e4", "n1", "n2", "insert node", "sequence", "20", "parent", "1"))

	out, err := g.OutgoingEdges("n1")
	require.NoError(t, err)
	ids := make([]EdgeID, len(out))
	for i, e := range out {
		ids[i] = e.ID
	}
	assert.Equal(t, []EdgeID{"e2", "e3", "e4", "e1"}, ids)

	nb, err := g.Neighbors("n1", Outgoing)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"n3", "n4", "n2"}, nb)

	between := g.EdgesBetween("n1", "n2")
	require.Len(t, between, 2)
	assert.Equal(t, EdgeID("e4"), between[0].ID)
	assert.Equal(t, EdgeID("e1"), between[1].ID)
	assert.Empty(t, g.EdgesBetween("n2", "n1"))
	assert.Empty(t, g.EdgesBetween("n9", "n1"))
}

func TestNeighborsBothMergesBySequence(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		Node("n1", "parser").
		HTML("n2", "div", false, 2).
		Node("n3", "script", "script type", "classic", "script id", "1").
		Edge("e1", "n2", "n3", "execute", "sequence", "2").
		Edge("e2", "n1", "n2", "create node", "sequence", "1").
		Edge("e3", "n3", "n2", "set attribute", "sequence", "3", "key", "class", "is style", "false"))

	got, err := g.Neighbors("n2", Both)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"n1", "n3"}, got)
}

func TestSequenceSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *graphtest.Doc
		want map[EdgeID]int64
	}{
		{
			name: "sequence on every edge",
			doc: graphtest.New().
				Edge("e7", "n1", "n2", "create node", "sequence", "-1", "timestamp", "50").
				Edge("e3", "n1", "n2", "insert node", "parent", "1", "sequence", "4"),
			want: map[EdgeID]int64{"e7": -1, "e3": 4},
		},
		{
			name: "timestamp when a sequence is missing",
			doc: graphtest.New().
				Edge("e1", "n1", "n2", "create node", "sequence", "5", "timestamp", "10").
				Edge("e2", "n1", "n3", "create node", "timestamp", "4"),
			want: map[EdgeID]int64{"e1": 10, "e2": 4},
		},
		{
			name: "edge id when timestamps are missing",
			doc: graphtest.New().
				Edge("e1", "n1", "n2", "create node", "sequence", "5").
				Edge("e2", "n1", "n3", "create node", "timestamp", "4"),
			want: map[EdgeID]int64{"e1": 1, "e2": 2},
		},
		{
			name: "document position for non-numeric ids",
			doc: graphtest.New().
				Edge("e9", "n1", "n2", "create node").
				Edge("edge-a", "n1", "n3", "create node"),
			want: map[EdgeID]int64{"e9": 0, "edge-a": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doc.Node("n1", "parser").HTML("n2", "div", false, 2).HTML("n3", "p", false, 3)
			g := mustBuild(t, tt.doc)
			for eid, want := range tt.want {
				e, ok := g.Edge(eid)
				require.True(t, ok, eid)
				assert.Equal(t, want, e.Sequence, eid)
			}
		})
	}
}

func TestMixedSourcesShareOneScale(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		Node("n1", "parser").
		HTML("n2", "div", false, 2).
		HTML("n3", "p", false, 3).
		Edge("e1", "n1", "n3", "create node", "sequence", "5").
		Edge("e2", "n1", "n2", "create node", "timestamp", "4"))

	nb, err := g.Neighbors("n1", Outgoing)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"n3", "n2"}, nb)

	e, _ := g.Edge("e2")
	ts, ok := e.Timestamp.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(4), ts)
	e, _ = g.Edge("e1")
	assert.False(t, e.Timestamp.IsPresent())
}

func TestNodeSequence(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		Node("n1", "HTML element", "tag name", "div", "node id", "1", "is deleted", "false", "sequence", "3").
		Node("n2", "parser"))

	n, ok := g.Node("n1")
	require.True(t, ok)
	seq, ok := n.Sequence.Get()
	require.True(t, ok)
	assert.Equal(t, int64(3), seq)

	n, _ = g.Node("n2")
	assert.False(t, n.Sequence.IsPresent())

	_, err := build(t, graphtest.New().Node("n1", "parser", "sequence", "x").String())
	var de *errors.DecodeError
	assert.True(t, stderrors.As(err, &de), "got %v", err)
}

func TestOrderPreservation(t *testing.T) {
	t.Parallel()

	doc := graphtest.New()
	for _, id := range []string{"n5", "n1", "n9", "n3"} {
		doc.HTML(id, "div", false, 1)
	}
	g := mustBuild(t, doc)

	got := g.FilterNodes(func(Node) bool { return true })
	var ids []NodeID
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []NodeID{"n5", "n1", "n9", "n3"}, ids)
	assert.Empty(t, g.FilterNodes(func(Node) bool { return false }))
	assert.NotNil(t, g.FilterEdges(func(Edge) bool { return true }))
}

func TestEdgesPrecedingNodes(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().
		Edge("e1", "n1", "n2", "structure").
		HTML("n1", "div", false, 1).
		HTML("n2", "span", false, 2))

	for _, e := range g.Edges() {
		_, ok := g.Node(e.Source)
		assert.True(t, ok)
		_, ok = g.Node(e.Target)
		assert.True(t, ok)
	}
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *graphtest.Doc
		code errors.Code
		want error
	}{
		{
			name: "dangling target",
			doc:  graphtest.New().HTML("n1", "div", false, 1).Edge("e1", "n1", "n9", "structure"),
			code: errors.ErrCodeDanglingEdge,
			want: &errors.DanglingEdgeError{EdgeID: "e1", Endpoint: "target", MissingID: "n9"},
		},
		{
			name: "dangling source",
			doc:  graphtest.New().HTML("n1", "div", false, 1).Edge("e1", "n0", "n1", "structure"),
			code: errors.ErrCodeDanglingEdge,
			want: &errors.DanglingEdgeError{EdgeID: "e1", Endpoint: "source", MissingID: "n0"},
		},
		{
			name: "duplicate node",
			doc:  graphtest.New().HTML("n1", "div", false, 1).HTML("n1", "p", false, 2),
			code: errors.ErrCodeDuplicateNode,
			want: &errors.DuplicateNodeIDError{ID: "n1"},
		},
		{
			name: "duplicate edge",
			doc: graphtest.New().HTML("n1", "div", false, 1).
				Edge("e1", "n1", "n1", "structure").Edge("e1", "n1", "n1", "structure"),
			code: errors.ErrCodeDuplicateEdge,
			want: &errors.DuplicateEdgeIDError{ID: "e1"},
		},
		{
			name: "unknown node kind",
			doc:  graphtest.New().Node("n1", "hologram"),
			code: errors.ErrCodeUnknownKind,
			want: &errors.UnknownKindError{Element: "node", Discriminator: "hologram", ElementID: "n1"},
		},
		{
			name: "boolean spelled 1",
			doc:  graphtest.New().Node("n1", "HTML element", "tag name", "div", "is deleted", "1", "node id", "1"),
			code: errors.ErrCodeDecode,
		},
		{
			name: "id mismatch",
			doc:  graphtest.New().Node("n1", "parser", "id", "2"),
			code: errors.ErrCodeDecode,
		},
		{
			name: "missing discriminator",
			doc:  graphtest.New().Raw(`<node id="n1"></node>`),
			code: errors.ErrCodeInvalidAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := build(t, tt.doc.String())
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Equal(t, tt.code, errors.GetCode(err))
			if tt.want != nil {
				assert.Equal(t, tt.want.Error(), err.Error())
			}
		})
	}
}

func TestBuildMalformed(t *testing.T) {
	t.Parallel()

	_, err := build(t, `<graphml><graph><node id="n1"></graph></graphml>`)
	var md *errors.MalformedDocumentError
	require.True(t, stderrors.As(err, &md))
}

func TestDefaultsOnlyForAcceptingKinds(t *testing.T) {
	t.Parallel()

	doc := `<graphml>
<key id="t" for="node" attr.name="node type" attr.type="string"/>
<key id="g" for="node" attr.name="tag name" attr.type="string"/>
<key id="d" for="node" attr.name="is deleted" attr.type="boolean"><default>false</default></key>
<key id="i" for="node" attr.name="node id" attr.type="long"/>
<graph>
<node id="n1"><data key="t">parser</data></node>
<node id="n2"><data key="t">HTML element</data><data key="g">div</data><data key="i">2</data></node>
</graph></graphml>`
	g, err := build(t, doc)
	require.NoError(t, err)

	n, ok := g.Node("n2")
	require.True(t, ok)
	el := n.Type.(kind.HTMLElement)
	assert.False(t, el.IsDeleted)
	assert.Equal(t, uint64(2), el.NodeID)
}

func TestDescriptor(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().Desc(false, "0a1b2c3d4e5f60718293a4b5c6d7e8f9").Node("n1", "parser"))
	d, ok := g.Descriptor()
	require.True(t, ok)
	assert.False(t, d.IsRoot)
	assert.False(t, g.IsRoot())
	assert.Equal(t, "0A1B2C3D4E5F60718293A4B5C6D7E8F9", d.FrameID.String())
	assert.Equal(t, int64(1700000000000), d.Start.UnixMilli())
	assert.Equal(t, "https://example.com/", d.URL)

	g = mustBuild(t, graphtest.New().Node("n1", "parser"))
	_, ok = g.Descriptor()
	assert.False(t, ok)
	assert.True(t, g.IsRoot())
}

func TestNodeJSON(t *testing.T) {
	t.Parallel()

	g := mustBuild(t, graphtest.New().Node("n1", "resource", "url", "https://a.test/x.js", "timestamp", "4"))
	n, _ := g.Node("n1")
	b, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","kind":"resource","timestamp":4,"sequence":null,"attributes":{"url":"https://a.test/x.js","resource_type":null}}`, string(b))
}
