package io

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/graph/graphtest"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

const frameHex = "0A1B2C3D4E5F60718293A4B5C6D7E8F9"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFromFile(t *testing.T) {
	t.Parallel()

	doc := graphtest.New().
		HTML("n1", "div", true, 1).
		HTML("n2", "span", false, 2).
		Edge("e1", "n1", "n2", "structure").
		String()
	path := writeFile(t, t.TempDir(), "page_graph.graphml", doc)

	g, err := ReadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestReadFromFileMalformed(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.graphml", `<graphml><graph><node id="n1"></graph></graphml>`)

	g, err := ReadFromFile(path)
	assert.Nil(t, g)
	var md *errors.MalformedDocumentError
	require.True(t, stderrors.As(err, &md))
	assert.Contains(t, err.Error(), path)
}

func TestReadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.graphml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestReadFromReader(t *testing.T) {
	t.Parallel()

	g, err := ReadFromReader(strings.NewReader(graphtest.New().Node("n1", "parser").String()))
	require.NoError(t, err)
	n, ok := g.Node("n1")
	require.True(t, ok)
	assert.Equal(t, kind.NodeParser, n.Kind())
}

// sampleValue returns a raw value the registry accepts for a.
func sampleValue(a kind.AttrSpec) string {
	switch {
	case a.Name == kind.AttrFrameID:
		return frameHex
	case a.Enum != nil:
		return a.Enum.Values[0]
	}
	switch a.Type {
	case attr.TypeBool:
		return "false"
	case attr.TypeInt, attr.TypeUint:
		return "1"
	case attr.TypeFloat:
		return "1.5"
	}
	return "x"
}

func TestReadEveryNodeKind(t *testing.T) {
	t.Parallel()

	for _, k := range kind.NodeKinds() {
		t.Run(string(k), func(t *testing.T) {
			spec, ok := kind.LookupNode(k)
			require.True(t, ok)
			var attrs []string
			for _, a := range spec.Attrs {
				if a.Required {
					attrs = append(attrs, a.Name, sampleValue(a))
				}
			}

			g, err := ReadFromReader(strings.NewReader(graphtest.New().Node("n1", string(k), attrs...).String()))
			require.NoError(t, err)
			n, ok := g.Node("n1")
			require.True(t, ok)
			assert.Equal(t, k, n.Kind())
		})
	}
}

func rootDoc() string {
	return graphtest.New().
		Desc(true, "").
		Node("n1", "DOM root", "tag name", "html", "is deleted", "false", "node id", "1", "url", "https://example.com/").
		Node("n2", "frame owner", "tag name", "iframe", "is deleted", "false", "node id", "2").
		Node("n3", "remote frame", "frame id", frameHex).
		Edge("e1", "n2", "n3", "cross DOM", "sequence", "1").
		String()
}

func frameDoc() string {
	return graphtest.New().
		Desc(false, frameHex).
		Node("n1", "parser").
		Node("n2", "DOM root", "tag name", "html", "is deleted", "false", "node id", "1", "url", "https://ads.test/").
		HTML("n3", "img", false, 2).
		Edge("e1", "n1", "n3", "create node", "sequence", "1").
		Edge("e2", "n1", "n3", "insert node", "sequence", "2", "parent", "1").
		String()
}

func TestReadWithFrames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "page_graph.graphml", rootDoc())
	fid, err := id.ParseFrameID(frameHex)
	require.NoError(t, err)
	writeFile(t, dir, filepath.Base(FramePath(path, fid)), frameDoc())

	g, err := ReadWithFrames(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, g.NodeCount())
	assert.Equal(t, 5, g.EdgeCount())

	n, ok := g.Node(graph.NodeID("n3:" + frameHex))
	require.True(t, ok)
	assert.Equal(t, "img", n.Type.(kind.HTMLElement).TagName)

	out, err := g.OutgoingEdges("n3")
	require.NoError(t, err)
	require.Len(t, out, 2)
	targets := []graph.NodeID{out[0].Target, out[1].Target}
	assert.ElementsMatch(t, []graph.NodeID{
		graph.NodeID("n1:" + frameHex),
		graph.NodeID("n2:" + frameHex),
	}, targets)
	for _, e := range out {
		assert.Equal(t, kind.EdgeCrossDOM, e.Kind())
	}

	_, ok = g.Edge(graph.EdgeID("e2:" + frameHex))
	assert.True(t, ok)
}

func TestReadWithFramesMissingFrameFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "page_graph.graphml", rootDoc())

	g, err := ReadWithFrames(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
}

func TestReadWithFramesBadFrame(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "page_graph.graphml", rootDoc())
	writeFile(t, dir, "page_graph_"+frameHex+".0.graphml", "<graphml>")

	_, err := ReadWithFrames(context.Background(), path, WithParallelism(1))
	var md *errors.MalformedDocumentError
	assert.True(t, stderrors.As(err, &md))
}
