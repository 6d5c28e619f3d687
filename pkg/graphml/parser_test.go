package graphml

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <desc>
    <version>0.7.3</version>
    <about>https://github.com/brave/brave-browser/wiki/PageGraph</about>
    <url>https://example.com/</url>
    <is_root>true</is_root>
    <frame_id>0A1B2C3D4E5F60718293A4B5C6D7E8F9</frame_id>
    <time><start>1700000000000</start><end>1700000005000</end></time>
  </desc>
  <key id="d0" for="node" attr.name="node type" attr.type="string"/>
  <key id="d1" for="node" attr.name="tag name" attr.type="string"/>
  <key id="d2" for="node" attr.name="is deleted" attr.type="boolean">
    <default>false</default>
  </key>
  <key id="d0" for="edge" attr.name="edge type" attr.type="string"/>
  <key id="d3" for="all" attr.name="timestamp" attr.type="long"/>
  <graph id="G" edgedefault="directed">
    <edge id="e1" source="n1" target="n2">
      <data key="d0">structure</data>
      <data key="d3">5</data>
    </edge>
    <node id="n1">
      <data key="d0">HTML element</data>
      <data key="d1"><![CDATA[div]]></data>
      <data key="d2">true</data>
    </node>
    <node id="n2">
      <data key="d0">HTML element</data>
      <data key="d1">span</data>
    </node>
  </graph>
</graphml>
`

func collect(t *testing.T, p *Parser) ([]Record, error) {
	t.Helper()
	var out []Record
	for rec, err := range p.Records() {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func TestParserSample(t *testing.T) {
	t.Parallel()

	p, err := NewParser(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	s := p.Schema()
	assert.Equal(t, 5, s.Len())

	k, ok := s.Lookup(DomainNode, "d0")
	require.True(t, ok)
	assert.Equal(t, "node type", k.Name)

	k, ok = s.Lookup(DomainEdge, "d0")
	require.True(t, ok)
	assert.Equal(t, "edge type", k.Name)

	k, ok = s.Lookup(DomainEdge, "d3")
	require.True(t, ok)
	assert.Equal(t, attr.TypeInt, k.Type)

	_, ok = s.Lookup(DomainEdge, "d1")
	assert.False(t, ok)

	defaults := s.Defaults(DomainNode)
	require.Len(t, defaults, 1)
	assert.Equal(t, "is deleted", defaults[0].Name)
	assert.Equal(t, "false", defaults[0].Default.OrElse(""))

	desc, ok := p.Descriptor()
	require.True(t, ok)
	assert.Equal(t, "0.7.3", desc.Version)
	assert.Equal(t, "true", desc.IsRoot)
	assert.Equal(t, "1700000005000", desc.TimeEnd)

	recs, err := collect(t, p)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, ElementEdge, recs[0].Kind)
	assert.Equal(t, "e1", recs[0].ID)
	assert.Equal(t, "n1", recs[0].Source)
	assert.Equal(t, "n2", recs[0].Target)

	assert.Equal(t, ElementNode, recs[1].Kind)
	assert.Equal(t, []Datum{{"d0", "HTML element"}, {"d1", "div"}, {"d2", "true"}}, recs[1].Data)
	assert.Equal(t, "n2", recs[2].ID)

	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParserWithoutDescriptor(t *testing.T) {
	t.Parallel()

	doc := `<graphml><key id="k" for="node" attr.name="node type" attr.type="string"/>
<graph><node id="n1"><data key="k">parser</data></node></graph></graphml>`
	p, err := NewParser(strings.NewReader(doc))
	require.NoError(t, err)

	_, ok := p.Descriptor()
	assert.False(t, ok)

	recs, err := collect(t, p)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParserMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		doc    string
		reason string
	}{
		{
			name:   "unclosed tag",
			doc:    `<graphml><graph><node id="n1"></graph></graphml>`,
			reason: "invalid XML",
		},
		{
			name:   "truncated",
			doc:    `<graphml><graph><node id="n1">`,
			reason: "invalid XML",
		},
		{
			name:   "key without type",
			doc:    `<graphml><key id="d0" for="node" attr.name="node type"/><graph/></graphml>`,
			reason: "key d0 has no attr.type",
		},
		{
			name:   "key with unknown type",
			doc:    `<graphml><key id="d0" for="node" attr.name="x" attr.type="date"/><graph/></graphml>`,
			reason: `key d0 declares unsupported attr.type "date"`,
		},
		{
			name:   "key declared twice",
			doc:    `<graphml><key id="d0" for="node" attr.name="a" attr.type="string"/><key id="d0" for="all" attr.name="b" attr.type="string"/><graph/></graphml>`,
			reason: "key d0 declared twice for all",
		},
		{
			name:   "undeclared key",
			doc:    `<graphml><graph><node id="n1"><data key="d9">x</data></node></graph></graphml>`,
			reason: `node n1 references undeclared key "d9"`,
		},
		{
			name:   "node key used on edge",
			doc:    `<graphml><key id="d0" for="node" attr.name="a" attr.type="string"/><graph><edge id="e1" source="n1" target="n2"><data key="d0">x</data></edge></graph></graphml>`,
			reason: `edge e1 references undeclared key "d0"`,
		},
		{
			name:   "edge without target",
			doc:    `<graphml><graph><edge id="e1" source="n1"/></graph></graphml>`,
			reason: "edge e1 needs both source and target",
		},
		{
			name:   "no graph",
			doc:    `<graphml><key id="d0" for="node" attr.name="a" attr.type="string"/></graphml>`,
			reason: "document has no <graph> element",
		},
		{
			name:   "wrong root",
			doc:    `<svg/>`,
			reason: "expected <graphml> root element, found <svg>",
		},
		{
			name:   "empty input",
			doc:    ``,
			reason: "missing <graphml> root element",
		},
		{
			name:   "key after graph",
			doc:    `<graphml><graph/><key id="d0" for="node" attr.name="a" attr.type="string"/></graphml>`,
			reason: "<key> declared after <graph>",
		},
		{
			name:   "second graph",
			doc:    `<graphml><graph/><graph/></graphml>`,
			reason: "more than one <graph> element",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParser(strings.NewReader(tt.doc))
			if err == nil {
				_, err = collect(t, p)
			}
			var md *errors.MalformedDocumentError
			require.True(t, stderrors.As(err, &md), "want MalformedDocumentError, got %v", err)
			assert.Equal(t, tt.reason, md.Reason)
		})
	}
}

func TestParserErrorIsSticky(t *testing.T) {
	t.Parallel()

	p, err := NewParser(strings.NewReader(`<graphml><graph><node id="n1"><data key="x">1</data></node><node id="n2"/></graph></graphml>`))
	require.NoError(t, err)

	_, first := p.Next()
	require.Error(t, first)
	_, second := p.Next()
	assert.Same(t, first, second)
}

func TestParserMalformedPosition(t *testing.T) {
	t.Parallel()

	doc := "<graphml>\n<graph>\n<node id=\"n1\">\n</edge>\n</graph>\n</graphml>"
	p, err := NewParser(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = collect(t, p)
	var md *errors.MalformedDocumentError
	require.True(t, stderrors.As(err, &md))
	assert.Equal(t, 4, md.Line)
	assert.Positive(t, md.Offset)
}
