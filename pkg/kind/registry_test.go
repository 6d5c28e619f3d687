package kind

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
)

const testFrame = "0A1B2C3D4E5F60718293A4B5C6D7E8F9"

// sample returns a valid raw value for an attribute contract.
func sample(a AttrSpec) string {
	switch {
	case a.Enum != nil:
		return a.Enum.Values[0]
	case a.Name == AttrFrameID:
		return testFrame
	}
	switch a.Type {
	case attr.TypeBool:
		return "true"
	case attr.TypeUint, attr.TypeInt:
		return "7"
	case attr.TypeFloat:
		return "1.5"
	}
	return "v:" + a.Name
}

func bagFor(t *testing.T, specs []AttrSpec, withOptional bool) (*attr.Bag, map[string]string) {
	t.Helper()
	values := map[string]attr.Value{}
	raw := map[string]string{}
	for _, a := range specs {
		if !a.Required && !withOptional {
			continue
		}
		s := sample(a)
		v, err := attr.Decode(a.Name, a.Type, s)
		require.NoError(t, err)
		values[a.Name] = v
		raw[a.Name] = s
	}
	return attr.NewBag("x1", values), raw
}

func TestNodeKindsResolve(t *testing.T) {
	t.Parallel()

	kinds := NodeKinds()
	require.Len(t, kinds, 26)

	for _, k := range kinds {
		spec, ok := LookupNode(k)
		require.True(t, ok)
		for _, withOptional := range []bool{false, true} {
			b, raw := bagFor(t, spec.Attrs, withOptional)
			nt, err := ResolveNode(string(k), b)
			require.NoError(t, err, "kind %q", k)
			assert.Equal(t, k, nt.Kind())
			assert.Empty(t, b.Unused(), "kind %q", k)

			for name, want := range raw {
				got, present := Attribute(nt, name)
				assert.True(t, present, "kind %q attr %q", k, name)
				assert.Equal(t, want, got, "kind %q attr %q", k, name)
			}
			if !withOptional {
				for _, name := range spec.Optional() {
					_, present := Attribute(nt, name)
					assert.False(t, present, "kind %q optional %q", k, name)
				}
			}
		}
	}
}

func TestEdgeKindsResolve(t *testing.T) {
	t.Parallel()

	kinds := EdgeKinds()
	require.Len(t, kinds, 31)

	for _, k := range kinds {
		spec, ok := LookupEdge(k)
		require.True(t, ok)
		for _, withOptional := range []bool{false, true} {
			b, raw := bagFor(t, spec.Attrs, withOptional)
			et, err := ResolveEdge(string(k), b)
			require.NoError(t, err, "kind %q", k)
			assert.Equal(t, k, et.Kind())

			for name, want := range raw {
				got, present := Attribute(et, name)
				assert.True(t, present, "kind %q attr %q", k, name)
				assert.Equal(t, want, got, "kind %q attr %q", k, name)
			}
		}
	}
}

func TestResolveUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := ResolveNode("hologram", attr.NewBag("n4", nil))
	var uk *errors.UnknownKindError
	require.True(t, stderrors.As(err, &uk))
	assert.Equal(t, "hologram", uk.Discriminator)
	assert.Equal(t, "n4", uk.ElementID)
	assert.Equal(t, "node", uk.Element)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownKind))

	_, err = ResolveEdge("teleport", attr.NewBag("e4", nil))
	require.True(t, stderrors.As(err, &uk))
	assert.Equal(t, "edge", uk.Element)
}

func TestResolveMissingRequired(t *testing.T) {
	t.Parallel()

	b := attr.NewBag("n1", map[string]attr.Value{
		AttrTagName: attr.StringValue("div"),
		AttrNodeID:  attr.StringValue("3"),
	})
	_, err := ResolveNode(string(NodeHTMLElement), b)

	var ae *errors.AttributeError
	require.True(t, stderrors.As(err, &ae))
	assert.True(t, ae.Missing)
	assert.Equal(t, AttrIsDeleted, ae.Key)
	assert.Equal(t, "n1", ae.ElementID)
}

func TestResolveRejectsUndeclared(t *testing.T) {
	t.Parallel()

	b := attr.NewBag("n1", map[string]attr.Value{AttrURL: attr.StringValue("https://example.com")})
	_, err := ResolveNode(string(NodeParser), b)

	var ae *errors.AttributeError
	require.True(t, stderrors.As(err, &ae))
	assert.False(t, ae.Missing)
	assert.Equal(t, AttrURL, ae.Key)
}

func TestResolveStrictBoolean(t *testing.T) {
	t.Parallel()

	b := attr.NewBag("n1", map[string]attr.Value{
		AttrTagName:   attr.StringValue("div"),
		AttrIsDeleted: attr.StringValue("1"),
		AttrNodeID:    attr.StringValue("3"),
	})
	_, err := ResolveNode(string(NodeHTMLElement), b)

	var de *errors.DecodeError
	require.True(t, stderrors.As(err, &de))
	assert.Equal(t, AttrIsDeleted, de.Key)
	assert.Equal(t, "1", de.Raw)
	assert.Equal(t, "n1", de.ElementID)
}

func TestResolveRequestType(t *testing.T) {
	t.Parallel()

	values := func(rt string) map[string]attr.Value {
		return map[string]attr.Value{
			AttrRequestType: attr.StringValue(rt),
			AttrStatus:      attr.StringValue("started"),
			AttrRequestID:   attr.StringValue("12"),
		}
	}

	et, err := ResolveEdge(string(EdgeRequestStart), attr.NewBag("e1", values("CSS")))
	require.NoError(t, err)
	rs, ok := et.(RequestStart)
	require.True(t, ok)
	assert.Equal(t, RequestCSS, rs.RequestType)
	assert.Equal(t, "stylesheet", rs.RequestType.Label())
	assert.Equal(t, uint64(12), rs.RequestID)

	_, err = ResolveEdge(string(EdgeRequestStart), attr.NewBag("e1", values("Font")))
	var de *errors.DecodeError
	require.True(t, stderrors.As(err, &de))
	assert.Equal(t, "Font", de.Raw)
}

func TestResolveRemoteFrameID(t *testing.T) {
	t.Parallel()

	nt, err := ResolveNode(string(NodeRemoteFrame), attr.NewBag("n9", map[string]attr.Value{
		AttrFrameID: attr.StringValue("0a1b2c3d4e5f60718293a4b5c6d7e8f9"),
	}))
	require.NoError(t, err)
	assert.Equal(t, testFrame, nt.(RemoteFrame).FrameID.String())

	_, err = ResolveNode(string(NodeRemoteFrame), attr.NewBag("n9", map[string]attr.Value{
		AttrFrameID: attr.StringValue("abc"),
	}))
	var de *errors.DecodeError
	require.True(t, stderrors.As(err, &de))
	assert.Equal(t, "frame id", de.Expected)
}

func TestSpecNames(t *testing.T) {
	t.Parallel()

	spec, ok := LookupNode(NodeScript)
	require.True(t, ok)
	assert.Equal(t, []string{AttrScriptType, AttrScriptID}, spec.Required())
	assert.Equal(t, []string{AttrURL, AttrSource}, spec.Optional())

	_, ok = LookupEdge("nope")
	assert.False(t, ok)
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	fields := Attributes(InsertNode{Parent: 4})
	assert.Equal(t, []Field{
		{Name: AttrParent, Value: "4", Present: true},
		{Name: AttrBefore, Value: "", Present: false},
	}, fields)

	assert.Empty(t, Attributes(Parser{}))
	assert.Nil(t, Attributes(42))
}
