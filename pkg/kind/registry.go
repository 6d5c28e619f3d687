package kind

import (
	"maps"
	"slices"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/id"
)

// Attribute names common to every element. They are consumed by the graph
// builder before kind resolution.
const (
	AttrNodeType  = "node type"
	AttrEdgeType  = "edge type"
	AttrID        = "id"
	AttrTimestamp = "timestamp"
	AttrSequence  = "sequence"
)

// Kind-specific attribute names.
const (
	AttrURL             = "url"
	AttrResourceType    = "resource type"
	AttrRule            = "rule"
	AttrMethod          = "method"
	AttrTagName         = "tag name"
	AttrIsDeleted       = "is deleted"
	AttrNodeID          = "node id"
	AttrText            = "text"
	AttrFrameID         = "frame id"
	AttrScriptType      = "script type"
	AttrScriptID        = "script id"
	AttrSource          = "source"
	AttrBinding         = "binding"
	AttrBindingType     = "binding type"
	AttrBindingEvent    = "binding event"
	AttrParent          = "parent"
	AttrBefore          = "before"
	AttrValue           = "value"
	AttrArgs            = "args"
	AttrScriptPosition  = "script position"
	AttrStatus          = "status"
	AttrResponseHash    = "response hash"
	AttrRequestID       = "request id"
	AttrHeaders         = "headers"
	AttrSize            = "size"
	AttrRequestType     = "request type"
	AttrKey             = "key"
	AttrEventListenerID = "event listener id"
	AttrAttrName        = "attr name"
	AttrIsStyle         = "is style"
)

// AttrSpec declares one attribute a kind reads.
type AttrSpec struct {
	Name     string
	Type     attr.Type
	Required bool
	Enum     *attr.Enum
}

func req(name string, t attr.Type) AttrSpec { return AttrSpec{Name: name, Type: t, Required: true} }
func opt(name string, t attr.Type) AttrSpec { return AttrSpec{Name: name, Type: t} }
func enum(name string, e attr.Enum) AttrSpec {
	return AttrSpec{Name: name, Type: attr.TypeString, Required: true, Enum: &e}
}

// NodeSpec is the attribute contract and constructor of one node kind.
type NodeSpec struct {
	Kind  NodeKind
	Attrs []AttrSpec
	build func(r *reader) NodeType
}

// EdgeSpec is the attribute contract and constructor of one edge kind.
type EdgeSpec struct {
	Kind  EdgeKind
	Attrs []AttrSpec
	build func(r *reader) EdgeType
}

// Required returns the names of required attributes.
func (s NodeSpec) Required() []string { return names(s.Attrs, true) }

// Optional returns the names of optional attributes.
func (s NodeSpec) Optional() []string { return names(s.Attrs, false) }

// Required returns the names of required attributes.
func (s EdgeSpec) Required() []string { return names(s.Attrs, true) }

// Optional returns the names of optional attributes.
func (s EdgeSpec) Optional() []string { return names(s.Attrs, false) }

func names(specs []AttrSpec, required bool) []string {
	var out []string
	for _, a := range specs {
		if a.Required == required {
			out = append(out, a.Name)
		}
	}
	return out
}

// =============================================================================
// Resolution
// =============================================================================

// ResolveNode builds the node payload named by discriminator from the
// attributes in b. Attributes the kind does not declare are rejected.
func ResolveNode(discriminator string, b *attr.Bag) (NodeType, error) {
	spec, ok := nodeSpecs[NodeKind(discriminator)]
	if !ok {
		return nil, &errors.UnknownKindError{Element: "node", Discriminator: discriminator, ElementID: b.ElementID()}
	}
	b.SetKind(discriminator)
	if err := checkDeclared(b, discriminator, spec.Attrs); err != nil {
		return nil, err
	}
	r := &reader{b: b}
	t := spec.build(r)
	if r.err != nil {
		return nil, r.err
	}
	return t, nil
}

// ResolveEdge builds the edge payload named by discriminator from the
// attributes in b. Attributes the kind does not declare are rejected.
func ResolveEdge(discriminator string, b *attr.Bag) (EdgeType, error) {
	spec, ok := edgeSpecs[EdgeKind(discriminator)]
	if !ok {
		return nil, &errors.UnknownKindError{Element: "edge", Discriminator: discriminator, ElementID: b.ElementID()}
	}
	b.SetKind(discriminator)
	if err := checkDeclared(b, discriminator, spec.Attrs); err != nil {
		return nil, err
	}
	r := &reader{b: b}
	t := spec.build(r)
	if r.err != nil {
		return nil, r.err
	}
	return t, nil
}

func checkDeclared(b *attr.Bag, kind string, specs []AttrSpec) error {
	for _, name := range b.Unused() {
		if !slices.ContainsFunc(specs, func(a AttrSpec) bool { return a.Name == name }) {
			return &errors.AttributeError{ElementID: b.ElementID(), Kind: kind, Key: name}
		}
	}
	return nil
}

// LookupNode returns the contract of a node kind.
func LookupNode(k NodeKind) (NodeSpec, bool) {
	s, ok := nodeSpecs[k]
	return s, ok
}

// LookupEdge returns the contract of an edge kind.
func LookupEdge(k EdgeKind) (EdgeSpec, bool) {
	s, ok := edgeSpecs[k]
	return s, ok
}

// NodeAccepts reports whether nodes of kind k declare attribute name.
func NodeAccepts(k NodeKind, name string) bool {
	s, ok := nodeSpecs[k]
	return ok && slices.ContainsFunc(s.Attrs, func(a AttrSpec) bool { return a.Name == name })
}

// EdgeAccepts reports whether edges of kind k declare attribute name.
func EdgeAccepts(k EdgeKind, name string) bool {
	s, ok := edgeSpecs[k]
	return ok && slices.ContainsFunc(s.Attrs, func(a AttrSpec) bool { return a.Name == name })
}

// NodeKinds returns every registered node kind, sorted.
func NodeKinds() []NodeKind { return slices.Sorted(maps.Keys(nodeSpecs)) }

// EdgeKinds returns every registered edge kind, sorted.
func EdgeKinds() []EdgeKind { return slices.Sorted(maps.Keys(edgeSpecs)) }

// reader wraps a Bag and keeps the first error, so constructors read like
// struct literals.
type reader struct {
	b   *attr.Bag
	err error
}

func (r *reader) str(name string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.b.String(name)
	r.err = err
	return v
}

func (r *reader) optStr(name string) attr.Optional[string] {
	if r.err != nil {
		return attr.None[string]()
	}
	v, err := r.b.OptString(name)
	r.err = err
	return v
}

func (r *reader) boolean(name string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.b.Bool(name)
	r.err = err
	return v
}

func (r *reader) uint(name string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.b.Uint(name)
	r.err = err
	return v
}

func (r *reader) optUint(name string) attr.Optional[uint64] {
	if r.err != nil {
		return attr.None[uint64]()
	}
	v, err := r.b.OptUint(name)
	r.err = err
	return v
}

func (r *reader) enum(name string, e attr.Enum) string {
	if r.err != nil {
		return ""
	}
	v, err := r.b.Enum(name, e)
	r.err = err
	return v
}

func (r *reader) frameID(name string) id.FrameID {
	raw := r.str(name)
	if r.err != nil {
		return id.FrameID{}
	}
	f, err := id.ParseFrameID(raw)
	if err != nil {
		r.err = &errors.DecodeError{ElementID: r.b.ElementID(), Key: name, Expected: "frame id", Raw: raw, Cause: err}
	}
	return f
}

// =============================================================================
// Node contracts
// =============================================================================

var nodeSpecs = indexNodes(
	NodeSpec{Kind: NodeExtensions, build: func(*reader) NodeType { return Extensions{} }},
	NodeSpec{
		Kind:  NodeRemoteFrame,
		Attrs: []AttrSpec{req(AttrFrameID, attr.TypeString)},
		build: func(r *reader) NodeType { return RemoteFrame{FrameID: r.frameID(AttrFrameID)} },
	},
	NodeSpec{
		Kind:  NodeResource,
		Attrs: []AttrSpec{req(AttrURL, attr.TypeString), opt(AttrResourceType, attr.TypeString)},
		build: func(r *reader) NodeType {
			return Resource{URL: r.str(AttrURL), ResourceType: r.optStr(AttrResourceType)}
		},
	},
	NodeSpec{
		Kind:  NodeAdFilter,
		Attrs: []AttrSpec{req(AttrRule, attr.TypeString)},
		build: func(r *reader) NodeType { return AdFilter{Rule: r.str(AttrRule)} },
	},
	NodeSpec{Kind: NodeTrackerFilter, build: func(*reader) NodeType { return TrackerFilter{} }},
	NodeSpec{Kind: NodeFingerprintingFilter, build: func(*reader) NodeType { return FingerprintingFilter{} }},
	NodeSpec{
		Kind:  NodeWebAPI,
		Attrs: []AttrSpec{req(AttrMethod, attr.TypeString)},
		build: func(r *reader) NodeType { return WebAPI{Method: r.str(AttrMethod)} },
	},
	NodeSpec{
		Kind:  NodeJSBuiltin,
		Attrs: []AttrSpec{req(AttrMethod, attr.TypeString)},
		build: func(r *reader) NodeType { return JSBuiltin{Method: r.str(AttrMethod)} },
	},
	NodeSpec{
		Kind:  NodeHTMLElement,
		Attrs: domAttrs(req(AttrTagName, attr.TypeString)),
		build: func(r *reader) NodeType {
			return HTMLElement{TagName: r.str(AttrTagName), IsDeleted: r.boolean(AttrIsDeleted), NodeID: r.uint(AttrNodeID)}
		},
	},
	NodeSpec{
		Kind:  NodeTextNode,
		Attrs: domAttrs(opt(AttrText, attr.TypeString)),
		build: func(r *reader) NodeType {
			return TextNode{Text: r.optStr(AttrText), IsDeleted: r.boolean(AttrIsDeleted), NodeID: r.uint(AttrNodeID)}
		},
	},
	NodeSpec{
		Kind:  NodeDOMRoot,
		Attrs: domAttrs(opt(AttrURL, attr.TypeString), req(AttrTagName, attr.TypeString)),
		build: func(r *reader) NodeType {
			return DOMRoot{
				URL:       r.optStr(AttrURL),
				TagName:   r.str(AttrTagName),
				IsDeleted: r.boolean(AttrIsDeleted),
				NodeID:    r.uint(AttrNodeID),
			}
		},
	},
	NodeSpec{
		Kind:  NodeFrameOwner,
		Attrs: domAttrs(req(AttrTagName, attr.TypeString)),
		build: func(r *reader) NodeType {
			return FrameOwner{TagName: r.str(AttrTagName), IsDeleted: r.boolean(AttrIsDeleted), NodeID: r.uint(AttrNodeID)}
		},
	},
	NodeSpec{Kind: NodeStorage, build: func(*reader) NodeType { return Storage{} }},
	NodeSpec{Kind: NodeLocalStorage, build: func(*reader) NodeType { return LocalStorage{} }},
	NodeSpec{Kind: NodeSessionStorage, build: func(*reader) NodeType { return SessionStorage{} }},
	NodeSpec{Kind: NodeCookieJar, build: func(*reader) NodeType { return CookieJar{} }},
	NodeSpec{
		Kind: NodeScript,
		Attrs: []AttrSpec{
			opt(AttrURL, attr.TypeString),
			req(AttrScriptType, attr.TypeString),
			req(AttrScriptID, attr.TypeUint),
			opt(AttrSource, attr.TypeString),
		},
		build: func(r *reader) NodeType {
			return Script{
				URL:        r.optStr(AttrURL),
				ScriptType: r.str(AttrScriptType),
				ScriptID:   r.uint(AttrScriptID),
				Source:     r.optStr(AttrSource),
			}
		},
	},
	NodeSpec{Kind: NodeParser, build: func(*reader) NodeType { return Parser{} }},
	NodeSpec{Kind: NodeBraveShields, build: func(*reader) NodeType { return BraveShields{} }},
	NodeSpec{Kind: NodeAdsShield, build: func(*reader) NodeType { return AdsShield{} }},
	NodeSpec{Kind: NodeTrackersShield, build: func(*reader) NodeType { return TrackersShield{} }},
	NodeSpec{Kind: NodeJavaScriptShield, build: func(*reader) NodeType { return JavaScriptShield{} }},
	NodeSpec{Kind: NodeFingerprintingShield, build: func(*reader) NodeType { return FingerprintingShield{} }},
	NodeSpec{Kind: NodeFingerprintingV2Shield, build: func(*reader) NodeType { return FingerprintingV2Shield{} }},
	NodeSpec{
		Kind:  NodeBinding,
		Attrs: []AttrSpec{req(AttrBinding, attr.TypeString), req(AttrBindingType, attr.TypeString)},
		build: func(r *reader) NodeType {
			return Binding{Binding: r.str(AttrBinding), BindingType: r.str(AttrBindingType)}
		},
	},
	NodeSpec{
		Kind:  NodeBindingEvent,
		Attrs: []AttrSpec{req(AttrBindingEvent, attr.TypeString)},
		build: func(r *reader) NodeType { return BindingEvent{BindingEvent: r.str(AttrBindingEvent)} },
	},
)

// domAttrs appends the attributes every DOM node carries.
func domAttrs(extra ...AttrSpec) []AttrSpec {
	return append(extra, req(AttrIsDeleted, attr.TypeBool), req(AttrNodeID, attr.TypeUint))
}

// =============================================================================
// Edge contracts
// =============================================================================

var edgeSpecs = indexEdges(
	EdgeSpec{Kind: EdgeFilter, build: func(*reader) EdgeType { return Filter{} }},
	EdgeSpec{Kind: EdgeStructure, build: func(*reader) EdgeType { return Structure{} }},
	EdgeSpec{Kind: EdgeCrossDOM, build: func(*reader) EdgeType { return CrossDOM{} }},
	EdgeSpec{Kind: EdgeResourceBlock, build: func(*reader) EdgeType { return ResourceBlock{} }},
	EdgeSpec{Kind: EdgeShield, build: func(*reader) EdgeType { return Shield{} }},
	EdgeSpec{Kind: EdgeTextChange, build: func(*reader) EdgeType { return TextChange{} }},
	EdgeSpec{Kind: EdgeRemoveNode, build: func(*reader) EdgeType { return RemoveNode{} }},
	EdgeSpec{Kind: EdgeDeleteNode, build: func(*reader) EdgeType { return DeleteNode{} }},
	EdgeSpec{
		Kind:  EdgeInsertNode,
		Attrs: []AttrSpec{req(AttrParent, attr.TypeUint), opt(AttrBefore, attr.TypeUint)},
		build: func(r *reader) EdgeType {
			return InsertNode{Parent: r.uint(AttrParent), Before: r.optUint(AttrBefore)}
		},
	},
	EdgeSpec{Kind: EdgeCreateNode, build: func(*reader) EdgeType { return CreateNode{} }},
	EdgeSpec{
		Kind:  EdgeJSResult,
		Attrs: []AttrSpec{opt(AttrValue, attr.TypeString)},
		build: func(r *reader) EdgeType { return JSResult{Value: r.optStr(AttrValue)} },
	},
	EdgeSpec{
		Kind:  EdgeJSCall,
		Attrs: []AttrSpec{opt(AttrArgs, attr.TypeString), req(AttrScriptPosition, attr.TypeUint)},
		build: func(r *reader) EdgeType {
			return JSCall{Args: r.optStr(AttrArgs), ScriptPosition: r.uint(AttrScriptPosition)}
		},
	},
	EdgeSpec{
		Kind: EdgeRequestComplete,
		Attrs: []AttrSpec{
			req(AttrResourceType, attr.TypeString),
			req(AttrStatus, attr.TypeString),
			opt(AttrValue, attr.TypeString),
			opt(AttrResponseHash, attr.TypeString),
			req(AttrRequestID, attr.TypeUint),
			req(AttrHeaders, attr.TypeString),
			req(AttrSize, attr.TypeString),
		},
		build: func(r *reader) EdgeType {
			return RequestComplete{
				ResourceType: r.str(AttrResourceType),
				Status:       r.str(AttrStatus),
				Value:        r.optStr(AttrValue),
				ResponseHash: r.optStr(AttrResponseHash),
				RequestID:    r.uint(AttrRequestID),
				Headers:      r.str(AttrHeaders),
				Size:         r.str(AttrSize),
			}
		},
	},
	EdgeSpec{
		Kind: EdgeRequestError,
		Attrs: []AttrSpec{
			req(AttrStatus, attr.TypeString),
			req(AttrRequestID, attr.TypeUint),
			opt(AttrValue, attr.TypeString),
			req(AttrHeaders, attr.TypeString),
			req(AttrSize, attr.TypeString),
		},
		build: func(r *reader) EdgeType {
			return RequestError{
				Status:    r.str(AttrStatus),
				RequestID: r.uint(AttrRequestID),
				Value:     r.optStr(AttrValue),
				Headers:   r.str(AttrHeaders),
				Size:      r.str(AttrSize),
			}
		},
	},
	EdgeSpec{
		Kind: EdgeRequestStart,
		Attrs: []AttrSpec{
			enum(AttrRequestType, RequestTypes),
			req(AttrStatus, attr.TypeString),
			req(AttrRequestID, attr.TypeUint),
		},
		build: func(r *reader) EdgeType {
			return RequestStart{
				RequestType: RequestType(r.enum(AttrRequestType, RequestTypes)),
				Status:      r.str(AttrStatus),
				RequestID:   r.uint(AttrRequestID),
			}
		},
	},
	EdgeSpec{Kind: EdgeRequestResponse, build: func(*reader) EdgeType { return RequestResponse{} }},
	EdgeSpec{
		Kind:  EdgeAddEventListener,
		Attrs: listenerAttrs(req(AttrScriptID, attr.TypeUint)),
		build: func(r *reader) EdgeType {
			return AddEventListener{Key: r.str(AttrKey), EventListenerID: r.uint(AttrEventListenerID), ScriptID: r.uint(AttrScriptID)}
		},
	},
	EdgeSpec{
		Kind:  EdgeRemoveEventListener,
		Attrs: listenerAttrs(req(AttrScriptID, attr.TypeUint)),
		build: func(r *reader) EdgeType {
			return RemoveEventListener{Key: r.str(AttrKey), EventListenerID: r.uint(AttrEventListenerID), ScriptID: r.uint(AttrScriptID)}
		},
	},
	EdgeSpec{
		Kind:  EdgeEventListener,
		Attrs: listenerAttrs(),
		build: func(r *reader) EdgeType {
			return EventListener{Key: r.str(AttrKey), EventListenerID: r.uint(AttrEventListenerID)}
		},
	},
	EdgeSpec{
		Kind:  EdgeStorageSet,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString), opt(AttrValue, attr.TypeString)},
		build: func(r *reader) EdgeType { return StorageSet{Key: r.str(AttrKey), Value: r.optStr(AttrValue)} },
	},
	EdgeSpec{
		Kind:  EdgeStorageReadResult,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString), opt(AttrValue, attr.TypeString)},
		build: func(r *reader) EdgeType {
			return StorageReadResult{Key: r.str(AttrKey), Value: r.optStr(AttrValue)}
		},
	},
	EdgeSpec{
		Kind:  EdgeDeleteStorage,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString)},
		build: func(r *reader) EdgeType { return DeleteStorage{Key: r.str(AttrKey)} },
	},
	EdgeSpec{
		Kind:  EdgeReadStorageCall,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString)},
		build: func(r *reader) EdgeType { return ReadStorageCall{Key: r.str(AttrKey)} },
	},
	EdgeSpec{
		Kind:  EdgeClearStorage,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString)},
		build: func(r *reader) EdgeType { return ClearStorage{Key: r.str(AttrKey)} },
	},
	EdgeSpec{Kind: EdgeStorageBucket, build: func(*reader) EdgeType { return StorageBucket{} }},
	EdgeSpec{
		Kind:  EdgeExecuteFromAttribute,
		Attrs: []AttrSpec{req(AttrAttrName, attr.TypeString)},
		build: func(r *reader) EdgeType { return ExecuteFromAttribute{AttrName: r.str(AttrAttrName)} },
	},
	EdgeSpec{Kind: EdgeExecute, build: func(*reader) EdgeType { return Execute{} }},
	EdgeSpec{
		Kind: EdgeSetAttribute,
		Attrs: []AttrSpec{
			req(AttrKey, attr.TypeString),
			opt(AttrValue, attr.TypeString),
			req(AttrIsStyle, attr.TypeBool),
		},
		build: func(r *reader) EdgeType {
			return SetAttribute{Key: r.str(AttrKey), Value: r.optStr(AttrValue), IsStyle: r.boolean(AttrIsStyle)}
		},
	},
	EdgeSpec{
		Kind:  EdgeDeleteAttribute,
		Attrs: []AttrSpec{req(AttrKey, attr.TypeString), req(AttrIsStyle, attr.TypeBool)},
		build: func(r *reader) EdgeType {
			return DeleteAttribute{Key: r.str(AttrKey), IsStyle: r.boolean(AttrIsStyle)}
		},
	},
	EdgeSpec{Kind: EdgeBinding, build: func(*reader) EdgeType { return BindingEdge{} }},
	EdgeSpec{
		Kind:  EdgeBindingEvent,
		Attrs: []AttrSpec{req(AttrScriptPosition, attr.TypeUint)},
		build: func(r *reader) EdgeType { return BindingEventEdge{ScriptPosition: r.uint(AttrScriptPosition)} },
	},
)

// listenerAttrs prepends the attributes every listener edge carries.
func listenerAttrs(extra ...AttrSpec) []AttrSpec {
	return append([]AttrSpec{req(AttrKey, attr.TypeString), req(AttrEventListenerID, attr.TypeUint)}, extra...)
}

func indexNodes(specs ...NodeSpec) map[NodeKind]NodeSpec {
	m := make(map[NodeKind]NodeSpec, len(specs))
	for _, s := range specs {
		if _, dup := m[s.Kind]; dup {
			panic("kind: node kind registered twice: " + string(s.Kind))
		}
		m[s.Kind] = s
	}
	return m
}

func indexEdges(specs ...EdgeSpec) map[EdgeKind]EdgeSpec {
	m := make(map[EdgeKind]EdgeSpec, len(specs))
	for _, s := range specs {
		if _, dup := m[s.Kind]; dup {
			panic("kind: edge kind registered twice: " + string(s.Kind))
		}
		m[s.Kind] = s
	}
	return m
}
