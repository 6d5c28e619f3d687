package kind

import (
	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/id"
)

// NodeKind is the discriminator of a node, as written in the "node type"
// attribute.
type NodeKind string

// Node kinds.
const (
	NodeExtensions             NodeKind = "extensions"
	NodeRemoteFrame            NodeKind = "remote frame"
	NodeResource               NodeKind = "resource"
	NodeAdFilter               NodeKind = "ad filter"
	NodeTrackerFilter          NodeKind = "tracker filter"
	NodeFingerprintingFilter   NodeKind = "fingerprinting filter"
	NodeWebAPI                 NodeKind = "web API"
	NodeJSBuiltin              NodeKind = "JS builtin"
	NodeHTMLElement            NodeKind = "HTML element"
	NodeTextNode               NodeKind = "text node"
	NodeDOMRoot                NodeKind = "DOM root"
	NodeFrameOwner             NodeKind = "frame owner"
	NodeStorage                NodeKind = "storage"
	NodeLocalStorage           NodeKind = "local storage"
	NodeSessionStorage         NodeKind = "session storage"
	NodeCookieJar              NodeKind = "cookie jar"
	NodeScript                 NodeKind = "script"
	NodeParser                 NodeKind = "parser"
	NodeBraveShields           NodeKind = "Brave Shields"
	NodeAdsShield              NodeKind = "shieldsAds shield"
	NodeTrackersShield         NodeKind = "trackers shield"
	NodeJavaScriptShield       NodeKind = "javascript shield"
	NodeFingerprintingShield   NodeKind = "fingerprinting shield"
	NodeFingerprintingV2Shield NodeKind = "fingerprintingV2 shield"
	NodeBinding                NodeKind = "binding"
	NodeBindingEvent           NodeKind = "binding event"
)

// NodeType is the kind-specific payload of a node. The implementations in
// this package are the complete set; callers discriminate with a type
// switch:
//
//	switch t := n.Type.(type) {
//	case kind.HTMLElement:
//	    fmt.Println(t.TagName, t.IsDeleted)
//	case kind.Script:
//	    fmt.Println(t.ScriptType)
//	}
type NodeType interface {
	Kind() NodeKind
	isNodeType()
}

// Extensions is the root of browser extension activity.
type Extensions struct{}

// RemoteFrame is an out-of-process frame recorded in its own graph.
type RemoteFrame struct {
	FrameID id.FrameID `attr:"frame id" json:"frame_id"`
}

// Resource is a network resource identified by URL.
type Resource struct {
	URL          string                `attr:"url" json:"url"`
	ResourceType attr.Optional[string] `attr:"resource type" json:"resource_type"`
}

// AdFilter is an ad-blocking filter rule.
type AdFilter struct {
	Rule string `attr:"rule" json:"rule"`
}

// TrackerFilter is the tracker-blocking filter list.
type TrackerFilter struct{}

// FingerprintingFilter is the fingerprinting-blocking filter list.
type FingerprintingFilter struct{}

// WebAPI is a browser API callable from script.
type WebAPI struct {
	Method string `attr:"method" json:"method"`
}

// JSBuiltin is a JavaScript builtin function.
type JSBuiltin struct {
	Method string `attr:"method" json:"method"`
}

// HTMLElement is a DOM element. NodeID is the renderer's DOM node id, which
// insert-node edges refer to.
type HTMLElement struct {
	TagName   string `attr:"tag name" json:"tag_name"`
	IsDeleted bool   `attr:"is deleted" json:"is_deleted"`
	NodeID    uint64 `attr:"node id" json:"node_id"`
}

// TextNode is a DOM text node.
type TextNode struct {
	Text      attr.Optional[string] `attr:"text" json:"text"`
	IsDeleted bool                  `attr:"is deleted" json:"is_deleted"`
	NodeID    uint64                `attr:"node id" json:"node_id"`
}

// DOMRoot is the document element of a frame.
type DOMRoot struct {
	URL       attr.Optional[string] `attr:"url" json:"url"`
	TagName   string                `attr:"tag name" json:"tag_name"`
	IsDeleted bool                  `attr:"is deleted" json:"is_deleted"`
	NodeID    uint64                `attr:"node id" json:"node_id"`
}

// FrameOwner is an element hosting a frame (iframe, frame, object...).
type FrameOwner struct {
	TagName   string `attr:"tag name" json:"tag_name"`
	IsDeleted bool   `attr:"is deleted" json:"is_deleted"`
	NodeID    uint64 `attr:"node id" json:"node_id"`
}

// Storage is the root of all storage areas.
type Storage struct{}

// LocalStorage is the localStorage area.
type LocalStorage struct{}

// SessionStorage is the sessionStorage area.
type SessionStorage struct{}

// CookieJar is the document's cookie store.
type CookieJar struct{}

// Script is a compiled script. Source is absent when the recording did not
// keep it.
type Script struct {
	URL        attr.Optional[string] `attr:"url" json:"url"`
	ScriptType string                `attr:"script type" json:"script_type"`
	ScriptID   uint64                `attr:"script id" json:"script_id"`
	Source     attr.Optional[string] `attr:"source" json:"source"`
}

// Parser is the HTML parser of a frame.
type Parser struct{}

// BraveShields is the root of all shield nodes.
type BraveShields struct{}

// AdsShield is the ad-blocking shield.
type AdsShield struct{}

// TrackersShield is the tracker-blocking shield.
type TrackersShield struct{}

// JavaScriptShield is the script-blocking shield.
type JavaScriptShield struct{}

// FingerprintingShield is the fingerprinting shield.
type FingerprintingShield struct{}

// FingerprintingV2Shield is the second-generation fingerprinting shield.
type FingerprintingV2Shield struct{}

// Binding is a Blink binding exposed to script.
type Binding struct {
	Binding     string `attr:"binding" json:"binding"`
	BindingType string `attr:"binding type" json:"binding_type"`
}

// BindingEvent is an event raised through a binding.
type BindingEvent struct {
	BindingEvent string `attr:"binding event" json:"binding_event"`
}

func (Extensions) Kind() NodeKind             { return NodeExtensions }
func (RemoteFrame) Kind() NodeKind            { return NodeRemoteFrame }
func (Resource) Kind() NodeKind               { return NodeResource }
func (AdFilter) Kind() NodeKind               { return NodeAdFilter }
func (TrackerFilter) Kind() NodeKind          { return NodeTrackerFilter }
func (FingerprintingFilter) Kind() NodeKind   { return NodeFingerprintingFilter }
func (WebAPI) Kind() NodeKind                 { return NodeWebAPI }
func (JSBuiltin) Kind() NodeKind              { return NodeJSBuiltin }
func (HTMLElement) Kind() NodeKind            { return NodeHTMLElement }
func (TextNode) Kind() NodeKind               { return NodeTextNode }
func (DOMRoot) Kind() NodeKind                { return NodeDOMRoot }
func (FrameOwner) Kind() NodeKind             { return NodeFrameOwner }
func (Storage) Kind() NodeKind                { return NodeStorage }
func (LocalStorage) Kind() NodeKind           { return NodeLocalStorage }
func (SessionStorage) Kind() NodeKind         { return NodeSessionStorage }
func (CookieJar) Kind() NodeKind              { return NodeCookieJar }
func (Script) Kind() NodeKind                 { return NodeScript }
func (Parser) Kind() NodeKind                 { return NodeParser }
func (BraveShields) Kind() NodeKind           { return NodeBraveShields }
func (AdsShield) Kind() NodeKind              { return NodeAdsShield }
func (TrackersShield) Kind() NodeKind         { return NodeTrackersShield }
func (JavaScriptShield) Kind() NodeKind       { return NodeJavaScriptShield }
func (FingerprintingShield) Kind() NodeKind   { return NodeFingerprintingShield }
func (FingerprintingV2Shield) Kind() NodeKind { return NodeFingerprintingV2Shield }
func (Binding) Kind() NodeKind                { return NodeBinding }
func (BindingEvent) Kind() NodeKind           { return NodeBindingEvent }

func (Extensions) isNodeType()             {}
func (RemoteFrame) isNodeType()            {}
func (Resource) isNodeType()               {}
func (AdFilter) isNodeType()               {}
func (TrackerFilter) isNodeType()          {}
func (FingerprintingFilter) isNodeType()   {}
func (WebAPI) isNodeType()                 {}
func (JSBuiltin) isNodeType()              {}
func (HTMLElement) isNodeType()            {}
func (TextNode) isNodeType()               {}
func (DOMRoot) isNodeType()                {}
func (FrameOwner) isNodeType()             {}
func (Storage) isNodeType()                {}
func (LocalStorage) isNodeType()           {}
func (SessionStorage) isNodeType()         {}
func (CookieJar) isNodeType()              {}
func (Script) isNodeType()                 {}
func (Parser) isNodeType()                 {}
func (BraveShields) isNodeType()           {}
func (AdsShield) isNodeType()              {}
func (TrackersShield) isNodeType()         {}
func (JavaScriptShield) isNodeType()       {}
func (FingerprintingShield) isNodeType()   {}
func (FingerprintingV2Shield) isNodeType() {}
func (Binding) isNodeType()                {}
func (BindingEvent) isNodeType()           {}
