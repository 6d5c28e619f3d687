package kind

import "github.com/matzehuels/pagegraph/pkg/attr"

// EdgeKind is the discriminator of an edge, as written in the "edge type"
// attribute.
type EdgeKind string

// Edge kinds.
const (
	EdgeFilter               EdgeKind = "filter"
	EdgeStructure            EdgeKind = "structure"
	EdgeCrossDOM             EdgeKind = "cross DOM"
	EdgeResourceBlock        EdgeKind = "resource block"
	EdgeShield               EdgeKind = "shield"
	EdgeTextChange           EdgeKind = "text change"
	EdgeRemoveNode           EdgeKind = "remove node"
	EdgeDeleteNode           EdgeKind = "delete node"
	EdgeInsertNode           EdgeKind = "insert node"
	EdgeCreateNode           EdgeKind = "create node"
	EdgeJSResult             EdgeKind = "js result"
	EdgeJSCall               EdgeKind = "js call"
	EdgeRequestComplete      EdgeKind = "request complete"
	EdgeRequestError         EdgeKind = "request error"
	EdgeRequestStart         EdgeKind = "request start"
	EdgeRequestResponse      EdgeKind = "request response"
	EdgeAddEventListener     EdgeKind = "add event listener"
	EdgeRemoveEventListener  EdgeKind = "remove event listener"
	EdgeEventListener        EdgeKind = "event listener"
	EdgeStorageSet           EdgeKind = "storage set"
	EdgeStorageReadResult    EdgeKind = "storage read result"
	EdgeDeleteStorage        EdgeKind = "delete storage"
	EdgeReadStorageCall      EdgeKind = "read storage call"
	EdgeClearStorage         EdgeKind = "clear storage"
	EdgeStorageBucket        EdgeKind = "storage bucket"
	EdgeExecuteFromAttribute EdgeKind = "execute from attribute"
	EdgeExecute              EdgeKind = "execute"
	EdgeSetAttribute         EdgeKind = "set attribute"
	EdgeDeleteAttribute      EdgeKind = "delete attribute"
	EdgeBinding              EdgeKind = "binding"
	EdgeBindingEvent         EdgeKind = "binding event"
)

// EdgeType is the kind-specific payload of an edge. Like [NodeType] the set
// of implementations is closed.
type EdgeType interface {
	Kind() EdgeKind
	isEdgeType()
}

// RequestType classifies the resource a request start fetches.
type RequestType string

// Request types as recorded.
const (
	RequestImage   RequestType = "Image"
	RequestScript  RequestType = "Script"
	RequestCSS     RequestType = "CSS"
	RequestAJAX    RequestType = "AJAX"
	RequestUnknown RequestType = "Unknown"
)

// RequestTypes is the closed set of recorded request types.
var RequestTypes = attr.NewEnum("request type",
	string(RequestImage), string(RequestScript), string(RequestCSS), string(RequestAJAX), string(RequestUnknown))

// Label returns the request type in the vocabulary of content blockers
// ("image", "script", "stylesheet", "xhr", "unknown").
func (r RequestType) Label() string {
	switch r {
	case RequestImage:
		return "image"
	case RequestScript:
		return "script"
	case RequestCSS:
		return "stylesheet"
	case RequestAJAX:
		return "xhr"
	}
	return "unknown"
}

// Filter links a filter list to a shield.
type Filter struct{}

// Structure links a node to its structural child.
type Structure struct{}

// CrossDOM links a frame owner or remote frame to the frame's document.
type CrossDOM struct{}

// ResourceBlock links a shield to a resource it blocked.
type ResourceBlock struct{}

// Shield links the shields root to an individual shield.
type Shield struct{}

// TextChange records a script changing a text node.
type TextChange struct{}

// RemoveNode records a node being detached from the document.
type RemoveNode struct{}

// DeleteNode records a node being destroyed.
type DeleteNode struct{}

// InsertNode records a node being attached under Parent (a DOM node id),
// before the sibling Before when given.
type InsertNode struct {
	Parent uint64                `attr:"parent" json:"parent"`
	Before attr.Optional[uint64] `attr:"before" json:"before"`
}

// CreateNode records a node being created.
type CreateNode struct{}

// JSResult records a value returned from a builtin or web API.
type JSResult struct {
	Value attr.Optional[string] `attr:"value" json:"value"`
}

// JSCall records a script calling a builtin or web API.
type JSCall struct {
	Args           attr.Optional[string] `attr:"args" json:"args"`
	ScriptPosition uint64                `attr:"script position" json:"script_position"`
}

// RequestComplete records a successful response.
type RequestComplete struct {
	ResourceType string                `attr:"resource type" json:"resource_type"`
	Status       string                `attr:"status" json:"status"`
	Value        attr.Optional[string] `attr:"value" json:"value"`
	ResponseHash attr.Optional[string] `attr:"response hash" json:"response_hash"`
	RequestID    uint64                `attr:"request id" json:"request_id"`
	Headers      string                `attr:"headers" json:"headers"`
	Size         string                `attr:"size" json:"size"`
}

// RequestError records a failed request.
type RequestError struct {
	Status    string                `attr:"status" json:"status"`
	RequestID uint64                `attr:"request id" json:"request_id"`
	Value     attr.Optional[string] `attr:"value" json:"value"`
	Headers   string                `attr:"headers" json:"headers"`
	Size      string                `attr:"size" json:"size"`
}

// RequestStart records a request being issued. RequestID pairs it with the
// RequestComplete or RequestError edge leaving the resource.
type RequestStart struct {
	RequestType RequestType `attr:"request type" json:"request_type"`
	Status      string      `attr:"status" json:"status"`
	RequestID   uint64      `attr:"request id" json:"request_id"`
}

// RequestResponse records a response delivered to the requester.
type RequestResponse struct{}

// AddEventListener records a script registering a listener.
type AddEventListener struct {
	Key             string `attr:"key" json:"key"`
	EventListenerID uint64 `attr:"event listener id" json:"event_listener_id"`
	ScriptID        uint64 `attr:"script id" json:"script_id"`
}

// RemoveEventListener records a script removing a listener.
type RemoveEventListener struct {
	Key             string `attr:"key" json:"key"`
	EventListenerID uint64 `attr:"event listener id" json:"event_listener_id"`
	ScriptID        uint64 `attr:"script id" json:"script_id"`
}

// EventListener links an element to a listener script.
type EventListener struct {
	Key             string `attr:"key" json:"key"`
	EventListenerID uint64 `attr:"event listener id" json:"event_listener_id"`
}

// StorageSet records a write to a storage area.
type StorageSet struct {
	Key   string                `attr:"key" json:"key"`
	Value attr.Optional[string] `attr:"value" json:"value"`
}

// StorageReadResult records the value returned by a storage read.
type StorageReadResult struct {
	Key   string                `attr:"key" json:"key"`
	Value attr.Optional[string] `attr:"value" json:"value"`
}

// DeleteStorage records a key removal from a storage area.
type DeleteStorage struct {
	Key string `attr:"key" json:"key"`
}

// ReadStorageCall records a storage read.
type ReadStorageCall struct {
	Key string `attr:"key" json:"key"`
}

// ClearStorage records a storage area being cleared.
type ClearStorage struct {
	Key string `attr:"key" json:"key"`
}

// StorageBucket links the storage root to a storage area.
type StorageBucket struct{}

// ExecuteFromAttribute records script run from an inline handler attribute.
type ExecuteFromAttribute struct {
	AttrName string `attr:"attr name" json:"attr_name"`
}

// Execute records a script being run.
type Execute struct{}

// SetAttribute records an attribute write on an element.
type SetAttribute struct {
	Key     string                `attr:"key" json:"key"`
	Value   attr.Optional[string] `attr:"value" json:"value"`
	IsStyle bool                  `attr:"is style" json:"is_style"`
}

// DeleteAttribute records an attribute removal on an element.
type DeleteAttribute struct {
	Key     string `attr:"key" json:"key"`
	IsStyle bool   `attr:"is style" json:"is_style"`
}

// BindingEdge records a script using a binding. It is the "binding" edge
// kind; the suffix keeps it apart from the [Binding] node.
type BindingEdge struct{}

// BindingEventEdge records a binding event raised at a script position.
type BindingEventEdge struct {
	ScriptPosition uint64 `attr:"script position" json:"script_position"`
}

func (Filter) Kind() EdgeKind               { return EdgeFilter }
func (Structure) Kind() EdgeKind            { return EdgeStructure }
func (CrossDOM) Kind() EdgeKind             { return EdgeCrossDOM }
func (ResourceBlock) Kind() EdgeKind        { return EdgeResourceBlock }
func (Shield) Kind() EdgeKind               { return EdgeShield }
func (TextChange) Kind() EdgeKind           { return EdgeTextChange }
func (RemoveNode) Kind() EdgeKind           { return EdgeRemoveNode }
func (DeleteNode) Kind() EdgeKind           { return EdgeDeleteNode }
func (InsertNode) Kind() EdgeKind           { return EdgeInsertNode }
func (CreateNode) Kind() EdgeKind           { return EdgeCreateNode }
func (JSResult) Kind() EdgeKind             { return EdgeJSResult }
func (JSCall) Kind() EdgeKind               { return EdgeJSCall }
func (RequestComplete) Kind() EdgeKind      { return EdgeRequestComplete }
func (RequestError) Kind() EdgeKind         { return EdgeRequestError }
func (RequestStart) Kind() EdgeKind         { return EdgeRequestStart }
func (RequestResponse) Kind() EdgeKind      { return EdgeRequestResponse }
func (AddEventListener) Kind() EdgeKind     { return EdgeAddEventListener }
func (RemoveEventListener) Kind() EdgeKind  { return EdgeRemoveEventListener }
func (EventListener) Kind() EdgeKind        { return EdgeEventListener }
func (StorageSet) Kind() EdgeKind           { return EdgeStorageSet }
func (StorageReadResult) Kind() EdgeKind    { return EdgeStorageReadResult }
func (DeleteStorage) Kind() EdgeKind        { return EdgeDeleteStorage }
func (ReadStorageCall) Kind() EdgeKind      { return EdgeReadStorageCall }
func (ClearStorage) Kind() EdgeKind         { return EdgeClearStorage }
func (StorageBucket) Kind() EdgeKind        { return EdgeStorageBucket }
func (ExecuteFromAttribute) Kind() EdgeKind { return EdgeExecuteFromAttribute }
func (Execute) Kind() EdgeKind              { return EdgeExecute }
func (SetAttribute) Kind() EdgeKind         { return EdgeSetAttribute }
func (DeleteAttribute) Kind() EdgeKind      { return EdgeDeleteAttribute }
func (BindingEdge) Kind() EdgeKind          { return EdgeBinding }
func (BindingEventEdge) Kind() EdgeKind     { return EdgeBindingEvent }

func (Filter) isEdgeType()               {}
func (Structure) isEdgeType()            {}
func (CrossDOM) isEdgeType()             {}
func (ResourceBlock) isEdgeType()        {}
func (Shield) isEdgeType()               {}
func (TextChange) isEdgeType()           {}
func (RemoveNode) isEdgeType()           {}
func (DeleteNode) isEdgeType()           {}
func (InsertNode) isEdgeType()           {}
func (CreateNode) isEdgeType()           {}
func (JSResult) isEdgeType()             {}
func (JSCall) isEdgeType()               {}
func (RequestComplete) isEdgeType()      {}
func (RequestError) isEdgeType()         {}
func (RequestStart) isEdgeType()         {}
func (RequestResponse) isEdgeType()      {}
func (AddEventListener) isEdgeType()     {}
func (RemoveEventListener) isEdgeType()  {}
func (EventListener) isEdgeType()        {}
func (StorageSet) isEdgeType()           {}
func (StorageReadResult) isEdgeType()    {}
func (DeleteStorage) isEdgeType()        {}
func (ReadStorageCall) isEdgeType()      {}
func (ClearStorage) isEdgeType()         {}
func (StorageBucket) isEdgeType()        {}
func (ExecuteFromAttribute) isEdgeType() {}
func (Execute) isEdgeType()              {}
func (SetAttribute) isEdgeType()         {}
func (DeleteAttribute) isEdgeType()      {}
func (BindingEdge) isEdgeType()          {}
func (BindingEventEdge) isEdgeType()     {}
