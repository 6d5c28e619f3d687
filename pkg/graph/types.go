package graph

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// NodeID is the recorded id of a node, e.g. "n12" or "n12:<frame>".
type NodeID string

// EdgeID is the recorded id of an edge, e.g. "e12" or "e12:<frame>".
type EdgeID string

// Node is one entity observed during the recording.
type Node struct {
	ID        NodeID
	Timestamp attr.Optional[int64]
	Sequence  attr.Optional[int64]
	Type      kind.NodeType
}

// Kind returns the node's discriminator.
func (n Node) Kind() kind.NodeKind { return n.Type.Kind() }

// Edge is a directed, typed relationship observed at a point in time.
// Sequence orders edges causally; it is not the file position.
type Edge struct {
	ID        EdgeID
	Source    NodeID
	Target    NodeID
	Timestamp attr.Optional[int64]
	Sequence  int64
	Type      kind.EdgeType
}

// Kind returns the edge's discriminator.
func (e Edge) Kind() kind.EdgeKind { return e.Type.Kind() }

// Descriptor describes the recording a graph came from.
type Descriptor struct {
	Version string
	About   string
	URL     string
	IsRoot  bool
	FrameID id.FrameID
	Start   time.Time
	End     time.Time
}

// Direction selects which adjacency of a node to walk.
type Direction uint8

const (
	Outgoing Direction = 1 << iota
	Incoming
	Both = Outgoing | Incoming
)

// ParseDirection accepts "out", "in" and "both" (and the long forms).
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "out", "outgoing":
		return Outgoing, true
	case "in", "incoming":
		return Incoming, true
	case "both":
		return Both, true
	}
	return 0, false
}

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	}
	return "invalid"
}

// =============================================================================
// JSON
// =============================================================================

type nodeJSON struct {
	ID         NodeID               `json:"id"`
	Kind       kind.NodeKind        `json:"kind"`
	Timestamp  attr.Optional[int64] `json:"timestamp"`
	Sequence   attr.Optional[int64] `json:"sequence"`
	Attributes kind.NodeType        `json:"attributes"`
}

// MarshalJSON writes the node with its kind and kind-specific attributes.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{ID: n.ID, Kind: n.Kind(), Timestamp: n.Timestamp, Sequence: n.Sequence, Attributes: n.Type})
}

type edgeJSON struct {
	ID         EdgeID               `json:"id"`
	Kind       kind.EdgeKind        `json:"kind"`
	Source     NodeID               `json:"source"`
	Target     NodeID               `json:"target"`
	Timestamp  attr.Optional[int64] `json:"timestamp"`
	Sequence   int64                `json:"sequence"`
	Attributes kind.EdgeType        `json:"attributes"`
}

// MarshalJSON writes the edge with its kind and kind-specific attributes.
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(edgeJSON{
		ID:         e.ID,
		Kind:       e.Kind(),
		Source:     e.Source,
		Target:     e.Target,
		Timestamp:  e.Timestamp,
		Sequence:   e.Sequence,
		Attributes: e.Type,
	})
}

type descriptorJSON struct {
	Version string     `json:"version,omitempty"`
	About   string     `json:"about,omitempty"`
	URL     string     `json:"url,omitempty"`
	IsRoot  bool       `json:"is_root"`
	FrameID id.FrameID `json:"frame_id"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// MarshalJSON omits unset times.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := descriptorJSON{Version: d.Version, About: d.About, URL: d.URL, IsRoot: d.IsRoot, FrameID: d.FrameID}
	if !d.Start.IsZero() {
		out.Start = &d.Start
	}
	if !d.End.IsZero() {
		out.End = &d.End
	}
	return json.Marshal(out)
}
