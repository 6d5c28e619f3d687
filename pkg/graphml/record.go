package graphml

// ElementKind tells node records from edge records.
type ElementKind uint8

const (
	ElementNode ElementKind = iota + 1
	ElementEdge
)

// String returns "node" or "edge".
func (k ElementKind) String() string {
	switch k {
	case ElementNode:
		return "node"
	case ElementEdge:
		return "edge"
	}
	return "invalid"
}

// Domain returns the key domain that applies to records of this kind.
func (k ElementKind) Domain() Domain {
	if k == ElementEdge {
		return DomainEdge
	}
	return DomainNode
}

// Datum is one <data> child: a key reference and its text, untouched.
type Datum struct {
	Key   string
	Value string
}

// Record is a raw node or edge element in file order.
// Source and Target are empty for nodes.
type Record struct {
	Kind   ElementKind
	ID     string
	Source string
	Target string
	Data   []Datum
	Line   int // line of the opening tag, 1-based
}

// Descriptor is the raw <desc> block of a PageGraph document. All fields
// are the literal element text; empty when absent.
type Descriptor struct {
	Version   string
	About     string
	URL       string
	IsRoot    string
	FrameID   string
	TimeStart string
	TimeEnd   string
}
