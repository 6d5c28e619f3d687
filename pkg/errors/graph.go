package errors

import "fmt"

// MalformedDocumentError reports input that is not well-formed XML or that
// violates the GraphML key and attribute-reference contract.
//
// Offset is the byte offset into the input where the problem was detected.
// Line and Column are 1-based and zero when not derivable.
type MalformedDocumentError struct {
	Offset int64
	Line   int
	Column int
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *MalformedDocumentError) Error() string {
	msg := "malformed document"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d, column %d", msg, e.Line, e.Column)
	} else if e.Offset > 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	msg += ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying XML error, if any.
func (e *MalformedDocumentError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *MalformedDocumentError) Code() Code { return ErrCodeMalformedDocument }

// DecodeError reports an attribute whose text does not match its declared type.
type DecodeError struct {
	ElementID string // id of the node or edge carrying the attribute; empty if unknown
	Key       string // semantic attribute name
	Expected  string // declared type or enum name
	Raw       string // offending raw text
	Cause     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %q: expected %s, got %q", e.Key, e.Expected, e.Raw)
	if e.ElementID != "" {
		msg = e.ElementID + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying conversion error, if any.
func (e *DecodeError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *DecodeError) Code() Code { return ErrCodeDecode }

// UnknownKindError reports a node or edge discriminator outside the registry.
type UnknownKindError struct {
	Element       string // "node" or "edge"
	Discriminator string
	ElementID     string
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("%s %s: unknown %s type %q", e.Element, e.ElementID, e.Element, e.Discriminator)
}

// Code returns the error code for this error type.
func (e *UnknownKindError) Code() Code { return ErrCodeUnknownKind }

// AttributeError reports an attribute that a kind requires but is absent
// (Missing), or one that the kind does not accept.
type AttributeError struct {
	ElementID string
	Kind      string
	Key       string
	Missing   bool
}

// Error implements the error interface.
func (e *AttributeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: %s requires attribute %q", e.ElementID, e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: %s does not accept attribute %q", e.ElementID, e.Kind, e.Key)
}

// Code returns the error code for this error type.
func (e *AttributeError) Code() Code { return ErrCodeInvalidAttribute }

// DuplicateNodeIDError reports a node id that occurs more than once.
type DuplicateNodeIDError struct {
	ID string
}

// Error implements the error interface.
func (e *DuplicateNodeIDError) Error() string {
	return fmt.Sprintf("duplicate node id %s", e.ID)
}

// Code returns the error code for this error type.
func (e *DuplicateNodeIDError) Code() Code { return ErrCodeDuplicateNode }

// DuplicateEdgeIDError reports an edge id that occurs more than once.
type DuplicateEdgeIDError struct {
	ID string
}

// Error implements the error interface.
func (e *DuplicateEdgeIDError) Error() string {
	return fmt.Sprintf("duplicate edge id %s", e.ID)
}

// Code returns the error code for this error type.
func (e *DuplicateEdgeIDError) Code() Code { return ErrCodeDuplicateEdge }

// DanglingEdgeError reports an edge whose source or target is not a node.
type DanglingEdgeError struct {
	EdgeID    string
	Endpoint  string // "source" or "target"
	MissingID string
}

// Error implements the error interface.
func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s: %s node %s does not exist", e.EdgeID, e.Endpoint, e.MissingID)
}

// Code returns the error code for this error type.
func (e *DanglingEdgeError) Code() Code { return ErrCodeDanglingEdge }

// NodeNotFoundError reports a lookup of a node id absent from the graph.
type NodeNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %s not found", e.ID)
}

// Code returns the error code for this error type.
func (e *NodeNotFoundError) Code() Code { return ErrCodeNodeNotFound }

// EdgeNotFoundError reports a lookup of an edge id absent from the graph.
type EdgeNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *EdgeNotFoundError) Error() string {
	return fmt.Sprintf("edge %s not found", e.ID)
}

// Code returns the error code for this error type.
func (e *EdgeNotFoundError) Code() Code { return ErrCodeEdgeNotFound }
