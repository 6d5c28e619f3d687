// Package id parses and formats PageGraph element identifiers.
//
// Recorded node ids look like "n12" and edge ids like "e12". When the
// graph of a remote frame is merged into its parent, ids are namespaced with
// the 128-bit frame token: "n12:0A1B...F9".
package id

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/matzehuels/pagegraph/pkg/errors"
)

// Prefixes of recorded ids.
const (
	NodePrefix = 'n'
	EdgePrefix = 'e'
)

// FrameID is a 128-bit frame token, written as 32 hexadecimal digits.
type FrameID [16]byte

// ParseFrameID parses a 32-digit hexadecimal frame token. Case is ignored.
func ParseFrameID(s string) (FrameID, error) {
	var f FrameID
	if len(s) != 32 {
		return f, &ParseError{Input: s, Reason: ReasonFrameIDLength}
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return FrameID{}, &ParseError{Input: s, Reason: ReasonInvalidNumber}
	}
	return f, nil
}

// String returns the token as 32 uppercase hexadecimal digits.
func (f FrameID) String() string {
	return strings.ToUpper(hex.EncodeToString(f[:]))
}

// IsZero reports whether f is the all-zero token.
func (f FrameID) IsZero() bool { return f == FrameID{} }

// MarshalText implements encoding.TextMarshaler.
func (f FrameID) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FrameID) UnmarshalText(b []byte) error {
	parsed, err := ParseFrameID(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Item is a parsed node or edge id.
type Item struct {
	Prefix   byte
	Num      uint64
	Frame    FrameID
	HasFrame bool
}

// ParseNode parses a node id such as "n12" or "n12:<frame>".
func ParseNode(s string) (Item, error) { return parse(NodePrefix, s) }

// ParseEdge parses an edge id such as "e12" or "e12:<frame>".
func ParseEdge(s string) (Item, error) { return parse(EdgePrefix, s) }

func parse(prefix byte, s string) (Item, error) {
	if len(s) == 0 || s[0] != prefix {
		return Item{}, &ParseError{Input: s, Reason: ReasonMissingPrefix}
	}
	it := Item{Prefix: prefix}
	num, frame, hasFrame := strings.Cut(s[1:], ":")
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return Item{}, &ParseError{Input: s, Reason: ReasonInvalidNumber}
	}
	it.Num = n
	if hasFrame {
		f, err := ParseFrameID(frame)
		if err != nil {
			pe := err.(*ParseError)
			pe.Input = s
			return Item{}, pe
		}
		it.Frame, it.HasFrame = f, true
	}
	return it, nil
}

// String formats the id in its recorded form.
func (it Item) String() string {
	s := string(it.Prefix) + strconv.FormatUint(it.Num, 10)
	if it.HasFrame {
		s += ":" + it.Frame.String()
	}
	return s
}

// Namespace returns raw with the frame token appended, replacing any
// existing frame suffix.
func Namespace(raw string, f FrameID) string {
	base, _, _ := strings.Cut(raw, ":")
	return base + ":" + f.String()
}

// FrameOf returns the frame token of a namespaced id.
func FrameOf(raw string) (FrameID, bool) {
	_, frame, ok := strings.Cut(raw, ":")
	if !ok {
		return FrameID{}, false
	}
	f, err := ParseFrameID(frame)
	if err != nil {
		return FrameID{}, false
	}
	return f, true
}

// Reason classifies a ParseError.
type Reason int

const (
	ReasonMissingPrefix Reason = iota + 1
	ReasonInvalidNumber
	ReasonFrameIDLength
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingPrefix:
		return "missing prefix"
	case ReasonInvalidNumber:
		return "invalid number"
	case ReasonFrameIDLength:
		return "frame id must be 32 hex digits"
	}
	return "unknown"
}

// ParseError reports an id that does not follow the recorded format.
type ParseError struct {
	Input  string
	Reason Reason
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parse id " + strconv.Quote(e.Input) + ": " + e.Reason.String()
}

// Code returns the error code for this error type.
func (e *ParseError) Code() errors.Code { return errors.ErrCodeInvalidID }
