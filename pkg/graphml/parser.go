package graphml

import (
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
)

type state uint8

const (
	stateGraph state = iota // inside <graph>, records pending
	stateDone               // input fully consumed
)

// Parser streams a GraphML document. [NewParser] consumes the preamble
// (keys and description) up to the opening <graph> tag; records are then
// pulled one at a time with [Parser.Next] or [Parser.Records].
//
// A Parser is single-pass and not safe for concurrent use. After the first
// error every further call returns that error.
type Parser struct {
	dec    *xml.Decoder
	schema *Schema
	desc   *Descriptor
	logger *log.Logger
	state  state
	err    error
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes debug output (skipped elements) to l.
func WithLogger(l *log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser reads the preamble of the document in r and returns a parser
// positioned at the first record. It fails with
// [errors.MalformedDocumentError] if the document is not well-formed, a key
// is incomplete, or no <graph> element follows the preamble.
//
// The parser does not close r.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	p := &Parser{
		dec:    xml.NewDecoder(r),
		schema: newSchema(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.readPreamble(); err != nil {
		return nil, err
	}
	return p, nil
}

// Schema returns the key schema declared by the preamble.
func (p *Parser) Schema() *Schema { return p.schema }

// Descriptor returns the document's <desc> block, if it has one.
func (p *Parser) Descriptor() (Descriptor, bool) {
	if p.desc == nil {
		return Descriptor{}, false
	}
	return *p.desc, true
}

// Next returns the next node or edge record in file order, or io.EOF once
// the graph and the document have ended cleanly.
func (p *Parser) Next() (Record, error) {
	if p.err != nil {
		return Record{}, p.err
	}
	rec, err := p.next()
	if err != nil {
		p.err = err
	}
	return rec, err
}

// Records returns the remaining records as a single-use sequence. The
// sequence stops after yielding the first error.
func (p *Parser) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := p.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// =============================================================================
// Preamble
// =============================================================================

func (p *Parser) readPreamble() error {
	root := false
	for {
		tok, err := p.token()
		if err == io.EOF {
			if root {
				return p.malformed("document ended inside <graphml>", nil)
			}
			return p.malformed("missing <graphml> root element", nil)
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !root {
				if t.Name.Local != "graphml" {
					return p.malformed(fmt.Sprintf("expected <graphml> root element, found <%s>", t.Name.Local), nil)
				}
				root = true
				continue
			}
			switch t.Name.Local {
			case "key":
				if err := p.readKey(t); err != nil {
					return err
				}
			case "desc":
				if err := p.readDesc(); err != nil {
					return err
				}
			case "graph":
				p.state = stateGraph
				return nil
			default:
				if err := p.skip(t); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return p.malformed("document has no <graph> element", nil)
		}
	}
}

func (p *Parser) readKey(se xml.StartElement) error {
	var k Key
	var forAttr, typeAttr string
	var hasType bool
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "id":
			k.ID = a.Value
		case "for":
			forAttr = a.Value
		case "attr.name":
			k.Name = a.Value
		case "attr.type":
			typeAttr, hasType = a.Value, true
		}
	}

	switch {
	case k.ID == "":
		return p.malformed("<key> without id", nil)
	case k.Name == "":
		return p.malformed(fmt.Sprintf("key %s has no attr.name", k.ID), nil)
	case !hasType:
		return p.malformed(fmt.Sprintf("key %s has no attr.type", k.ID), nil)
	}

	var ok bool
	if k.Type, ok = attr.ParseType(typeAttr); !ok {
		return p.malformed(fmt.Sprintf("key %s declares unsupported attr.type %q", k.ID, typeAttr), nil)
	}
	if k.For, ok = parseDomain(forAttr); !ok {
		return p.malformed(fmt.Sprintf("key %s declares unsupported for=%q", k.ID, forAttr), nil)
	}

	for {
		tok, err := p.token()
		if err != nil {
			return p.eof(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "default" {
				if err := p.skip(t); err != nil {
					return err
				}
				continue
			}
			text, err := p.readText(t)
			if err != nil {
				return err
			}
			k.Default = attr.Some(text)
		case xml.EndElement:
			if !p.schema.add(k) {
				return p.malformed(fmt.Sprintf("key %s declared twice for %s", k.ID, k.For), nil)
			}
			return nil
		}
	}
}

func (p *Parser) readDesc() error {
	d := &Descriptor{}
	fields := map[string]*string{
		"version":  &d.Version,
		"about":    &d.About,
		"url":      &d.URL,
		"is_root":  &d.IsRoot,
		"frame_id": &d.FrameID,
	}
	for {
		tok, err := p.token()
		if err != nil {
			return p.eof(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if dst, ok := fields[t.Name.Local]; ok {
				if *dst, err = p.readText(t); err != nil {
					return err
				}
				continue
			}
			if t.Name.Local == "time" {
				if err := p.readTime(d); err != nil {
					return err
				}
				continue
			}
			if err := p.skip(t); err != nil {
				return err
			}
		case xml.EndElement:
			p.desc = d
			return nil
		}
	}
}

func (p *Parser) readTime(d *Descriptor) error {
	for {
		tok, err := p.token()
		if err != nil {
			return p.eof(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var dst *string
			switch t.Name.Local {
			case "start":
				dst = &d.TimeStart
			case "end":
				dst = &d.TimeEnd
			default:
				if err := p.skip(t); err != nil {
					return err
				}
				continue
			}
			if *dst, err = p.readText(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// =============================================================================
// Records
// =============================================================================

func (p *Parser) next() (Record, error) {
	if p.state == stateDone {
		return Record{}, io.EOF
	}
	for {
		tok, err := p.token()
		if err != nil {
			return Record{}, p.eof(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "node":
				return p.readRecord(t, ElementNode)
			case "edge":
				return p.readRecord(t, ElementEdge)
			default:
				if err := p.skip(t); err != nil {
					return Record{}, err
				}
			}
		case xml.EndElement:
			if err := p.readTrailer(); err != nil {
				return Record{}, err
			}
			p.state = stateDone
			return Record{}, io.EOF
		}
	}
}

func (p *Parser) readRecord(se xml.StartElement, kind ElementKind) (Record, error) {
	line, _ := p.dec.InputPos()
	rec := Record{Kind: kind, Line: line}
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "id":
			rec.ID = a.Value
		case "source":
			rec.Source = a.Value
		case "target":
			rec.Target = a.Value
		}
	}
	if rec.ID == "" {
		return Record{}, p.malformed(fmt.Sprintf("<%s> without id", kind), nil)
	}
	if kind == ElementEdge && (rec.Source == "" || rec.Target == "") {
		return Record{}, p.malformed(fmt.Sprintf("edge %s needs both source and target", rec.ID), nil)
	}

	seen := map[string]bool{}
	for {
		tok, err := p.token()
		if err != nil {
			return Record{}, p.eof(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "data" {
				if err := p.skip(t); err != nil {
					return Record{}, err
				}
				continue
			}
			key := ""
			for _, a := range t.Attr {
				if a.Name.Local == "key" {
					key = a.Value
				}
			}
			if _, ok := p.schema.Lookup(kind.Domain(), key); !ok {
				return Record{}, p.malformed(fmt.Sprintf("%s %s references undeclared key %q", kind, rec.ID, key), nil)
			}
			if seen[key] {
				return Record{}, p.malformed(fmt.Sprintf("%s %s repeats key %q", kind, rec.ID, key), nil)
			}
			seen[key] = true
			text, err := p.readText(t)
			if err != nil {
				return Record{}, err
			}
			rec.Data = append(rec.Data, Datum{Key: key, Value: text})
		case xml.EndElement:
			return rec, nil
		}
	}
}

// readTrailer consumes everything after </graph>. Only unrelated elements
// may follow; keys and further graphs are rejected.
func (p *Parser) readTrailer() error {
	closed := false
	for {
		tok, err := p.token()
		if err == io.EOF {
			if !closed {
				return p.malformed("document ended inside <graphml>", nil)
			}
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case closed:
				return p.malformed(fmt.Sprintf("unexpected <%s> after root element", t.Name.Local), nil)
			case t.Name.Local == "key":
				return p.malformed("<key> declared after <graph>", nil)
			case t.Name.Local == "graph":
				return p.malformed("more than one <graph> element", nil)
			}
			if err := p.skip(t); err != nil {
				return err
			}
		case xml.EndElement:
			closed = true
		}
	}
}

// =============================================================================
// Token helpers
// =============================================================================

// token returns the next token, turning XML syntax errors into
// MalformedDocumentError. io.EOF is passed through.
func (p *Parser) token() (xml.Token, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, p.malformed("invalid XML", err)
	}
	return tok, nil
}

// readText collects the character data of se up to its end tag. Nested
// elements are not allowed.
func (p *Parser) readText(se xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.token()
		if err != nil {
			return "", p.eof(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", p.malformed(fmt.Sprintf("unexpected <%s> inside <%s>", t.Name.Local, se.Name.Local), nil)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func (p *Parser) skip(se xml.StartElement) error {
	p.logger.Debug("skipping element", "element", se.Name.Local)
	if err := p.dec.Skip(); err != nil {
		return p.eof(err)
	}
	return nil
}

// eof maps a premature end of input to MalformedDocumentError.
func (p *Parser) eof(err error) error {
	if err == io.EOF || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return p.malformed("unexpected end of document", nil)
	}
	var md *errors.MalformedDocumentError
	if stderrors.As(err, &md) {
		return err
	}
	return p.malformed("invalid XML", err)
}

func (p *Parser) malformed(reason string, cause error) error {
	line, col := p.dec.InputPos()
	return &errors.MalformedDocumentError{
		Offset: p.dec.InputOffset(),
		Line:   line,
		Column: col,
		Reason: reason,
		Cause:  cause,
	}
}
