// Package adblock matches request URLs against Adblock Plus style network
// filters.
//
// Supported syntax is the network subset used by common filter lists:
// "||" domain anchors, "|" start and end anchors, "*" wildcards, the "^"
// separator placeholder, /regex/ patterns, "@@" exceptions and the options
// third-party, first-party, domain=, match-case, important and the request
// type options (script, image, stylesheet, xmlhttprequest, subdocument,
// document, object, font, media, websocket, ping, other). Cosmetic filters
// and comments are skipped. Any other option makes the filter invalid.
package adblock

import (
	"net"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
)

var typeOptions = []string{
	"script", "image", "stylesheet", "xmlhttprequest", "subdocument", "document",
	"object", "font", "media", "websocket", "ping", "other",
}

// Rule is one parsed network filter.
type Rule struct {
	Text       string
	Exception  bool
	Important  bool
	ThirdParty attr.Optional[bool]

	re             *regexp.Regexp
	types          []string
	excludedTypes  []string
	domains        []string
	excludeDomains []string
}

// Request is a network request as seen by the matcher.
type Request struct {
	URL string
	// SourceHost is the hostname of the page that made the request.
	SourceHost string
	// Type is a request type label such as "script" or "xhr".
	Type string
	// ThirdParty is absent when the page's domain is unknown.
	ThirdParty attr.Optional[bool]
}

// Result is the outcome of checking one request.
type Result struct {
	// Matched is true when a blocking filter matched and no exception
	// overrode it.
	Matched bool
	// Exception is true when a blocking filter matched and an exception
	// overrode it.
	Exception bool
}

// Engine holds a compiled filter list.
type Engine struct {
	block     []Rule
	exception []Rule
}

// Compile parses a filter list, one filter per entry. Blank lines, comments
// and cosmetic filters are skipped.
func Compile(lines []string) (*Engine, error) {
	e := &Engine{}
	for _, line := range lines {
		r, ok, err := ParseRule(line)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if r.Exception {
			e.exception = append(e.exception, r)
		} else {
			e.block = append(e.block, r)
		}
	}
	return e, nil
}

// Len returns the number of network filters in the engine.
func (e *Engine) Len() int { return len(e.block) + len(e.exception) }

// Check matches req against every filter.
func (e *Engine) Check(req Request) Result {
	blocked, important := false, false
	for _, r := range e.block {
		if r.Match(req) {
			blocked = true
			important = important || r.Important
		}
	}
	if !blocked {
		return Result{}
	}
	if important {
		return Result{Matched: true}
	}
	for _, r := range e.exception {
		if r.Match(req) {
			return Result{Exception: true}
		}
	}
	return Result{Matched: true}
}

// ParseRule parses a single filter. ok is false for lines that are not
// network filters.
func ParseRule(line string) (r Rule, ok bool, err error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "", strings.HasPrefix(line, "!"), strings.HasPrefix(line, "["):
		return Rule{}, false, nil
	case strings.Contains(line, "##"), strings.Contains(line, "#@#"),
		strings.Contains(line, "#?#"), strings.Contains(line, "#$#"):
		return Rule{}, false, nil
	}

	r.Text = line
	pattern := line
	if strings.HasPrefix(pattern, "@@") {
		r.Exception = true
		pattern = pattern[2:]
	}

	matchCase := false
	if i := strings.LastIndex(pattern, "$"); i >= 0 && !(strings.HasPrefix(pattern, "/") && strings.LastIndex(pattern, "/") > i) {
		if matchCase, err = r.parseOptions(pattern[i+1:]); err != nil {
			return Rule{}, false, err
		}
		pattern = pattern[:i]
	}

	expr := translate(pattern)
	if !matchCase {
		expr = "(?i)" + expr
	}
	if r.re, err = regexp.Compile(expr); err != nil {
		return Rule{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "filter %q", line)
	}
	return r, true, nil
}

func (r *Rule) parseOptions(opts string) (matchCase bool, err error) {
	for _, opt := range strings.Split(opts, ",") {
		opt = strings.TrimSpace(opt)
		negated := strings.HasPrefix(opt, "~")
		name := strings.TrimPrefix(opt, "~")
		switch {
		case name == "third-party" || name == "3p":
			r.ThirdParty = attr.Some(!negated)
		case name == "first-party" || name == "1p":
			r.ThirdParty = attr.Some(negated)
		case name == "match-case" && !negated:
			matchCase = true
		case name == "important" && !negated:
			r.Important = true
		case strings.HasPrefix(opt, "domain="):
			for _, d := range strings.Split(strings.TrimPrefix(opt, "domain="), "|") {
				d = strings.ToLower(strings.TrimSpace(d))
				if strings.HasPrefix(d, "~") {
					r.excludeDomains = append(r.excludeDomains, d[1:])
				} else if d != "" {
					r.domains = append(r.domains, d)
				}
			}
		case name == "xhr" || slices.Contains(typeOptions, name):
			if name == "xhr" {
				name = "xmlhttprequest"
			}
			if negated {
				r.excludedTypes = append(r.excludedTypes, name)
			} else {
				r.types = append(r.types, name)
			}
		default:
			return false, errors.New(errors.ErrCodeInvalidInput, "filter %q: unsupported option %q", r.Text, opt)
		}
	}
	return matchCase, nil
}

// translate turns a filter pattern into a regular expression.
func translate(pattern string) string {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		return pattern[1 : len(pattern)-1]
	}

	var b strings.Builder
	switch {
	case strings.HasPrefix(pattern, "||"):
		b.WriteString(`^[a-z][a-z0-9+.-]*://(?:[^/?#]*\.)?`)
		pattern = pattern[2:]
	case strings.HasPrefix(pattern, "|"):
		b.WriteString("^")
		pattern = pattern[1:]
	}
	end := strings.HasSuffix(pattern, "|")
	pattern = strings.TrimSuffix(pattern, "|")

	for _, c := range pattern {
		switch c {
		case '*':
			b.WriteString(".*")
		case '^':
			b.WriteString(`(?:[^\w.%-]|$)`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	if end {
		b.WriteString("$")
	}
	return b.String()
}

// Match reports whether the filter applies to req, ignoring exceptions.
func (r Rule) Match(req Request) bool {
	typ := typeOption(req.Type)
	if len(r.types) > 0 && !slices.Contains(r.types, typ) {
		return false
	}
	if slices.Contains(r.excludedTypes, typ) {
		return false
	}
	if want, ok := r.ThirdParty.Get(); ok {
		if got, known := req.ThirdParty.Get(); !known || got != want {
			return false
		}
	}
	host := strings.ToLower(req.SourceHost)
	if len(r.domains) > 0 && !slices.ContainsFunc(r.domains, func(d string) bool { return onDomain(host, d) }) {
		return false
	}
	if slices.ContainsFunc(r.excludeDomains, func(d string) bool { return onDomain(host, d) }) {
		return false
	}
	return r.re.MatchString(req.URL)
}

func onDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// typeOption maps a request type label to its filter option name.
func typeOption(label string) string {
	switch label {
	case "xhr", "fetch":
		return "xmlhttprequest"
	case "unknown", "":
		return "other"
	}
	return label
}

// Domain returns the registrable domain (eTLD+1) of host, or host itself
// when it has none, as for IP addresses and bare public suffixes.
func Domain(host string) string {
	host = strings.ToLower(host)
	if net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}
