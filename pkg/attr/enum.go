package attr

import (
	"slices"
	"strings"

	"github.com/matzehuels/pagegraph/pkg/errors"
)

// Enum is a named, closed set of string values.
type Enum struct {
	Name   string
	Values []string
}

// NewEnum returns an Enum over values, in the given order.
func NewEnum(name string, values ...string) Enum {
	return Enum{Name: name, Values: values}
}

// Contains reports whether s is one of the enum's values.
func (e Enum) Contains(s string) bool {
	return slices.Contains(e.Values, s)
}

// String describes the enum for error messages, e.g. "request type(Image|Script)".
func (e Enum) String() string {
	return e.Name + "(" + strings.Join(e.Values, "|") + ")"
}

// Decode validates raw against the enum.
func (e Enum) Decode(key, raw string) (string, error) {
	if !e.Contains(raw) {
		return "", &errors.DecodeError{Key: key, Expected: e.String(), Raw: raw}
	}
	return raw, nil
}
