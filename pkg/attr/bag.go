package attr

import (
	stderrors "errors"
	"maps"
	"slices"

	"github.com/matzehuels/pagegraph/pkg/errors"
)

// Bag is the decoded attribute set of one node or edge, keyed by semantic
// name. Accessors coerce values to the type the caller needs and remember
// which names were read, so leftovers can be reported with [Bag.Unused].
//
// A Bag is owned by a single resolution and is not safe for concurrent use.
type Bag struct {
	elementID string
	kind      string
	values    map[string]Value
	used      map[string]bool
}

// NewBag wraps values for the element with the given id.
func NewBag(elementID string, values map[string]Value) *Bag {
	if values == nil {
		values = map[string]Value{}
	}
	return &Bag{
		elementID: elementID,
		values:    values,
		used:      make(map[string]bool, len(values)),
	}
}

// ElementID returns the id of the element the bag belongs to.
func (b *Bag) ElementID() string { return b.elementID }

// SetKind records the resolved kind name for error messages.
func (b *Bag) SetKind(kind string) { b.kind = kind }

// Has reports whether name is present, without marking it used.
func (b *Bag) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Names returns all attribute names in sorted order.
func (b *Bag) Names() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Unused returns the names that no accessor has read, sorted.
func (b *Bag) Unused() []string {
	var out []string
	for _, name := range b.Names() {
		if !b.used[name] {
			out = append(out, name)
		}
	}
	return out
}

// Take returns the raw decoded value for name and marks it used.
func (b *Bag) Take(name string) (Value, bool) {
	v, ok := b.values[name]
	if ok {
		b.used[name] = true
	}
	return v, ok
}

func (b *Bag) take(name string, want Type) (Value, bool, error) {
	v, ok := b.Take(name)
	if !ok {
		return Value{}, false, nil
	}
	out, err := v.As(name, want)
	if err != nil {
		return Value{}, true, b.withElement(err)
	}
	return out, true, nil
}

func (b *Bag) require(name string, want Type) (Value, error) {
	v, ok, err := b.take(name, want)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, &errors.AttributeError{ElementID: b.elementID, Kind: b.kind, Key: name, Missing: true}
	}
	return v, nil
}

func (b *Bag) withElement(err error) error {
	var de *errors.DecodeError
	if stderrors.As(err, &de) && de.ElementID == "" {
		de.ElementID = b.elementID
	}
	return err
}

// String returns a required attribute as text.
func (b *Bag) String(name string) (string, error) {
	v, err := b.require(name, TypeString)
	return v.Str(), err
}

// OptString returns an optional attribute as text.
func (b *Bag) OptString(name string) (Optional[string], error) {
	v, ok, err := b.take(name, TypeString)
	if err != nil || !ok {
		return None[string](), err
	}
	return Some(v.Str()), nil
}

// Bool returns a required boolean attribute.
func (b *Bag) Bool(name string) (bool, error) {
	v, err := b.require(name, TypeBool)
	return v.Bool(), err
}

// OptBool returns an optional boolean attribute.
func (b *Bag) OptBool(name string) (Optional[bool], error) {
	v, ok, err := b.take(name, TypeBool)
	if err != nil || !ok {
		return None[bool](), err
	}
	return Some(v.Bool()), nil
}

// Int returns a required signed integer attribute.
func (b *Bag) Int(name string) (int64, error) {
	v, err := b.require(name, TypeInt)
	return v.Int(), err
}

// OptInt returns an optional signed integer attribute.
func (b *Bag) OptInt(name string) (Optional[int64], error) {
	v, ok, err := b.take(name, TypeInt)
	if err != nil || !ok {
		return None[int64](), err
	}
	return Some(v.Int()), nil
}

// Uint returns a required unsigned integer attribute.
func (b *Bag) Uint(name string) (uint64, error) {
	v, err := b.require(name, TypeUint)
	return v.Uint(), err
}

// OptUint returns an optional unsigned integer attribute.
func (b *Bag) OptUint(name string) (Optional[uint64], error) {
	v, ok, err := b.take(name, TypeUint)
	if err != nil || !ok {
		return None[uint64](), err
	}
	return Some(v.Uint()), nil
}

// Float returns a required floating point attribute.
func (b *Bag) Float(name string) (float64, error) {
	v, err := b.require(name, TypeFloat)
	return v.Float(), err
}

// Enum returns a required attribute validated against e.
func (b *Bag) Enum(name string, e Enum) (string, error) {
	v, err := b.require(name, TypeString)
	if err != nil {
		return "", err
	}
	s, err := e.Decode(name, v.Str())
	return s, b.withElement(err)
}
