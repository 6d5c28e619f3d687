// Package attr decodes GraphML attribute text into typed scalar values.
//
// Every attribute in a GraphML document travels as text inside a <data>
// element. The key preamble declares what that text must look like
// (attr.type); this package turns the text into a [Value] of that type or
// fails with a [errors.DecodeError] naming the key, the expected type and
// the offending text.
//
// Decoding is strict:
//   - booleans accept exactly "true" and "false"
//   - integers and floats accept what strconv accepts, without surrounding space
//   - enumerated strings must be one of the values declared by their [Enum]
//
// Attributes that are absent decode to an empty [Optional], never to a
// zero value, so "unknown" stays distinct from "false" or "0".
package attr

import (
	"math"
	"strconv"

	"github.com/matzehuels/pagegraph/pkg/errors"
)

// Type is the declared scalar type of an attribute.
type Type int

// Scalar types. The zero value is invalid so that an undeclared type is
// never mistaken for a string.
const (
	TypeString Type = iota + 1
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
)

var typeNames = map[Type]string{
	TypeString: "string",
	TypeBool:   "boolean",
	TypeInt:    "int",
	TypeUint:   "uint",
	TypeFloat:  "float",
}

// String returns the GraphML spelling of t.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "invalid"
}

// graphmlTypes maps attr.type spellings from the key preamble.
// GraphML has no unsigned type; unsigned fields are declared int or long.
var graphmlTypes = map[string]Type{
	"string":  TypeString,
	"boolean": TypeBool,
	"int":     TypeInt,
	"long":    TypeInt,
	"float":   TypeFloat,
	"double":  TypeFloat,
}

// ParseType parses a GraphML attr.type value.
func ParseType(s string) (Type, bool) {
	t, ok := graphmlTypes[s]
	return t, ok
}

// Value is a decoded attribute. It remembers the raw text it came from.
type Value struct {
	typ Type
	raw string
	b   bool
	i   int64
	u   uint64
	f   float64
}

// Decode converts raw into a Value of type typ.
// The key is the semantic attribute name and only used for error context.
func Decode(key string, typ Type, raw string) (Value, error) {
	v := Value{typ: typ, raw: raw}
	var err error
	switch typ {
	case TypeString:
	case TypeBool:
		switch raw {
		case "true":
			v.b = true
		case "false":
		default:
			return Value{}, decodeErr(key, typ, raw, nil)
		}
	case TypeInt:
		v.i, err = strconv.ParseInt(raw, 10, 64)
	case TypeUint:
		v.u, err = strconv.ParseUint(raw, 10, 64)
	case TypeFloat:
		v.f, err = strconv.ParseFloat(raw, 64)
	default:
		return Value{}, decodeErr(key, typ, raw, nil)
	}
	if err != nil {
		return Value{}, decodeErr(key, typ, raw, unwrapNum(err))
	}
	return v, nil
}

// StringValue wraps s as a string Value.
func StringValue(s string) Value { return Value{typ: TypeString, raw: s} }

// Type returns the type the value was decoded as.
func (v Value) Type() Type { return v.typ }

// Raw returns the original attribute text.
func (v Value) Raw() string { return v.raw }

// Str returns the value as text. Every type has a textual form.
func (v Value) Str() string { return v.raw }

// Bool returns the boolean value. Only meaningful for TypeBool.
func (v Value) Bool() bool { return v.b }

// Int returns the signed integer value. Only meaningful for TypeInt.
func (v Value) Int() int64 { return v.i }

// Uint returns the unsigned integer value. Only meaningful for TypeUint.
func (v Value) Uint() uint64 { return v.u }

// Float returns the floating point value. Only meaningful for TypeFloat.
func (v Value) Float() float64 { return v.f }

// As converts v to type want. Lossless numeric conversions are allowed,
// text declared as string is decoded strictly, and any value can be read
// as a string.
func (v Value) As(key string, want Type) (Value, error) {
	if v.typ == want {
		return v, nil
	}
	out := Value{typ: want, raw: v.raw}
	switch {
	case want == TypeString:
		return out, nil
	case v.typ == TypeString:
		return Decode(key, want, v.raw)
	case v.typ == TypeInt && want == TypeUint && v.i >= 0:
		out.u = uint64(v.i)
		return out, nil
	case v.typ == TypeUint && want == TypeInt && v.u <= math.MaxInt64:
		out.i = int64(v.u)
		return out, nil
	case v.typ == TypeInt && want == TypeFloat:
		out.f = float64(v.i)
		return out, nil
	case v.typ == TypeUint && want == TypeFloat:
		out.f = float64(v.u)
		return out, nil
	case v.typ == TypeFloat && want == TypeInt && v.f == math.Trunc(v.f) && math.Abs(v.f) < math.MaxInt64:
		out.i = int64(v.f)
		return out, nil
	case v.typ == TypeFloat && want == TypeUint && v.f == math.Trunc(v.f) && v.f >= 0 && v.f < math.MaxUint64:
		out.u = uint64(v.f)
		return out, nil
	}
	return Value{}, decodeErr(key, want, v.raw, nil)
}

func decodeErr(key string, typ Type, raw string, cause error) error {
	return &errors.DecodeError{Key: key, Expected: typ.String(), Raw: raw, Cause: cause}
}

// unwrapNum drops the strconv.NumError wrapper, which repeats the raw text.
func unwrapNum(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
