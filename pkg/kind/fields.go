package kind

import (
	"fmt"
	"reflect"
	"strconv"
)

// Field is one attribute of a node or edge payload in its textual form.
type Field struct {
	Name    string
	Value   string
	Present bool
}

type presence interface {
	IsPresent() bool
}

// Attributes flattens a payload into its recorded attributes, in field
// order. Absent optional attributes are reported with Present false.
func Attributes(v any) []Field {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	out := make([]Field, 0, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		name := sf.Tag.Get("attr")
		if name == "" || !sf.IsExported() {
			continue
		}
		out = append(out, field(name, rv.Field(i).Interface()))
	}
	return out
}

// Attribute returns the textual value of one named attribute of a payload.
func Attribute(v any, name string) (string, bool) {
	for _, f := range Attributes(v) {
		if f.Name == name {
			return f.Value, f.Present
		}
	}
	return "", false
}

func field(name string, v any) Field {
	f := Field{Name: name, Present: true}
	if p, ok := v.(presence); ok {
		f.Present = p.IsPresent()
	}
	switch x := v.(type) {
	case fmt.Stringer:
		f.Value = x.String()
	case string:
		f.Value = x
	case bool:
		f.Value = strconv.FormatBool(x)
	case uint64:
		f.Value = strconv.FormatUint(x, 10)
	case int64:
		f.Value = strconv.FormatInt(x, 10)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			f.Value = rv.String()
		} else {
			f.Value = fmt.Sprint(v)
		}
	}
	return f
}
