package viewtree

import (
	"fmt"
	"reflect"
)

const printableDepth = 12

// Printable converts v into plain maps, slices and scalars that any
// encoder can serialise. Functions become "ƒn", other references their
// type name, and nesting deeper than a fixed limit is cut off.
func Printable(v any) any {
	return printable(v, 0)
}

func printable(v any, depth int) any {
	if depth > printableDepth {
		return "…"
	}
	switch x := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return x
	case Config:
		return printableMap(x, depth)
	case map[string]any:
		return printableMap(x, depth)
	case *Leaf:
		if x == nil {
			return nil
		}
		return "leaf:" + x.Label()
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return "ƒn"
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return fmt.Sprintf("%T", v)
		}
		return printable(rv.Elem().Interface(), depth+1)
	case reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("%T", v)
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = printable(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = printable(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Struct:
		return fmt.Sprintf("%+v", v)
	}
	return fmt.Sprint(v)
}

func printableMap[M ~map[string]any](m M, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = printable(v, depth+1)
	}
	return out
}

// SameValue reports whether a and b are the same value: identical
// references for maps, slices and pointers, equality for comparable values.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	return ra.Comparable() && rb.Comparable() && ra.Equal(rb)
}
