package views

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"viewscope/internal/viewtree"
)

// reserved config keys never become props.
var reserved = map[string]bool{
	"view":     true,
	"data":     true,
	"when":     true,
	"content":  true,
	"item":     true,
	"onClick":  true,
	"onToggle": true,
}

// configs normalises a content value into a list of view configs. Strings
// are shorthands: "text:hello" or a bare view name.
func configs(v any) []viewtree.Config {
	switch c := v.(type) {
	case nil:
		return nil
	case viewtree.Config:
		return []viewtree.Config{c}
	case map[string]any:
		return []viewtree.Config{viewtree.Config(c)}
	case string:
		return []viewtree.Config{shorthand(c)}
	case []viewtree.Config:
		return c
	case []map[string]any:
		out := make([]viewtree.Config, 0, len(c))
		for _, m := range c {
			out = append(out, viewtree.Config(m))
		}
		return out
	case []any:
		var out []viewtree.Config
		for _, item := range c {
			out = append(out, configs(item)...)
		}
		return out
	default:
		return []viewtree.Config{{"view": "text", "text": fmt.Sprint(v)}}
	}
}

func shorthand(s string) viewtree.Config {
	name, rest, ok := strings.Cut(s, ":")
	if !ok {
		return viewtree.Config{"view": strings.TrimSpace(s)}
	}
	return viewtree.Config{"view": strings.TrimSpace(name), "text": rest}
}

func isQuery(s string) bool {
	return strings.HasPrefix(s, "=")
}

// resolve evaluates a config value against data: "=path" strings are looked
// up, functions are called, everything else is a literal.
func resolve(v any, data any) any {
	switch x := v.(type) {
	case string:
		if isQuery(x) {
			return lookup(data, strings.TrimPrefix(x, "="))
		}
	case func(any) any:
		return x(data)
	}
	return v
}

// lookup walks a dotted path through maps and slices. "" and "$" select
// data itself; missing segments yield nil.
func lookup(data any, path string) any {
	path = strings.TrimPrefix(strings.TrimSpace(path), ".")
	if path == "" || path == "$" {
		return data
	}
	cur := data
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[seg]
		case viewtree.Config:
			cur = c[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil
			}
			cur = c[idx]
		default:
			return nil
		}
	}
	return cur
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func asSlice(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func props(cfg viewtree.Config, data any) map[string]any {
	out := map[string]any{}
	for k, v := range cfg {
		if reserved[k] || v == nil {
			continue
		}
		if fn, ok := v.(func(any) any); ok {
			out[k] = fn(data)
			continue
		}
		if reflect.TypeOf(v).Kind() == reflect.Func {
			continue
		}
		out[k] = resolve(v, data)
	}
	return out
}
