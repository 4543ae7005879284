package ast

import (
	"fmt"
	"reflect"
	"strings"
)

// jsonFieldNames maps Go field names that don't reduce to CPython's
// lower_snake_case field name by simply lowercasing the first letter.
var jsonFieldNames = map[string]string{
	"AsName":      "asname",
	"KwOnlyArgs":  "kwonlyargs",
	"KwDefaults":  "kw_defaults",
	"FormatSpec":  "format_spec",
	"IsAsync":     "is_async",
	"TypeParams":  "type_params",
	"OptionalVars": "optional_vars",
	"ContextExpr": "context_expr",
	"KwdAttrs":    "kwd_attrs",
	"KwdPatterns": "kwd_patterns",
	"Type_":       "type_",
	"PosInfo":     "-",
}

func fieldJSONName(name string) string {
	if mapped, ok := jsonFieldNames[name]; ok {
		return mapped
	}
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// NodeToJSON renders a Node (or any helper struct such as Alias, Arg,
// Comprehension...) into the interop JSON shape from spec §6:
// {"type": "<Tag>", "<field>": <value>, ...} with arrays for repeated
// fields and null for missing optionals.
func NodeToJSON(n Node) (map[string]any, error) {
	if n == nil || (reflect.ValueOf(n).Kind() == reflect.Ptr && reflect.ValueOf(n).IsNil()) {
		return nil, nil
	}
	v, err := toJSONValue(reflect.ValueOf(n))
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: %T did not render to an object", n)
	}
	return m, nil
}

// stringer is consulted so enum fields (Operator, CompareOp, ...)
// serialize as their tag names rather than raw integers.
type stringer interface{ String() string }

func toJSONValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		return toJSONValue(v.Elem())
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return toJSONValue(v.Elem())
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, err := toJSONValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case reflect.Struct:
		return structToJSON(v)
	case reflect.Int, reflect.Int64, reflect.Int32:
		if s, ok := v.Interface().(stringer); ok {
			return s.String(), nil
		}
		return v.Int(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Float64, reflect.Float32:
		return v.Float(), nil
	default:
		return v.Interface(), nil
	}
}

func structToJSON(v reflect.Value) (any, error) {
	t := v.Type()

	// Addressable copy so we can call pointer-receiver Type() methods
	// (e.g. *Arg, *Keyword) uniformly with value-receiver ones.
	addr := reflect.New(t)
	addr.Elem().Set(v)

	out := map[string]any{}
	if tn, ok := addr.Interface().(interface{ Type() string }); ok {
		out["type"] = tn.Type()
	} else if tn, ok := v.Interface().(interface{ Type() string }); ok {
		out["type"] = tn.Type()
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Name == "pos" {
			continue
		}
		name := fieldJSONName(f.Name)
		if name == "-" {
			continue
		}
		val, err := toJSONValue(v.Field(i))
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}
