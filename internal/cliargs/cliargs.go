// Package cliargs encodes optional tool arguments as command-line flags.
package cliargs

import (
	"reflect"
	"strconv"
	"strings"
)

// Flag is one optional flag. Order in a []Flag is the emitted order.
type Flag struct {
	Name  string
	Value any
}

// F is shorthand for Flag{Name: name, Value: value}.
func F(name string, value any) Flag {
	return Flag{Name: name, Value: value}
}

// Encode turns flags into discrete argument tokens:
//
//	true        -> --name
//	"v"         -> --name v
//	5, 1.5      -> --name 5, --name 1.5
//	false, nil  -> omitted
//
// Pointers are dereferenced; nil pointers are omitted.
func Encode(flags []Flag) []string {
	var out []string
	for _, f := range flags {
		value, ok := scalar(f.Value)
		if !ok {
			continue
		}

		switch v := value.(type) {
		case bool:
			if v {
				out = append(out, "--"+f.Name)
			}
		case string:
			out = append(out, "--"+f.Name, v)
		case int64:
			out = append(out, "--"+f.Name, strconv.FormatInt(v, 10))
		case uint64:
			out = append(out, "--"+f.Name, strconv.FormatUint(v, 10))
		case float64:
			out = append(out, "--"+f.Name, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}

// Render formats flags the way they read on a shell prompt, with string
// values double-quoted. It is for logs and messages; Encode is what gets
// executed.
func Render(flags []Flag) string {
	var parts []string
	for _, f := range flags {
		tokens := Encode([]Flag{f})
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) == 2 {
			if value, _ := scalar(f.Value); isString(value) {
				tokens[1] = strconv.Quote(tokens[1])
			}
		}
		parts = append(parts, tokens...)
	}
	return strings.Join(parts, " ")
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// scalar normalizes v to bool, string, int64, uint64 or float64.
func scalar(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return nil, false
	}
}
