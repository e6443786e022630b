package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ValidationError reports caller arguments that do not fit a tool's input
// schema or its format rules. It matches mcp.ErrInvalidParams.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid arguments: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return mcp.ErrInvalidParams
}

func invalidArgs(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// compileArgs checks raw against a flat object schema: no unknown keys,
// every required key present and non-null, and each value of the JSON
// type its property declares. Strings are never parsed into numbers or
// booleans.
func compileArgs(raw map[string]any, schema mcp.ToolInputSchema) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	typ := strings.TrimSpace(strings.ToLower(schema.Type))
	if typ != "" && typ != "object" {
		return nil, invalidArgs("tool input schema must be object, got %q", typ)
	}

	props := schema.Properties
	if len(props) > 0 {
		for key := range raw {
			if _, ok := props[key]; !ok {
				return nil, invalidArgs("unknown argument %q", key)
			}
		}
	}

	for _, key := range schema.Required {
		if v, ok := raw[key]; !ok || v == nil {
			return nil, invalidArgs("missing required argument %q", key)
		}
	}

	out := make(map[string]any, len(raw))
	for key, value := range raw {
		propSchema, _ := props[key].(map[string]any)
		checked, err := checkValue(value, propSchema, key)
		if err != nil {
			return nil, err
		}
		out[key] = checked
	}
	return out, nil
}

func checkValue(value any, schema map[string]any, name string) (any, error) {
	if schema == nil || value == nil {
		return value, nil
	}

	switch schemaType(schema) {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, invalidArgsType(name, "string", value)
		}
		return s, nil
	case "number":
		return checkNumber(value, name)
	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, invalidArgsType(name, "boolean", value)
		}
		return b, nil
	default:
		return value, nil
	}
}

func checkNumber(value any, name string) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalidArgs("argument %q must be number: %v", name, err)
		}
		return f, nil
	default:
		return 0, invalidArgsType(name, "number", value)
	}
}

func schemaType(schema map[string]any) string {
	t, _ := schema["type"].(string)
	return strings.TrimSpace(strings.ToLower(t))
}

func invalidArgsType(name, want string, got any) error {
	return invalidArgs("argument %q must be %s, got %T", name, want, got)
}
