package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestCompileArgsAcceptsNativeTypes(t *testing.T) {
	schema := objectSchema(map[string]any{
		"timeout": numberProp(""),
		"sync":    boolProp(""),
		"flowUrl": stringProp(""),
	}, "flowUrl")

	got, err := compileArgs(map[string]any{
		"timeout": json.Number("1.5"),
		"sync":    false,
		"flowUrl": "https://hooks.example.com/trigger/1",
	}, schema)
	if err != nil {
		t.Fatalf("compileArgs() error = %v", err)
	}
	if got["timeout"] != 1.5 {
		t.Fatalf("timeout = %#v, want 1.5", got["timeout"])
	}
	if got["sync"] != false {
		t.Fatalf("sync = %#v, want false", got["sync"])
	}
}

func TestCompileArgsRejectsStringsForOtherTypes(t *testing.T) {
	schema := objectSchema(map[string]any{
		"timeout":  numberProp(""),
		"tailLogs": boolProp(""),
	})

	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{name: "number", raw: map[string]any{"timeout": "5"}, want: `invalid arguments: argument "timeout" must be number, got string`},
		{name: "boolean", raw: map[string]any{"tailLogs": "true"}, want: `invalid arguments: argument "tailLogs" must be boolean, got string`},
		{name: "boolean from number", raw: map[string]any{"tailLogs": 1}, want: `invalid arguments: argument "tailLogs" must be boolean, got int`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileArgs(tt.raw, schema)
			if !errors.Is(err, mcp.ErrInvalidParams) {
				t.Fatalf("compileArgs() error = %v, want invalid params", err)
			}
			if err.Error() != tt.want {
				t.Fatalf("compileArgs() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestCompileArgsRejectsMissingRequired(t *testing.T) {
	schema := objectSchema(map[string]any{"integrationId": stringProp("")}, "integrationId")

	for _, raw := range []map[string]any{nil, {"integrationId": nil}} {
		_, err := compileArgs(raw, schema)
		if !errors.Is(err, mcp.ErrInvalidParams) {
			t.Fatalf("compileArgs(%v) error = %v, want invalid params", raw, err)
		}
	}
}

func TestCompileArgsRejectsUnknownArguments(t *testing.T) {
	schema := objectSchema(map[string]any{"name": stringProp(""), "sync": boolProp("")})

	for _, key := range []string{"unexpected", "no-sync"} {
		_, err := compileArgs(map[string]any{key: true}, schema)
		if !errors.Is(err, mcp.ErrInvalidParams) {
			t.Fatalf("compileArgs(%q) error = %v, want invalid params", key, err)
		}
		if want := `invalid arguments: unknown argument "` + key + `"`; err.Error() != want {
			t.Fatalf("compileArgs(%q) error = %q, want %q", key, err.Error(), want)
		}
	}
}

func TestCompileArgsEmptySchemaAcceptsAnything(t *testing.T) {
	got, err := compileArgs(map[string]any{"ignored": true}, emptySchema())
	if err != nil {
		t.Fatalf("compileArgs() error = %v", err)
	}
	if got["ignored"] != true {
		t.Fatalf("compileArgs() = %#v", got)
	}
}

func TestCompileArgsRejectsNonObjectSchema(t *testing.T) {
	_, err := compileArgs(nil, mcp.ToolInputSchema{Type: "array"})
	if !errors.Is(err, mcp.ErrInvalidParams) {
		t.Fatalf("compileArgs() error = %v, want invalid params", err)
	}
}
