// Package response turns raw CLI output into MCP tool results.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type kind uint8

const (
	kindRaw kind = iota
	kindStructured
)

// Result is a tool payload: either structured JSON or raw text.
type Result struct {
	kind kind
	raw  json.RawMessage
	text string
}

// Structured wraps a JSON-encodable value. Values that cannot be encoded
// degrade to their %v rendering as raw text.
func Structured(v any) Result {
	data, err := marshal(v)
	if err != nil {
		return Raw(fmt.Sprint(v))
	}
	return Result{kind: kindStructured, raw: data}
}

// Raw wraps plain text verbatim.
func Raw(text string) Result {
	return Result{kind: kindRaw, text: text}
}

// Output wraps CLI text in the {"output": text} shape used by commands
// that do not emit JSON.
func Output(text string) Result {
	return Structured(map[string]string{"output": text})
}

// Format parses stdout as JSON. On success the value is nested under
// wrapKey when one is given; otherwise the trimmed text is kept as is.
func Format(stdout, wrapKey string) Result {
	trimmed := bytes.TrimSpace([]byte(stdout))
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Raw(strings.TrimSpace(stdout))
	}

	if wrapKey == "" {
		return Result{kind: kindStructured, raw: json.RawMessage(trimmed)}
	}

	key, err := json.Marshal(wrapKey)
	if err != nil {
		return Raw(strings.TrimSpace(stdout))
	}
	wrapped := make([]byte, 0, len(trimmed)+len(key)+3)
	wrapped = append(wrapped, '{')
	wrapped = append(wrapped, key...)
	wrapped = append(wrapped, ':')
	wrapped = append(wrapped, trimmed...)
	wrapped = append(wrapped, '}')
	return Result{kind: kindStructured, raw: wrapped}
}

// IsStructured reports whether r holds parsed JSON.
func (r Result) IsStructured() bool {
	return r.kind == kindStructured
}

// Decode unmarshals a structured result into v.
func (r Result) Decode(v any) error {
	if !r.IsStructured() {
		return fmt.Errorf("result is raw text, not JSON")
	}
	return json.Unmarshal(r.raw, v)
}

// Text renders r for the wire: two-space indented JSON, or the raw text.
// Key order of parsed CLI output is preserved.
func (r Result) Text() string {
	if !r.IsStructured() {
		return r.text
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, r.raw, "", "  "); err != nil {
		return string(r.raw)
	}
	return buf.String()
}

func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
