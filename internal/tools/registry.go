// Package tools declares the prism MCP tools and dispatches calls to them.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lydakis/prism-mcp/internal/response"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Group is a toolset name. Tools are enabled per group.
type Group string

const (
	GroupAuth         Group = "auth"
	GroupIntegrations Group = "integrations"
	GroupComponents   Group = "components"
)

// Args is a typed argument struct. Validate checks format and cross-field
// rules after schema coercion and decoding.
type Args interface {
	Validate() error
}

// Handler runs a tool against the raw argument bag of a call.
type Handler func(ctx context.Context, args map[string]any) (response.Result, error)

// Tool describes one registered tool.
type Tool struct {
	Name        string
	Description string
	Group       Group
	// Action names what the tool does ("list flows"). Handler failures are
	// reported as "failed to <action>: ...".
	Action  string
	Schema  mcp.ToolInputSchema
	Handler Handler
}

// ActionError is a handler failure labelled with what the tool was doing.
// Its text is the one callers see after "Error: ".
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return "Failed to " + e.Action + ": " + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewTool builds a Tool whose handler receives validated arguments of
// type T. Raw arguments are checked against schema, decoded into T and
// checked with T.Validate before fn runs; any failure there is a
// *ValidationError and fn is never called.
func NewTool[T Args](name, description string, group Group, schema mcp.ToolInputSchema, fn func(ctx context.Context, args T) (response.Result, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Group:       group,
		Schema:      schema,
		Handler: func(ctx context.Context, raw map[string]any) (response.Result, error) {
			args, err := decodeArgs[T](raw, schema)
			if err != nil {
				return response.Result{}, err
			}
			return fn(ctx, args)
		},
	}
}

func decodeArgs[T Args](raw map[string]any, schema mcp.ToolInputSchema) (T, error) {
	var args T

	compiled, err := compileArgs(raw, schema)
	if err != nil {
		return args, err
	}

	data, err := json.Marshal(compiled)
	if err != nil {
		return args, invalidArgs("encoding arguments: %v", err)
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return args, invalidArgs("%v", err)
	}

	if err := args.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return args, err
		}
		return args, &ValidationError{Reason: err.Error()}
	}
	return args, nil
}

func (t Tool) withAction(action string) Tool {
	t.Action = action
	return t
}

// MCP returns the descriptor advertised in tools/list.
func (t Tool) MCP() mcp.Tool {
	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Schema,
	}
}

// Registry holds tools in registration order.
type Registry struct {
	mu     sync.RWMutex
	tools  []Tool
	index  map[string]int
	logger zerolog.Logger
	newID  func() string
}

// NewRegistry returns an empty registry. A nil logger disables logging.
func NewRegistry(logger *zerolog.Logger) *Registry {
	r := &Registry{
		index:  map[string]int{},
		logger: zerolog.Nop(),
		newID:  uuid.NewString,
	}
	if logger != nil {
		r.logger = *logger
	}
	return r
}

// Register adds t. Names must be unique.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q: handler is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.index[name] = len(r.tools)
	r.tools = append(r.tools, t)
	return nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// List returns the MCP descriptors in registration order.
func (r *Registry) List() []mcp.Tool {
	tools := r.Tools()
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.MCP())
	}
	return out
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Dispatch runs the named tool and always returns an envelope. Unknown
// tools, invalid arguments, handler errors and handler panics all become
// error results.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	logger := r.logger.With().Str("call_id", r.newID()).Str("tool", name).Logger()
	start := time.Now()

	tool, ok := r.Lookup(name)
	if !ok {
		logger.Warn().Msg("unknown tool")
		return response.Failure(fmt.Errorf("tool not found: %s", name))
	}

	logger.Debug().Strs("args", argNames(args)).Msg("tool call")

	result, err := invoke(ctx, tool, args)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			logger.Info().Err(err).Msg("rejected tool arguments")
		default:
			if tool.Action != "" {
				err = &ActionError{Action: tool.Action, Err: err}
			}
			logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("tool call failed")
		}
		return response.Failure(err)
	}

	logger.Info().Dur("elapsed", time.Since(start)).Bool("structured", result.IsStructured()).Msg("tool call completed")
	return response.Success(result)
}

func invoke(ctx context.Context, tool Tool, args map[string]any) (result response.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name, rec)
		}
	}()
	return tool.Handler(ctx, args)
}

// argNames lists argument keys only; values may hold credentials.
func argNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
