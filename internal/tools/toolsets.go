package tools

import (
	"fmt"
	"strings"

	"github.com/lydakis/prism-mcp/internal/config"
)

const allToolsets = "all"

// Groups lists every toolset in registration order.
var Groups = []Group{GroupAuth, GroupIntegrations, GroupComponents}

// ParseToolsets validates toolset names. An empty list or "all" selects
// every group. Unknown names are a configuration error.
func ParseToolsets(names []string) ([]Group, error) {
	seen := map[Group]bool{}
	var out []Group

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == allToolsets {
			return append([]Group(nil), Groups...), nil
		}
		group, ok := lookupGroup(name)
		if !ok {
			return nil, config.Errorf(config.EnvToolsets, "unknown toolset %q (valid: %s)", raw, validToolsets())
		}
		if !seen[group] {
			seen[group] = true
			out = append(out, group)
		}
	}

	if len(out) == 0 {
		return append([]Group(nil), Groups...), nil
	}
	return out, nil
}

func lookupGroup(name string) (Group, bool) {
	for _, g := range Groups {
		if string(g) == name {
			return g, true
		}
	}
	return "", false
}

func validToolsets() string {
	names := make([]string, 0, len(Groups)+1)
	for _, g := range Groups {
		names = append(names, string(g))
	}
	names = append(names, allToolsets)
	return strings.Join(names, ", ")
}

// Catalog returns every tool bound to d, grouped in toolset order.
func Catalog(d Deps) []Tool {
	var out []Tool
	out = append(out, authTools(d)...)
	out = append(out, integrationTools(d)...)
	out = append(out, componentTools(d)...)
	return out
}

// Register adds the tools of the enabled groups to r.
func Register(r *Registry, d Deps, groups []Group) error {
	enabled := map[Group]bool{}
	for _, g := range groups {
		enabled[g] = true
	}

	for _, t := range Catalog(d) {
		if !enabled[t.Group] {
			continue
		}
		if err := r.Register(t); err != nil {
			return fmt.Errorf("registering %s tools: %w", t.Group, err)
		}
	}
	return nil
}
