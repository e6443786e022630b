package tools

import "github.com/mark3labs/mcp-go/mcp"

func objectSchema(props map[string]any, required ...string) mcp.ToolInputSchema {
	if props == nil {
		props = map[string]any{}
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func emptySchema() mcp.ToolInputSchema {
	return objectSchema(nil)
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func formatProp(format, description string) map[string]any {
	return map[string]any{"type": "string", "format": format, "description": description}
}

func patternProp(pattern, description string) map[string]any {
	return map[string]any{"type": "string", "pattern": pattern, "description": description}
}
