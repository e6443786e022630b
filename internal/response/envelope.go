package response

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Success wraps r as a single text content block.
func Success(r Result) *mcp.CallToolResult {
	return mcp.NewToolResultText(r.Text())
}

// Failure wraps err as an error result. The message is the only detail
// that reaches the caller.
func Failure(err error) *mcp.CallToolResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return mcp.NewToolResultError("Error: " + msg)
}

// Text extracts the concatenated text content of a result.
func Text(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var out string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			out += c.Text
		case *mcp.TextContent:
			out += c.Text
		}
	}
	return out
}
