// Package toolkit defines the tool contract named in spec.md §4.2/§6 and the
// concrete tools this core ships.
package toolkit

import "context"

// Result is what every tool returns: a map containing at minimum a boolean
// "success" and, on failure, an "error" string, exactly as spec.md §4.2
// requires. Concrete tools populate additional keys for their own payload.
type Result map[string]interface{}

// Succeeded reports whether result carries success=true, or is considered
// successful because it omits the key entirely (spec.md §4.2: "A tool whose
// result map lacks success is treated as success").
func (r Result) Succeeded() bool {
	v, ok := r["success"]
	if !ok {
		return true
	}
	b, _ := v.(bool)
	return b
}

// Error returns the result's "error" string, if any.
func (r Result) Error() string {
	s, _ := r["error"].(string)
	return s
}

// Ok builds a successful result merging extra key/values.
func Ok(extra map[string]interface{}) Result {
	r := Result{"success": true}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

// Fail builds a failed result with the given error message.
func Fail(message string) Result {
	return Result{"success": false, "error": message}
}

// Info is a tool's static description: name, human description, and a
// JSON-schema parameters object.
type Info struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Tool is the capability every registered tool implements.
type Tool interface {
	Info() Info
	Execute(ctx context.Context, args map[string]interface{}) (Result, error)
}

// Source lets a tool registry be populated from a dynamic provider (e.g. an
// MCP server or a plugin) rather than a fixed Go-code set. This core's tool
// surface is a fixed, in-process set (see DESIGN.md), but the extension
// point is kept because the teacher's own ToolSource interface establishes
// it as the idiom for this concern.
type Source interface {
	Tools(ctx context.Context) ([]Tool, error)
}
