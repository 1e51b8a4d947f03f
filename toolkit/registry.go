package toolkit

import (
	"github.com/invopop/jsonschema"
	"github.com/kaziai/core/registry"
)

// Registry maps tool name to Tool. Registration is last-write-wins on name
// collision, per spec.md §4.2.
type Registry struct {
	base *registry.BaseRegistry[Tool]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[Tool]()}
}

// Register adds tool, overwriting any prior tool under the same name.
func (r *Registry) Register(tool Tool) {
	_ = r.base.Replace(tool.Info().Name, tool)
}

// Get resolves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	return r.base.Get(name)
}

// List returns every registered tool.
func (r *Registry) List() []Tool {
	return r.base.List()
}

// Infos returns the static Info of every registered tool, in registration
// order; the runtime converts these into llms.ToolDefinition values.
func (r *Registry) Infos() []Info {
	tools := r.base.List()
	out := make([]Info, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Info())
	}
	return out
}

// SchemaFor reflects argStruct into a JSON-schema parameters object using
// invopop/jsonschema, so concrete tools can derive their Info.Parameters
// from a typed Go argument struct instead of hand-writing a schema map.
func SchemaFor(argStruct interface{}) map[string]interface{} {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(argStruct)
	raw := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
	if schema.Properties != nil {
		props := map[string]interface{}{}
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = pair.Value
		}
		raw["properties"] = props
	}
	if len(schema.Required) > 0 {
		raw["required"] = schema.Required
	}
	return raw
}
