// Package llms defines the LLM adapter contract named in spec.md §6 and its
// concrete provider implementations.
package llms

// Message is one turn in a chat-style conversation passed to a provider.
type Message struct {
	Role       string // "system" | "user" | "assistant" | "tool"
	Content    string
	ToolCallID string     // set on Role=="tool": which call this is the result of
	ToolCalls  []ToolCall // set on Role=="assistant" when the model asked to call tools
}

// ToolDefinition describes one callable tool in provider-neutral form.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON Schema
}

// ToolCall is one invocation the model requested.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object, as spec.md §6 requires
}

// Provider is the adapter contract every LLM backend implements. It mirrors
// spec.md §6's "chat(model, messages, tools?, tool_choice?, max_tokens,
// temperature, stream?) -> {content, tool_calls[]}" shape, split into a
// blocking and a streaming form.
type Provider interface {
	// Generate issues one chat completion call. If the model requests tool
	// calls, text may be empty and toolCalls non-empty, or vice versa.
	Generate(messages []Message, tools []ToolDefinition) (text string, toolCalls []ToolCall, tokensUsed int, err error)

	// GenerateStreaming behaves like Generate but streams text chunks to out
	// as they arrive; out is never closed by the provider (the caller owns
	// it). Tool calls, if any, are only known once the stream completes.
	GenerateStreaming(messages []Message, tools []ToolDefinition, out chan<- string) (toolCalls []ToolCall, tokensUsed int, err error)

	// Name identifies the provider for logging/tracing/metrics labels.
	Name() string
}
