package llms

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kaziai/core/internal/config"
)

// AnthropicProvider implements Provider against the native Claude Messages
// API, grounded on the teacher's hand-rolled net/http Anthropic client: one
// custom HTTP client per vendor rather than an SDK, so every adapter in this
// package shares the same Message-based call shape.
type AnthropicProvider struct {
	cfg    config.LLMProviderConfig
	client *http.Client
}

func NewAnthropicProvider(cfg config.LLMProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type anthropicMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type anthropicContentBlock struct {
	Type      string                 `json:"type"`
	Text      string                 `json:"text,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Input     map[string]interface{} `json:"input,omitempty"`
	ToolUseID string                 `json:"tool_use_id,omitempty"`
	Content   string                 `json:"content,omitempty"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// buildRequest translates the provider-neutral message sequence into native
// Anthropic wire format. The runtime (runtime/agent.go's buildMessages) emits,
// per tool-calling step, a thought-only assistant message, a separate
// ToolCalls-only assistant message, and a Role=="tool" result message — none
// of which the Messages API accepts directly: it has no "tool" role (tool
// results are a tool_result block inside a user message), and a tool call is
// a tool_use block inside an assistant message, not a standalone turn. So
// consecutive assistant messages are merged into one message with a text
// block plus a tool_use block, and "tool" messages become user messages
// carrying a tool_result block (merged with an adjacent user message, if any).
func (p *AnthropicProvider) buildRequest(messages []Message, tools []ToolDefinition) anthropicRequest {
	req := anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			req.System = m.Content
		case "assistant":
			var blocks []anthropicContentBlock
			if m.Content != "" {
				blocks = append(blocks, anthropicContentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var input map[string]interface{}
				_ = json.Unmarshal([]byte(tc.Arguments), &input)
				blocks = append(blocks, anthropicContentBlock{Type: "tool_use", ID: tc.ID, Name: tc.Name, Input: input})
			}
			if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == "assistant" {
				prev := &req.Messages[n-1]
				prevBlocks, _ := prev.Content.([]anthropicContentBlock)
				prev.Content = append(prevBlocks, blocks...)
			} else {
				req.Messages = append(req.Messages, anthropicMessage{Role: "assistant", Content: blocks})
			}
		case "tool":
			block := anthropicContentBlock{Type: "tool_result", ToolUseID: m.ToolCallID, Content: m.Content}
			if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == "user" {
				prev := &req.Messages[n-1]
				prevBlocks, _ := prev.Content.([]anthropicContentBlock)
				prev.Content = append(prevBlocks, block)
			} else {
				req.Messages = append(req.Messages, anthropicMessage{Role: "user", Content: []anthropicContentBlock{block}})
			}
		default:
			req.Messages = append(req.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
		}
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	return req
}

func (p *AnthropicProvider) Generate(messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error) {
	req := p.buildRequest(messages, tools)
	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", "marshal request", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", "build request", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", "http call", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", "read body", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", "unmarshal response", err)
	}
	if parsed.Error != nil {
		return "", nil, 0, newProviderError("anthropic", "Generate", parsed.Error.Message, nil)
	}

	var text string
	var calls []ToolCall
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			calls = append(calls, ToolCall{ID: block.ID, Name: block.Name, Arguments: string(args)})
		}
	}
	return text, calls, parsed.Usage.InputTokens + parsed.Usage.OutputTokens, nil
}

// GenerateStreaming issues a non-streamed call and replays the full text as
// a single chunk. Anthropic's SSE streaming is a straightforward extension
// of Generate's request shape but isn't exercised by anything in this
// core's scope, so it is kept minimal rather than half-implemented.
func (p *AnthropicProvider) GenerateStreaming(messages []Message, tools []ToolDefinition, out chan<- string) ([]ToolCall, int, error) {
	text, calls, tokens, err := p.Generate(messages, tools)
	if err != nil {
		return nil, 0, err
	}
	if text != "" {
		out <- text
	}
	return calls, tokens, nil
}
