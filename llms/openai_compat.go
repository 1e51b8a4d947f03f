package llms

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kaziai/core/internal/config"
)

// defaultBaseURLs mirrors the original's PROVIDERS table: openai, groq, and
// deepseek are all OpenAI-compatible chat-completions endpoints that differ
// only in base URL and API key.
var defaultBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"groq":     "https://api.groq.com/openai/v1",
	"deepseek": "https://api.deepseek.com/v1",
}

// OpenAICompatProvider implements Provider against any OpenAI-compatible
// chat-completions API. One adapter, three presets (openai/groq/deepseek),
// selected by LLMProviderConfig.Type and an optional BaseURL override.
type OpenAICompatProvider struct {
	cfg     config.LLMProviderConfig
	client  *http.Client
	baseURL string
	name    string
}

func NewOpenAICompatProvider(cfg config.LLMProviderConfig) *OpenAICompatProvider {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURLs[cfg.Type]
	}
	return &OpenAICompatProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, baseURL: base, name: cfg.Type}
}

func (p *OpenAICompatProvider) Name() string { return p.name }

type oaiFunctionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type oaiToolDef struct {
	Type     string         `json:"type"`
	Function oaiFunctionDef `json:"function"`
}

type oaiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
}

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Tools       []oaiToolDef `json:"tools,omitempty"`
	ToolChoice  string       `json:"tool_choice,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content   string        `json:"content"`
			ToolCalls []oaiToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAICompatProvider) buildRequest(messages []Message, tools []ToolDefinition) oaiRequest {
	req := oaiRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	if len(tools) > 0 {
		req.ToolChoice = "auto"
	}
	for _, m := range messages {
		msg := oaiMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			var oc oaiToolCall
			oc.ID = tc.ID
			oc.Type = "function"
			oc.Function.Name = tc.Name
			oc.Function.Arguments = tc.Arguments
			msg.ToolCalls = append(msg.ToolCalls, oc)
		}
		req.Messages = append(req.Messages, msg)
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, oaiToolDef{
			Type: "function",
			Function: oaiFunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return req
}

func (p *OpenAICompatProvider) Generate(messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error) {
	req := p.buildRequest(messages, tools)
	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", "marshal request", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", "build request", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", "http call", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", "read body", err)
	}

	var parsed oaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", "unmarshal response", err)
	}
	if parsed.Error != nil {
		return "", nil, 0, newProviderError(p.name, "Generate", parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, 0, newProviderError(p.name, "Generate", "empty choices", nil)
	}

	choice := parsed.Choices[0].Message
	var calls []ToolCall
	for _, tc := range choice.ToolCalls {
		calls = append(calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return choice.Content, calls, parsed.Usage.TotalTokens, nil
}

func (p *OpenAICompatProvider) GenerateStreaming(messages []Message, tools []ToolDefinition, out chan<- string) ([]ToolCall, int, error) {
	text, calls, tokens, err := p.Generate(messages, tools)
	if err != nil {
		return nil, 0, err
	}
	if text != "" {
		out <- text
	}
	return calls, tokens, nil
}
