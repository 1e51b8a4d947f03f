package llms

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/kaziai/core/internal/config"
)

// OllamaProvider talks to a local Ollama server's /api/chat endpoint.
type OllamaProvider struct {
	cfg     config.LLMProviderConfig
	client  *http.Client
	baseURL string
}

func NewOllamaProvider(cfg config.LLMProviderConfig) *OllamaProvider {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	return &OllamaProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, baseURL: base}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaMessage struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls []ollamaToolUse `json:"tool_calls,omitempty"`
}

type ollamaToolUse struct {
	Function struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	} `json:"function"`
}

type ollamaToolDef struct {
	Type     string `json:"type"`
	Function struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		Parameters  map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Tools    []ollamaToolDef `json:"tools,omitempty"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message struct {
		Content   string          `json:"content"`
		ToolCalls []ollamaToolUse `json:"tool_calls"`
	} `json:"message"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

func (p *OllamaProvider) Generate(messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error) {
	req := ollamaRequest{Model: p.cfg.Model}
	req.Options.Temperature = p.cfg.Temperature
	for _, m := range messages {
		req.Messages = append(req.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	for _, t := range tools {
		var def ollamaToolDef
		def.Type = "function"
		def.Function.Name = t.Name
		def.Function.Description = t.Description
		def.Function.Parameters = t.Parameters
		req.Tools = append(req.Tools, def)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, 0, newProviderError("ollama", "Generate", "marshal request", err)
	}

	resp, err := p.client.Post(p.baseURL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", nil, 0, newProviderError("ollama", "Generate", "http call", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, 0, newProviderError("ollama", "Generate", "read body", err)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, 0, newProviderError("ollama", "Generate", "unmarshal response", err)
	}
	if parsed.Error != "" {
		return "", nil, 0, newProviderError("ollama", "Generate", parsed.Error, nil)
	}

	var calls []ToolCall
	for i, tc := range parsed.Message.ToolCalls {
		args, _ := json.Marshal(tc.Function.Arguments)
		calls = append(calls, ToolCall{ID: "call_" + strconv.Itoa(i), Name: tc.Function.Name, Arguments: string(args)})
	}
	return parsed.Message.Content, calls, parsed.PromptEvalCount + parsed.EvalCount, nil
}

func (p *OllamaProvider) GenerateStreaming(messages []Message, tools []ToolDefinition, out chan<- string) ([]ToolCall, int, error) {
	text, calls, tokens, err := p.Generate(messages, tools)
	if err != nil {
		return nil, 0, err
	}
	if text != "" {
		out <- text
	}
	return calls, tokens, nil
}
