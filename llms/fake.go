package llms

// FakeProvider is an in-memory Provider used by other packages' unit tests.
// Responses are matched against the incoming messages in registration order;
// the first matcher that returns true is used and then discarded, so a test
// can script a sequence of distinct replies across ReAct loop steps.
type FakeProvider struct {
	Responses []FakeResponse
	calls     int
}

// FakeResponse is one scripted reply.
type FakeResponse struct {
	Match     func(messages []Message) bool
	Text      string
	ToolCalls []ToolCall
	Tokens    int
	Err       error
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) Generate(messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error) {
	for i, r := range f.Responses {
		if r.Match == nil || r.Match(messages) {
			f.Responses = append(f.Responses[:i], f.Responses[i+1:]...)
			f.calls++
			return r.Text, r.ToolCalls, r.Tokens, r.Err
		}
	}
	f.calls++
	return "", nil, 0, nil
}

func (f *FakeProvider) GenerateStreaming(messages []Message, tools []ToolDefinition, out chan<- string) ([]ToolCall, int, error) {
	text, calls, tokens, err := f.Generate(messages, tools)
	if err != nil {
		return nil, 0, err
	}
	if text != "" {
		out <- text
	}
	return calls, tokens, nil
}

// Calls reports how many times Generate/GenerateStreaming was invoked.
func (f *FakeProvider) Calls() int { return f.calls }
