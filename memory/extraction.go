package memory

import (
	"encoding/json"
	"strings"

	"github.com/kaziai/core/llms"
)

// ExtractionPrompt is the exact system prompt used to extract memorable
// facts from an agent's output, grounded on
// original_source/src/episodic_memory.py's MEMORY_EXTRACTION_PROMPT.
const ExtractionPrompt = `You are a memory extraction system. Given the output of an AI agent that helped a user, extract key facts worth remembering about the user for future conversations.

Extract up to 5 facts. Each fact should be a concise statement. Categorize each as:
- "fact": objective information (skills, experience, education, current job)
- "preference": user preferences (remote work, specific companies, salary expectations)
- "goal": career goals or targets
- "outcome": results of actions taken (ATS scores, interview prep completed, applications sent)

Respond with ONLY valid JSON array (no markdown):
[{"content": "fact text", "category": "fact|preference|goal|outcome"}]

If there are no meaningful facts to extract, return: []`

// ExtractedFact is one memory candidate surfaced by ExtractFacts.
type ExtractedFact struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ExtractFacts runs a cheap LLM call over agent output and the triggering
// user message, returning up to 5 categorized facts. Any failure — provider
// error, malformed JSON — yields an empty slice rather than an error,
// matching the original's broad except-and-return-[] behavior.
func ExtractFacts(provider llms.Provider, userMessage, agentOutput string) []ExtractedFact {
	if provider == nil {
		return nil
	}

	userMessage = truncate(userMessage, 500)
	agentOutput = truncate(agentOutput, 2000)

	text, _, _, err := provider.Generate([]llms.Message{
		{Role: "system", Content: ExtractionPrompt},
		{Role: "user", Content: "User said: " + userMessage + "\n\nAgent output:\n" + agentOutput},
	}, nil)
	if err != nil {
		return nil
	}

	raw := strings.TrimSpace(text)
	raw = stripCodeFence(raw)

	var facts []ExtractedFact
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		return nil
	}
	if len(facts) > 5 {
		facts = facts[:5]
	}

	out := make([]ExtractedFact, 0, len(facts))
	for _, f := range facts {
		if f.Content == "" {
			continue
		}
		if !ValidCategory(Category(f.Category)) {
			f.Category = string(CategoryFact)
		}
		out = append(out, f)
	}
	return out
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
