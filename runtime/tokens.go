package runtime

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates token counts for prompt-budgeting purposes, backed
// by tiktoken-go so truncation decisions track the real tokenizer rather
// than a word-count heuristic.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter using the cl100k_base encoding, which
// covers every provider this core talks to closely enough for budgeting
// (none of them exposes a public Go tokenizer of its own).
func NewTokenCounter() *TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("runtime: tiktoken encoding unavailable, falling back to rune-count estimate", "error", err)
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

// Count returns the estimated token count of text.
func (c *TokenCounter) Count(text string) int {
	if c.enc == nil {
		return len([]rune(text)) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
