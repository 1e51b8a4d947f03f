package memory

import (
	"hash/fnv"
	"math"
	"strings"
)

// dims is the fixed vector width produced by LocalEmbedder.
const dims = 64

// LocalEmbedder produces a deterministic pseudo-embedding from hashed
// single word tokens. No embedding-model provider is named anywhere in spec.md
// §6, so rather than invent an unspecified external embeddings API this
// core synthesizes one locally: same input always yields the same vector,
// and textual overlap between two inputs yields proportional cosine
// similarity, which is enough for the episodic-memory recall use case.
type LocalEmbedder struct{}

// Embed returns a normalized dims-length vector for text.
func (LocalEmbedder) Embed(text string) []float32 {
	vec := make([]float32, dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		idx := h.Sum32() % dims
		vec[idx]++
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}
