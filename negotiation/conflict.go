// Package negotiation implements the Conflict Detection & Negotiation
// Engine named in spec.md §4.6, grounded on
// original_source/src/agents/negotiation.py.
package negotiation

import (
	"fmt"
	"strings"

	"github.com/kaziai/core/bus"
)

// ConfidenceThreshold is the confidence-gap bound above which two agent
// responses are flagged as conflicting.
const ConfidenceThreshold = 0.3

// SentimentThreshold is the minimum keyword-match count, per side, for a
// sentiment contradiction to be flagged.
const SentimentThreshold = 3

var positiveKeywords = []string{"excellent", "strong", "great", "perfect", "ideal", "recommended", "top", "best"}
var negativeKeywords = []string{"poor", "weak", "bad", "avoid", "risky", "unlikely", "mismatch", "low"}

// Conflict is a detected disagreement between two or more agent outputs.
type Conflict struct {
	Agents        []string
	Topic         string
	Details       string
	ConfidenceGap float64
}

// ConflictDetector scans a MessageBus's responses for conflicts.
type ConflictDetector struct{}

// DetectConflicts checks every pair of response messages on busInstance for
// confidence divergence or sentiment contradiction.
func (ConflictDetector) DetectConflicts(busInstance *bus.MessageBus) []Conflict {
	responses := busInstance.Responses()
	if len(responses) < 2 {
		return nil
	}

	var conflicts []Conflict
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			if c, ok := checkPair(responses[i], responses[j]); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

func checkPair(r1, r2 bus.AgentMessage) (Conflict, bool) {
	c1, ok1 := r1.Confidence()
	if !ok1 {
		c1 = 0.5
	}
	c2, ok2 := r2.Confidence()
	if !ok2 {
		c2 = 0.5
	}
	o1 := strings.ToLower(r1.Content())
	o2 := strings.ToLower(r2.Content())

	confGap := c1 - c2
	if confGap < 0 {
		confGap = -confGap
	}
	if confGap > ConfidenceThreshold {
		return Conflict{
			Agents:        []string{r1.Sender, r2.Sender},
			Topic:         "confidence_divergence",
			Details:       fmt.Sprintf("%s confidence %.0f%% vs %s confidence %.0f%%", r1.Sender, c1*100, r2.Sender, c2*100),
			ConfidenceGap: confGap,
		}, true
	}

	pos1, neg1 := keywordCounts(o1)
	pos2, neg2 := keywordCounts(o2)

	if (pos1 >= SentimentThreshold && neg2 >= SentimentThreshold) || (neg1 >= SentimentThreshold && pos2 >= SentimentThreshold) {
		sentiment1 := "negative"
		if pos1 > neg1 {
			sentiment1 = "positive"
		}
		sentiment2 := "negative"
		if pos2 > neg2 {
			sentiment2 = "positive"
		}
		return Conflict{
			Agents:  []string{r1.Sender, r2.Sender},
			Topic:   "sentiment_contradiction",
			Details: fmt.Sprintf("%s is %s, %s is %s", r1.Sender, sentiment1, r2.Sender, sentiment2),
		}, true
	}

	return Conflict{}, false
}

func keywordCounts(text string) (positive, negative int) {
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			positive++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			negative++
		}
	}
	return
}
