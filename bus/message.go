// Package bus implements the append-only MessageBus described in spec.md
// §3/§4.3: the typed, in-memory communication log scoped to one orchestrator
// dispatch.
package bus

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MsgType is the closed set of message kinds spec.md §3 names.
type MsgType string

const (
	MsgRequest        MsgType = "request"
	MsgResponse       MsgType = "response"
	MsgObservation    MsgType = "observation"
	MsgDelegate       MsgType = "delegate"
	MsgError          MsgType = "error"
	MsgDebatePosition MsgType = "debate_position"
	MsgConsensus      MsgType = "consensus"
)

// AgentMessage is one immutable entry on the bus.
type AgentMessage struct {
	ID        string
	Sender    string
	Receiver  string
	Type      MsgType
	Payload   map[string]interface{}
	Timestamp int64 // monotonically assigned sequence number, not wall-clock
	TraceID   string
}

// Confidence extracts the payload's "confidence" key as a float64, if present.
func (m AgentMessage) Confidence() (float64, bool) {
	v, ok := m.Payload["confidence"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Content extracts the payload's "content" key as a string.
func (m AgentMessage) Content() string {
	v, _ := m.Payload["content"].(string)
	return v
}

// MessageBus is an append-only, in-memory log scoped to a single dispatch.
// Lifecycle: created at dispatch start, discarded at dispatch end, never
// shared across requests or goroutines outside that one dispatch.
type MessageBus struct {
	mu       sync.RWMutex
	messages []AgentMessage
	seq      int64
}

// New creates an empty bus.
func New() *MessageBus {
	return &MessageBus{}
}

// Send appends msg, assigning it an id and sequence number. Never mutates or
// removes a previously sent message.
func (b *MessageBus) Send(sender, receiver string, typ MsgType, payload map[string]interface{}, traceID string) AgentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	msg := AgentMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Type:      typ,
		Payload:   payload,
		Timestamp: b.seq,
		TraceID:   traceID,
	}
	b.messages = append(b.messages, msg)
	return msg
}

// All returns every message in send order. Callers must not mutate the
// returned slice's elements' payload maps.
func (b *MessageBus) All() []AgentMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]AgentMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

// For returns every message addressed to receiver, in send order.
func (b *MessageBus) For(receiver string) []AgentMessage {
	return b.filter(func(m AgentMessage) bool { return m.Receiver == receiver })
}

// Observations returns every observation message, in send order.
func (b *MessageBus) Observations() []AgentMessage {
	return b.filter(func(m AgentMessage) bool { return m.Type == MsgObservation })
}

// Delegations returns every delegate message, in send order.
func (b *MessageBus) Delegations() []AgentMessage {
	return b.filter(func(m AgentMessage) bool { return m.Type == MsgDelegate })
}

// Responses returns every response message, in send order.
func (b *MessageBus) Responses() []AgentMessage {
	return b.filter(func(m AgentMessage) bool { return m.Type == MsgResponse })
}

// DebatePositions returns every debate_position message, in send order —
// carried over from the original's get_debate_messages, used by the
// negotiation engine to replay a session's history.
func (b *MessageBus) DebatePositions() []AgentMessage {
	return b.filter(func(m AgentMessage) bool { return m.Type == MsgDebatePosition })
}

func (b *MessageBus) filter(pred func(AgentMessage) bool) []AgentMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []AgentMessage
	for _, m := range b.messages {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

// ContextFor assembles a prompt-injectable block for receiver: every response
// from a sender other than receiver (each preceded by a result banner, with
// a confidence suffix when present), followed by every observation note.
// Returns "" when there is nothing to inject. Pure: repeated calls against
// the same bus state return the same string.
func (b *MessageBus) ContextFor(receiver string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out string
	for _, m := range b.messages {
		if m.Type != MsgResponse || m.Sender == receiver {
			continue
		}
		if conf, ok := m.Confidence(); ok {
			out += fmt.Sprintf("--- %s AGENT RESULTS --- (confidence: %d%%)\n", strings.ToUpper(m.Sender), int(conf*100))
		} else {
			out += fmt.Sprintf("--- %s AGENT RESULTS ---\n", strings.ToUpper(m.Sender))
		}
		out += m.Content() + "\n\n"
	}
	for _, m := range b.messages {
		if m.Type != MsgObservation {
			continue
		}
		out += "[Note] " + m.Content() + "\n"
	}
	return out
}
