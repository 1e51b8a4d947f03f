package negotiation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kaziai/core/bus"
	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/store"
)

// MaxRounds bounds a negotiation session, per negotiation.py's MAX_ROUNDS.
const MaxRounds = 3

var roundLabels = map[int]string{1: "Opening", 2: "Rebuttal", 3: "Final Position"}

// Response types an agent's debate turn may take.
const (
	ResponsePosition    = "position"
	ResponseConcede     = "concede"
	ResponseCounter     = "counter"
	ResponseRequestData = "request_data"
)

// AgentPosition is one agent's stated position within one round.
type AgentPosition struct {
	AgentName    string
	ResponseType string
	Position     string
	Evidence     string
	Confidence   float64
}

// ConsensusResult is the outcome of a negotiation session.
type ConsensusResult struct {
	Reached         bool
	Position        string
	Confidence      float64
	DissentingViews []string
	RoundsTaken     int
}

// RoundEvent is emitted once per agent position within a round, for a
// caller (the orchestrator's event stream) to surface live.
type RoundEvent struct {
	Round        int
	Agent        string
	ResponseType string
	Position     string
	Confidence   float64
}

const negotiationSystemPrompt = "You are an agent in a structured debate. Respond with valid JSON only."

// NegotiationSession runs a structured, multi-round debate between the
// agents named in a Conflict.
type NegotiationSession struct {
	Conflict       Conflict
	Bus            *bus.MessageBus
	Provider       llms.Provider
	Store          store.NegotiationStore // optional; persistence is best-effort
	ConversationID *int64

	sessionID string
	positions [][]AgentPosition // one slice per round
}

// NewNegotiationSession builds a session for conflict, using provider for
// position generation and busInstance for recovering each agent's prior
// output.
func NewNegotiationSession(conflict Conflict, busInstance *bus.MessageBus, provider llms.Provider, negotiationStore store.NegotiationStore, conversationID *int64) *NegotiationSession {
	return &NegotiationSession{Conflict: conflict, Bus: busInstance, Provider: provider, Store: negotiationStore, ConversationID: conversationID}
}

// Run executes the negotiation to completion and returns the consensus
// result, emitting each round's positions to onRound as they are produced
// (onRound may be nil).
func (s *NegotiationSession) Run(ctx context.Context, onRound func(RoundEvent)) ConsensusResult {
	if s.Provider == nil {
		return ConsensusResult{Reached: false, Position: "Negotiation skipped — no LLM client", Confidence: 0.5}
	}

	if s.Store != nil {
		id, err := s.Store.CreateNegotiationSession(ctx, s.ConversationID, s.Conflict.Topic, s.Conflict.Agents)
		if err != nil {
			slog.Warn("negotiation: session creation failed", "error", err)
		} else {
			s.sessionID = id
		}
	}

	agentOutputs := s.collectAgentOutputs()

	for round := 1; round <= MaxRounds; round++ {
		positions := s.runRound(ctx, round, agentOutputs)
		s.positions = append(s.positions, positions)

		for _, p := range positions {
			if onRound != nil {
				onRound(RoundEvent{Round: round, Agent: p.AgentName, ResponseType: p.ResponseType, Position: truncate(p.Position, 500), Confidence: p.Confidence})
			}
		}

		if consensus, ok := s.checkConsensus(positions); ok {
			s.completeNegotiation(ctx, true, consensus.Position)
			return consensus
		}
	}

	return s.resolveNoConsensus(ctx)
}

func (s *NegotiationSession) collectAgentOutputs() map[string]string {
	outputs := make(map[string]string)
	agents := map[string]bool{}
	for _, a := range s.Conflict.Agents {
		agents[a] = true
	}
	for _, resp := range s.Bus.Responses() {
		if agents[resp.Sender] {
			outputs[resp.Sender] = truncate(resp.Content(), 2000)
		}
	}
	return outputs
}

// runRound gathers every agent's position concurrently within the round —
// each is an independent LLM call, merged afterward — grounded on the
// wiring decision to use errgroup for this fan-out (SPEC_FULL.md §11).
func (s *NegotiationSession) runRound(ctx context.Context, round int, agentOutputs map[string]string) []AgentPosition {
	positions := make([]AgentPosition, len(s.Conflict.Agents))

	g, gctx := errgroup.WithContext(ctx)
	for i, agentName := range s.Conflict.Agents {
		i, agentName := i, agentName
		g.Go(func() error {
			positions[i] = s.getAgentPosition(gctx, agentName, agentOutputs[agentName], round)
			return nil
		})
	}
	_ = g.Wait() // getAgentPosition never returns an error; it falls back internally

	for _, p := range positions {
		s.persistRound(ctx, round, p)
	}

	return positions
}

func (s *NegotiationSession) getAgentPosition(ctx context.Context, agentName, output string, round int) AgentPosition {
	roundLabel := roundLabels[round]
	if roundLabel == "" {
		roundLabel = "Position"
	}

	prevContext := s.previousContextFor(agentName)

	instructions := ""
	switch round {
	case 1:
		instructions = "State your position, provide evidence, and assign a confidence score."
	case 2:
		instructions = "You may CONCEDE (agree with the other agent), COUNTER (provide counter-arguments), or REQUEST_DATA (ask for more information)."
	case 3:
		instructions = "State your FINAL position clearly."
	}

	prevBlock := ""
	if prevContext != "" {
		prevBlock = "Previous debate positions:" + prevContext
	}

	prompt := fmt.Sprintf(`You are the %s agent in a structured debate about: %s

Your analysis output was:
%s

%s

This is Round %d (%s).
%s

Respond with JSON only:
{"response_type": "position|concede|counter|request_data", "position": "your position", "evidence": "supporting evidence", "confidence": 0.0-1.0}`,
		agentName, s.Conflict.Details, truncate(output, 1500), prevBlock, round, roundLabel, instructions)

	text, _, _, err := s.Provider.Generate([]llms.Message{
		{Role: "system", Content: negotiationSystemPrompt},
		{Role: "user", Content: prompt},
	}, nil)
	if err != nil {
		return AgentPosition{AgentName: agentName, ResponseType: ResponsePosition, Position: truncate(output, 500), Confidence: 0.5}
	}

	raw := stripCodeFence(strings.TrimSpace(text))
	var data struct {
		ResponseType string  `json:"response_type"`
		Position     string  `json:"position"`
		Evidence     string  `json:"evidence"`
		Confidence   float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return AgentPosition{AgentName: agentName, ResponseType: ResponsePosition, Position: truncate(output, 500), Confidence: 0.5}
	}
	if data.ResponseType == "" {
		data.ResponseType = ResponsePosition
	}
	if data.Confidence == 0 {
		data.Confidence = 0.5
	}

	return AgentPosition{AgentName: agentName, ResponseType: data.ResponseType, Position: data.Position, Evidence: data.Evidence, Confidence: data.Confidence}
}

func (s *NegotiationSession) previousContextFor(agentName string) string {
	var out strings.Builder
	for roundIdx, roundPositions := range s.positions {
		for _, p := range roundPositions {
			if p.AgentName == agentName {
				continue
			}
			out.WriteString(fmt.Sprintf("\nRound %d - %s: [%s] %s", roundIdx+1, p.AgentName, p.ResponseType, truncate(p.Position, 300)))
		}
	}
	return out.String()
}

// checkConsensus applies the three consensus rules in exact order: all
// concede, confidence convergence, then mixed concede/non-concede.
func (s *NegotiationSession) checkConsensus(positions []AgentPosition) (ConsensusResult, bool) {
	if len(positions) == 0 {
		return ConsensusResult{}, false
	}

	allConcede := true
	for _, p := range positions {
		if p.ResponseType != ResponseConcede {
			allConcede = false
			break
		}
	}
	if allConcede {
		winner := highestConfidence(positions)
		return ConsensusResult{Reached: true, Position: winner.Position, Confidence: winner.Confidence, RoundsTaken: len(s.positions)}, true
	}

	minConf, maxConf := positions[0].Confidence, positions[0].Confidence
	var sum float64
	for _, p := range positions {
		if p.Confidence < minConf {
			minConf = p.Confidence
		}
		if p.Confidence > maxConf {
			maxConf = p.Confidence
		}
		sum += p.Confidence
	}
	if maxConf-minConf <= 0.15 {
		winner := highestConfidence(positions)
		return ConsensusResult{Reached: true, Position: winner.Position, Confidence: sum / float64(len(positions)), RoundsTaken: len(s.positions)}, true
	}

	var conceding, nonConceding []AgentPosition
	for _, p := range positions {
		if p.ResponseType == ResponseConcede {
			conceding = append(conceding, p)
		} else {
			nonConceding = append(nonConceding, p)
		}
	}
	if len(conceding) > 0 && len(nonConceding) > 0 {
		winner := highestConfidence(nonConceding)
		dissenting := make([]string, 0, len(conceding))
		for _, p := range conceding {
			dissenting = append(dissenting, fmt.Sprintf("%s conceded: %s", p.AgentName, truncate(p.Position, 200)))
		}
		return ConsensusResult{Reached: true, Position: winner.Position, Confidence: winner.Confidence, DissentingViews: dissenting, RoundsTaken: len(s.positions)}, true
	}

	return ConsensusResult{}, false
}

func (s *NegotiationSession) resolveNoConsensus(ctx context.Context) ConsensusResult {
	if len(s.positions) == 0 {
		return ConsensusResult{Reached: false, Position: "No positions recorded", Confidence: 0.5}
	}

	lastRound := s.positions[len(s.positions)-1]
	winner := highestConfidence(lastRound)

	var dissenters []string
	for _, p := range lastRound {
		if p.AgentName != winner.AgentName {
			dissenters = append(dissenters, fmt.Sprintf("%s: %s", p.AgentName, truncate(p.Position, 200)))
		}
	}

	result := ConsensusResult{Reached: false, Position: winner.Position, Confidence: winner.Confidence, DissentingViews: dissenters, RoundsTaken: len(s.positions)}
	s.completeNegotiation(ctx, false, winner.Position)
	return result
}

func highestConfidence(positions []AgentPosition) AgentPosition {
	winner := positions[0]
	for _, p := range positions[1:] {
		if p.Confidence > winner.Confidence {
			winner = p
		}
	}
	return winner
}

func (s *NegotiationSession) persistRound(ctx context.Context, round int, p AgentPosition) {
	if s.Store == nil || s.sessionID == "" {
		return
	}
	if err := s.Store.AddNegotiationRound(ctx, store.NegotiationRoundRecord{
		SessionID: s.sessionID, Round: round, AgentName: p.AgentName,
		ResponseType: p.ResponseType, Position: p.Position, Evidence: p.Evidence, Confidence: p.Confidence,
	}); err != nil {
		slog.Warn("negotiation: round persistence failed", "error", err)
	}
}

func (s *NegotiationSession) completeNegotiation(ctx context.Context, reached bool, finalPosition string) {
	if s.Store == nil || s.sessionID == "" {
		return
	}
	if err := s.Store.CompleteNegotiation(ctx, s.sessionID, reached, finalPosition); err != nil {
		slog.Warn("negotiation: completion persistence failed", "error", err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
