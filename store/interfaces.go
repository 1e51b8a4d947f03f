// Package store defines the persistence interfaces spec.md §6 names for
// traces, goals, and negotiation sessions, plus concrete backends selectable
// by configuration (sqlite, mysql, postgres).
package store

import "context"

// TraceStatus is the closed set spec.md §3/§7 names for AgentTrace.Status.
type TraceStatus string

const (
	TraceRunning   TraceStatus = "running"
	TraceCompleted TraceStatus = "completed"
	TraceFailed    TraceStatus = "failed"
	TraceCancelled TraceStatus = "cancelled"
	TraceMaxSteps  TraceStatus = "max_steps"
)

// TraceRecord is a row from the trace store, read-only once loaded.
type TraceRecord struct {
	ID             string
	UserID         int64
	ConversationID *int64
	AgentName      string
	Intent         string
	Task           string
	Status         TraceStatus
	Output         string
	StepCount      int
	ToolCount      int
	Feedback       *string
	StartedAt      int64
	CompletedAt    *int64
}

// TraceStepRecord is one persisted ReAct step.
type TraceStepRecord struct {
	TraceID     string
	StepNumber  int
	Thought     string
	ToolName    string
	ToolArgs    map[string]interface{}
	ToolResult  map[string]interface{}
	Observation string
	Success     bool
}

// TraceStore is the trace persistence contract named in spec.md §6.
type TraceStore interface {
	CreateTrace(ctx context.Context, userID int64, conversationID *int64, agentName, intent, task string) (traceID string, err error)
	AddTraceStep(ctx context.Context, step TraceStepRecord) error
	CompleteTrace(ctx context.Context, traceID string, status TraceStatus, output string, stepCount, toolCount int) error
	GetTraces(ctx context.Context, userID int64, limit int) ([]TraceRecord, error)
	GetTraceSteps(ctx context.Context, traceID string) ([]TraceStepRecord, error)
	SetTraceFeedback(ctx context.Context, traceID string, userID int64, rating string) error
}

// GoalStatus is the closed set spec.md §3 names for Goal.Status.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalSuggested GoalStatus = "suggested"
	GoalCompleted GoalStatus = "completed"
	GoalDismissed GoalStatus = "dismissed"
)

// StepStatus is the closed set spec.md §3 names for GoalStep.Status.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// GoalRecord is a row from the goal store.
type GoalRecord struct {
	ID          string
	UserID      int64
	Title       string
	Description string
	Status      GoalStatus
	Origin      string // "user" | "agent_suggested"
	TriggerType *string
}

// GoalStepRecord is one ordered step of a goal.
type GoalStepRecord struct {
	ID          string
	GoalID      string
	StepNumber  int
	Title       string
	Description string
	AgentName   string
	Status      StepStatus
	Output      string
	TraceID     *string
}

// GoalStore is the goal persistence contract named in spec.md §6.
type GoalStore interface {
	CreateGoal(ctx context.Context, userID int64, title, description, origin string) (goalID string, err error)
	AddGoalStep(ctx context.Context, step GoalStepRecord) (stepID string, err error)
	GetGoalSteps(ctx context.Context, goalID string) ([]GoalStepRecord, error)
	UpdateGoalStep(ctx context.Context, step GoalStepRecord) error
	GetNextPendingStep(ctx context.Context, goalID string) (*GoalStepRecord, error)
	UpdateGoalStatus(ctx context.Context, goalID string, status GoalStatus) error
	GetGoal(ctx context.Context, goalID string) (*GoalRecord, error)
	// ShiftStepNumbers increments the step_number of every pending step in
	// goalID whose number is >= fromNumber, making room for an inserted step.
	ShiftStepNumbers(ctx context.Context, goalID string, fromNumber int) error
}

// NegotiationRoundRecord is one persisted round of debate.
type NegotiationRoundRecord struct {
	SessionID    string
	Round        int
	AgentName    string
	ResponseType string
	Position     string
	Evidence     string
	Confidence   float64
}

// NegotiationStore is the negotiation persistence contract named in
// spec.md §6.
type NegotiationStore interface {
	CreateNegotiationSession(ctx context.Context, conversationID *int64, topic string, agents []string) (sessionID string, err error)
	AddNegotiationRound(ctx context.Context, round NegotiationRoundRecord) error
	CompleteNegotiation(ctx context.Context, sessionID string, consensusReached bool, finalPosition string) error
}
