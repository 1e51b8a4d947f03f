package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kaziai/core/store"
)

// Store implements store.TraceStore, store.GoalStore, and
// store.NegotiationStore against any database/sql driver, given a Dialect
// for placeholder syntax. The sqlite/mysql/postgres packages each just open
// their driver and wrap it in one of these.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open wraps an already-open *sql.DB, creating the schema if absent.
func Open(db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.Exec(dialect.rebind(schema)); err != nil {
		return nil, fmt.Errorf("sqlstore: creating schema: %w", err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// ----------------------------------------------------------------------
// TraceStore
// ----------------------------------------------------------------------

func (s *Store) CreateTrace(ctx context.Context, userID int64, conversationID *int64, agentName, intent, task string) (string, error) {
	id := uuid.NewString()
	task = truncate(task, 2000)
	_, err := s.exec(ctx,
		`INSERT INTO traces (id, user_id, conversation_id, agent_name, intent, task, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, conversationID, agentName, intent, task, string(store.TraceRunning), time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("sqlstore: create trace: %w", err)
	}
	return id, nil
}

func (s *Store) AddTraceStep(ctx context.Context, step store.TraceStepRecord) error {
	args, err := json.Marshal(step.ToolArgs)
	if err != nil {
		return fmt.Errorf("sqlstore: marshal tool args: %w", err)
	}
	result, err := json.Marshal(step.ToolResult)
	if err != nil {
		return fmt.Errorf("sqlstore: marshal tool result: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO trace_steps (trace_id, step_number, thought, tool_name, tool_args, tool_result, observation, success)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		step.TraceID, step.StepNumber, step.Thought, step.ToolName, string(args), string(result), step.Observation, boolToInt(step.Success))
	if err != nil {
		return fmt.Errorf("sqlstore: add trace step: %w", err)
	}
	return nil
}

func (s *Store) CompleteTrace(ctx context.Context, traceID string, status store.TraceStatus, output string, stepCount, toolCount int) error {
	_, err := s.exec(ctx,
		`UPDATE traces SET status = ?, output = ?, step_count = ?, tool_count = ?, completed_at = ? WHERE id = ?`,
		string(status), truncate(output, 4000), stepCount, toolCount, time.Now().Unix(), traceID)
	if err != nil {
		return fmt.Errorf("sqlstore: complete trace: %w", err)
	}
	return nil
}

func (s *Store) GetTraces(ctx context.Context, userID int64, limit int) ([]store.TraceRecord, error) {
	rows, err := s.query(ctx,
		`SELECT id, user_id, conversation_id, agent_name, intent, task, status, output, step_count, tool_count, feedback, started_at, completed_at
		 FROM traces WHERE user_id = ? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get traces: %w", err)
	}
	defer rows.Close()

	var out []store.TraceRecord
	for rows.Next() {
		var r store.TraceRecord
		var status string
		if err := rows.Scan(&r.ID, &r.UserID, &r.ConversationID, &r.AgentName, &r.Intent, &r.Task,
			&status, &r.Output, &r.StepCount, &r.ToolCount, &r.Feedback, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan trace: %w", err)
		}
		r.Status = store.TraceStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetTraceSteps(ctx context.Context, traceID string) ([]store.TraceStepRecord, error) {
	rows, err := s.query(ctx,
		`SELECT trace_id, step_number, thought, tool_name, tool_args, tool_result, observation, success
		 FROM trace_steps WHERE trace_id = ? ORDER BY step_number ASC`, traceID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get trace steps: %w", err)
	}
	defer rows.Close()

	var out []store.TraceStepRecord
	for rows.Next() {
		var r store.TraceStepRecord
		var args, result string
		var success int
		if err := rows.Scan(&r.TraceID, &r.StepNumber, &r.Thought, &r.ToolName, &args, &result, &r.Observation, &success); err != nil {
			return nil, fmt.Errorf("sqlstore: scan trace step: %w", err)
		}
		_ = json.Unmarshal([]byte(args), &r.ToolArgs)
		_ = json.Unmarshal([]byte(result), &r.ToolResult)
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetTraceFeedback(ctx context.Context, traceID string, userID int64, rating string) error {
	res, err := s.exec(ctx, `UPDATE traces SET feedback = ? WHERE id = ? AND user_id = ?`, rating, traceID, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: set feedback: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("sqlstore: trace %q not found for user %d", traceID, userID)
	}
	return nil
}

// ----------------------------------------------------------------------
// GoalStore
// ----------------------------------------------------------------------

func (s *Store) CreateGoal(ctx context.Context, userID int64, title, description, origin string) (string, error) {
	id := uuid.NewString()
	_, err := s.exec(ctx,
		`INSERT INTO goals (id, user_id, title, description, status, origin) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, title, description, string(store.GoalActive), origin)
	if err != nil {
		return "", fmt.Errorf("sqlstore: create goal: %w", err)
	}
	return id, nil
}

func (s *Store) AddGoalStep(ctx context.Context, step store.GoalStepRecord) (string, error) {
	id := uuid.NewString()
	_, err := s.exec(ctx,
		`INSERT INTO goal_steps (id, goal_id, step_number, title, description, agent_name, status, output, trace_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, step.GoalID, step.StepNumber, step.Title, step.Description, step.AgentName, string(step.Status), step.Output, step.TraceID)
	if err != nil {
		return "", fmt.Errorf("sqlstore: add goal step: %w", err)
	}
	return id, nil
}

func (s *Store) GetGoalSteps(ctx context.Context, goalID string) ([]store.GoalStepRecord, error) {
	rows, err := s.query(ctx,
		`SELECT id, goal_id, step_number, title, description, agent_name, status, output, trace_id
		 FROM goal_steps WHERE goal_id = ? ORDER BY step_number ASC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get goal steps: %w", err)
	}
	defer rows.Close()

	var out []store.GoalStepRecord
	for rows.Next() {
		var r store.GoalStepRecord
		var status string
		if err := rows.Scan(&r.ID, &r.GoalID, &r.StepNumber, &r.Title, &r.Description, &r.AgentName, &status, &r.Output, &r.TraceID); err != nil {
			return nil, fmt.Errorf("sqlstore: scan goal step: %w", err)
		}
		r.Status = store.StepStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoalStep(ctx context.Context, step store.GoalStepRecord) error {
	_, err := s.exec(ctx,
		`UPDATE goal_steps SET title = ?, description = ?, agent_name = ?, status = ?, output = ?, trace_id = ? WHERE id = ?`,
		step.Title, step.Description, step.AgentName, string(step.Status), step.Output, step.TraceID, step.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: update goal step: %w", err)
	}
	return nil
}

func (s *Store) GetNextPendingStep(ctx context.Context, goalID string) (*store.GoalStepRecord, error) {
	row := s.queryRow(ctx,
		`SELECT id, goal_id, step_number, title, description, agent_name, status, output, trace_id
		 FROM goal_steps WHERE goal_id = ? AND status = ? ORDER BY step_number ASC LIMIT 1`,
		goalID, string(store.StepPending))

	var r store.GoalStepRecord
	var status string
	if err := row.Scan(&r.ID, &r.GoalID, &r.StepNumber, &r.Title, &r.Description, &r.AgentName, &status, &r.Output, &r.TraceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlstore: get next pending step: %w", err)
	}
	r.Status = store.StepStatus(status)
	return &r, nil
}

func (s *Store) UpdateGoalStatus(ctx context.Context, goalID string, status store.GoalStatus) error {
	_, err := s.exec(ctx, `UPDATE goals SET status = ? WHERE id = ?`, string(status), goalID)
	if err != nil {
		return fmt.Errorf("sqlstore: update goal status: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, goalID string) (*store.GoalRecord, error) {
	row := s.queryRow(ctx,
		`SELECT id, user_id, title, description, status, origin, trigger_type FROM goals WHERE id = ?`, goalID)

	var r store.GoalRecord
	var status string
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &status, &r.Origin, &r.TriggerType); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sqlstore: goal %q not found", goalID)
		}
		return nil, fmt.Errorf("sqlstore: get goal: %w", err)
	}
	r.Status = store.GoalStatus(status)
	return &r, nil
}

func (s *Store) ShiftStepNumbers(ctx context.Context, goalID string, fromNumber int) error {
	_, err := s.exec(ctx,
		`UPDATE goal_steps SET step_number = step_number + 1 WHERE goal_id = ? AND status = ? AND step_number >= ?`,
		goalID, string(store.StepPending), fromNumber)
	if err != nil {
		return fmt.Errorf("sqlstore: shift step numbers: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------------
// NegotiationStore
// ----------------------------------------------------------------------

func (s *Store) CreateNegotiationSession(ctx context.Context, conversationID *int64, topic string, agents []string) (string, error) {
	id := uuid.NewString()
	agentsJSON, err := json.Marshal(agents)
	if err != nil {
		return "", fmt.Errorf("sqlstore: marshal agents: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO negotiation_sessions (id, conversation_id, topic, agents) VALUES (?, ?, ?, ?)`,
		id, conversationID, topic, string(agentsJSON))
	if err != nil {
		return "", fmt.Errorf("sqlstore: create negotiation session: %w", err)
	}
	return id, nil
}

func (s *Store) AddNegotiationRound(ctx context.Context, round store.NegotiationRoundRecord) error {
	_, err := s.exec(ctx,
		`INSERT INTO negotiation_rounds (session_id, round, agent_name, response_type, position, evidence, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		round.SessionID, round.Round, round.AgentName, round.ResponseType, round.Position, round.Evidence, round.Confidence)
	if err != nil {
		return fmt.Errorf("sqlstore: add negotiation round: %w", err)
	}
	return nil
}

func (s *Store) CompleteNegotiation(ctx context.Context, sessionID string, consensusReached bool, finalPosition string) error {
	_, err := s.exec(ctx,
		`UPDATE negotiation_sessions SET consensus_reached = ?, final_position = ? WHERE id = ?`,
		boolToInt(consensusReached), finalPosition, sessionID)
	if err != nil {
		return fmt.Errorf("sqlstore: complete negotiation: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
