package runtime

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the taxonomy in spec.md §7, comparable via errors.Is.
var (
	ErrMaxStepsExceeded = errors.New("runtime: agent reached its step bound without a final answer")
	ErrCancelled        = errors.New("runtime: agent run was cancelled")
)

// AgentError is the component-scoped error type for this package, following
// the teacher's TeamError convention (team/team.go).
type AgentError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runtime[%s.%s]: %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("runtime[%s.%s]: %s", e.Component, e.Operation, e.Message)
}

func (e *AgentError) Unwrap() error { return e.Err }

func newAgentError(component, operation, message string, err error) *AgentError {
	return &AgentError{Component: component, Operation: operation, Message: message, Err: err, Timestamp: time.Now()}
}
