package orchestrator

import (
	"fmt"
	"time"
)

// OrchestratorError is this package's component-scoped error type.
type OrchestratorError struct {
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *OrchestratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestrator[%s]: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("orchestrator[%s]: %s", e.Operation, e.Message)
}

func (e *OrchestratorError) Unwrap() error { return e.Err }
