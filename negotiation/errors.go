package negotiation

import (
	"fmt"
	"time"
)

// NegotiationError is this package's component-scoped error type.
type NegotiationError struct {
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *NegotiationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("negotiation[%s]: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("negotiation[%s]: %s", e.Operation, e.Message)
}

func (e *NegotiationError) Unwrap() error { return e.Err }
