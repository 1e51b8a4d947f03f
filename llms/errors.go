package llms

import (
	"fmt"
	"time"
)

// ProviderError is the component-scoped error type for this package,
// grounded on the teacher's TeamError convention.
type ProviderError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Component, e.Operation, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(component, op, msg string, err error) *ProviderError {
	return &ProviderError{Component: component, Operation: op, Message: msg, Err: err, Timestamp: time.Now()}
}
