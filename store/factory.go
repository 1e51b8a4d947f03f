package store

import "fmt"

// Backend bundles the three persistence contracts this module's concrete
// stores satisfy together, so callers can construct one value instead of
// three.
type Backend interface {
	TraceStore
	GoalStore
	NegotiationStore
}

// ErrUnknownDriver is returned by cmd/kaziaid's driver selection switch when
// asked for an unregistered driver name.
var ErrUnknownDriver = fmt.Errorf("store: unknown driver")
