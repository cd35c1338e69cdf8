package reconcile

import (
	"fmt"
)

// FatalError aborts a run before any DDL: the live schema could not be read.
type FatalError struct {
	Phase string
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("schema check aborted while reading %s: %v", e.Phase, e.Cause)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// ConfigurationError reports a model or hook setup that cannot be reconciled.
type ConfigurationError struct {
	Entity string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in entity %s: %s", e.Entity, e.Reason)
}
