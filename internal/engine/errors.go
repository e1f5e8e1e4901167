package engine

import "fmt"

// ValidationError reports an input outside the supported domain. The
// message always names the violated constraint and the valid range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown lookup key (location, model id).
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ComputationError reports a violated internal invariant, such as a
// non-monotonic performance curve detected at load time.
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string {
	return "computation error: " + e.Reason
}

func computationf(format string, args ...any) error {
	return &ComputationError{Reason: fmt.Sprintf(format, args...)}
}
