package injection

import "fmt"

// Kind classifies injection failures.
type Kind string

const (
	// KindMissingContent means a custom section's content could not be
	// fetched and fallback was disabled.
	KindMissingContent Kind = "MISSING_CONTENT"
)

// Error wraps an injection failure with its classification and the
// section that caused it.
type Error struct {
	Kind    Kind
	Section string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("injection failed (%s) for section %q: %v", e.Kind, e.Section, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
