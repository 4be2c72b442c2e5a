package diag

import "fmt"

// FatalError is the single error type the pipeline raises. Every fatal
// condition in §7's taxonomy (structural, infeasible, solver, resource,
// assertion) is reported this way; there is no local recovery path, only
// propagation to the top-level reporter and process termination.
type FatalError struct {
	Code    string
	Message string
	Notes   []string
}

func (e *FatalError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a FatalError with the given code and formatted message.
func New(code, format string, args ...any) *FatalError {
	return &FatalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithNote appends a contextual note and returns the same error, so call
// sites can chain additional detail without losing the original code.
func (e *FatalError) WithNote(note string) *FatalError {
	e.Notes = append(e.Notes, note)
	return e
}
