package agent

import "fmt"

// UnknownToolError indicates the model requested a tool name absent from the
// registry. This is a contract violation between model and registry and is
// fatal to the run; the loop never guesses or silently skips.
type UnknownToolError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("model requested unknown tool %q (available: %v)", e.Name, e.Available)
}

// LoopExceededError indicates the run consumed more model turns than the
// configured maximum without producing a final response.
type LoopExceededError struct {
	MaxTurns int
}

// Error implements the error interface.
func (e *LoopExceededError) Error() string {
	return fmt.Sprintf("tool-invocation loop exceeded %d turns without a final response", e.MaxTurns)
}
