package agent

import "context"

// Call is a structured function-call request emitted by the model.
type Call struct {
	// Name references a tool in the active registry.
	Name string

	// Args is the argument mapping supplied by the model.
	Args map[string]any
}

// CallResult is the outcome of executing one Call, replayed to the model as
// conversational context before the next turn.
type CallResult struct {
	Call Call

	// Output is the function response on success.
	Output map[string]any

	// Err carries the failure description when the handler failed. Failed
	// executions are reported back to the model, not swallowed, so it can
	// retry or surface the failure in its final text.
	Err string
}

// Failed reports whether the tool execution failed.
func (r CallResult) Failed() bool {
	return r.Err != ""
}

// Reply is one model response: either final text, or one or more function
// calls (in the order the model emitted them), or both.
type Reply struct {
	Text  string
	Calls []Call
}

// Session is one conversational exchange with the model backend. The session
// accumulates history: every Send or Reply includes all prior turns so the
// model can complete multi-step reasoning.
type Session interface {
	// Send starts the conversation with the rendered prompt and the tool
	// schemas already bound to the session.
	Send(ctx context.Context, prompt string) (Reply, error)

	// Reply feeds tool results back into the conversation and returns the
	// model's next response.
	Reply(ctx context.Context, results []CallResult) (Reply, error)
}
