package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultMaxTurns bounds the conversation when no limit is configured.
// Each turn is one model call; the bound prevents runaway tool-call loops.
const DefaultMaxTurns = 10

// Logger receives structured progress events from the loop.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Action records one executed tool call for the run transcript.
type Action struct {
	Tool   string `json:"tool"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Failed bool   `json:"failed,omitempty"`
}

// Result is the terminal outcome of a run.
type Result struct {
	// Text is the model's final free-text response.
	Text string

	// Turns is the number of model calls consumed.
	Turns int

	// Actions lists every executed tool call in dispatch order.
	Actions []Action
}

// Runner drives the tool-invocation loop: it sends the prompt to the model
// session, dispatches each function-call request to the registry in the
// order emitted, replays the results, and repeats until the model produces a
// final text response or a terminal error occurs.
type Runner struct {
	registry *Registry
	maxTurns int
	logger   Logger
}

// NewRunner creates a runner over the given registry. maxTurns <= 0 selects
// DefaultMaxTurns.
func NewRunner(registry *Registry, maxTurns int, logger Logger) *Runner {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Runner{registry: registry, maxTurns: maxTurns, logger: logger}
}

// Run executes the loop against a fresh session. Terminal conditions are a
// final text response, a backend failure, an unknown tool request, context
// cancellation, or the turn bound.
//
// Tool execution failures are not terminal: they are replayed into the
// conversation as failed results so the model can adapt. This policy is
// applied uniformly to every registered tool.
func (r *Runner) Run(ctx context.Context, session Session, prompt string) (Result, error) {
	var actions []Action

	reply, err := session.Send(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("model call: %w", err)
	}

	for turn := 1; ; turn++ {
		if len(reply.Calls) == 0 {
			return Result{Text: reply.Text, Turns: turn, Actions: actions}, nil
		}

		results := make([]CallResult, 0, len(reply.Calls))
		for _, call := range reply.Calls {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}

			tool, ok := r.registry.Lookup(call.Name)
			if !ok {
				return Result{}, &UnknownToolError{Name: call.Name, Available: r.registry.Names()}
			}

			result := CallResult{Call: call}
			output, execErr := tool.Execute(ctx, call.Args)
			if execErr != nil {
				result.Err = execErr.Error()
				if r.logger != nil {
					r.logger.LogWarning(ctx, "tool execution failed", map[string]interface{}{
						"tool":  call.Name,
						"error": execErr.Error(),
					})
				}
			} else {
				result.Output = output
			}
			results = append(results, result)
			actions = append(actions, toAction(result))
		}

		if turn >= r.maxTurns {
			return Result{}, &LoopExceededError{MaxTurns: r.maxTurns}
		}

		if r.logger != nil {
			r.logger.LogInfo(ctx, "replaying tool results", map[string]interface{}{
				"turn":  turn,
				"calls": len(results),
			})
		}

		reply, err = session.Reply(ctx, results)
		if err != nil {
			return Result{}, fmt.Errorf("model call: %w", err)
		}
	}
}

func toAction(result CallResult) Action {
	output := result.Err
	if !result.Failed() {
		if encoded, err := json.Marshal(result.Output); err == nil {
			output = string(encoded)
		}
	}

	input := ""
	if encoded, err := json.Marshal(result.Call.Args); err == nil {
		input = string(encoded)
	}

	return Action{
		Tool:   result.Call.Name,
		Input:  truncateOutput(input),
		Output: truncateOutput(output),
		Failed: result.Failed(),
	}
}
