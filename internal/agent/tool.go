package agent

import "context"

// MaxToolOutputLength is the maximum length of tool output recorded in run
// actions. Full output is still replayed to the model; only the recorded
// transcript is truncated.
const MaxToolOutputLength = 50000

// Param describes a single tool parameter for the model-facing schema.
type Param struct {
	// Type is the JSON schema type ("string", "integer", "array", ...).
	Type string

	// Description explains the parameter to the model.
	Description string

	// Required marks parameters the model must supply.
	Required bool
}

// Tool is a named local action the model may request during a run.
type Tool interface {
	// Name returns the tool identifier the model uses in function calls.
	Name() string

	// Description returns a natural-language description for the model.
	Description() string

	// Parameters returns the input schema keyed by parameter name.
	Parameters() map[string]Param

	// Execute runs the tool with the arguments supplied by the model.
	// The returned map is replayed to the model as the function response.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Descriptor is the schema-only view of a tool handed to the model session.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]Param
}

func truncateOutput(s string) string {
	if len(s) <= MaxToolOutputLength {
		return s
	}
	return s[:MaxToolOutputLength] + "\n[output truncated]"
}
