package gemini

import (
	"context"
	"sort"

	"github.com/lmchoi/nitpicker/internal/agent"
)

// ChatSession is one conversation with the model. It accumulates history so
// each call carries all prior turns and tool results, and translates between
// the agent's provider-neutral types and the Gemini wire format.
//
// A session is single-use: create one per review run.
type ChatSession struct {
	client  *HTTPClient
	tools   []Tool
	options CallOptions
	history []Content
}

// NewChatSession binds tool descriptors to a fresh session.
func NewChatSession(client *HTTPClient, descriptors []agent.Descriptor, options CallOptions) *ChatSession {
	return &ChatSession{
		client:  client,
		tools:   declareTools(descriptors),
		options: options,
	}
}

// Send starts the conversation with the rendered prompt.
func (s *ChatSession) Send(ctx context.Context, prompt string) (agent.Reply, error) {
	s.history = append(s.history, Content{
		Role:  "user",
		Parts: []Part{{Text: prompt}},
	})
	return s.generate(ctx)
}

// Reply feeds tool results back into the conversation.
func (s *ChatSession) Reply(ctx context.Context, results []agent.CallResult) (agent.Reply, error) {
	parts := make([]Part, 0, len(results))
	for _, result := range results {
		response := result.Output
		if result.Failed() {
			response = map[string]any{"error": result.Err}
		}
		parts = append(parts, Part{
			FunctionResponse: &FunctionResponse{
				Name:     result.Call.Name,
				Response: response,
			},
		})
	}
	s.history = append(s.history, Content{Role: "user", Parts: parts})
	return s.generate(ctx)
}

func (s *ChatSession) generate(ctx context.Context) (agent.Reply, error) {
	resp, err := s.client.GenerateContent(ctx, s.history, s.tools, s.options)
	if err != nil {
		return agent.Reply{}, err
	}

	// Record the model turn verbatim so later calls replay the exact
	// function calls the model emitted.
	modelParts := make([]Part, 0, len(resp.FunctionCalls)+1)
	if resp.Text != "" {
		modelParts = append(modelParts, Part{Text: resp.Text})
	}
	for i := range resp.FunctionCalls {
		call := resp.FunctionCalls[i]
		modelParts = append(modelParts, Part{FunctionCall: &call})
	}
	s.history = append(s.history, Content{Role: "model", Parts: modelParts})

	reply := agent.Reply{Text: resp.Text}
	for _, call := range resp.FunctionCalls {
		reply.Calls = append(reply.Calls, agent.Call{Name: call.Name, Args: call.Args})
	}
	return reply, nil
}

// History returns a copy of the accumulated conversation, for tests and
// transcripts.
func (s *ChatSession) History() []Content {
	out := make([]Content, len(s.history))
	copy(out, s.history)
	return out
}

// declareTools converts schema-only descriptors to Gemini function
// declarations.
func declareTools(descriptors []agent.Descriptor) []Tool {
	if len(descriptors) == 0 {
		return nil
	}

	decls := make([]FunctionDeclaration, 0, len(descriptors))
	for _, desc := range descriptors {
		decl := FunctionDeclaration{
			Name:        desc.Name,
			Description: desc.Description,
		}
		if len(desc.Parameters) > 0 {
			schema := &Schema{
				Type:       "object",
				Properties: make(map[string]*Schema, len(desc.Parameters)),
			}
			for name, param := range desc.Parameters {
				schema.Properties[name] = &Schema{
					Type:        param.Type,
					Description: param.Description,
				}
			}
			for _, name := range sortedRequired(desc.Parameters) {
				schema.Required = append(schema.Required, name)
			}
			decl.Parameters = schema
		}
		decls = append(decls, decl)
	}

	return []Tool{{FunctionDeclarations: decls}}
}

// sortedRequired returns required parameter names in stable order so request
// payloads are deterministic.
func sortedRequired(params map[string]agent.Param) []string {
	var required []string
	for name, param := range params {
		if param.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// Compile-time interface check
var _ agent.Session = (*ChatSession)(nil)
