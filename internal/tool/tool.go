// Package tool defines the Tool interface and the event search tool
// exposed to the orchestrator.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result represents the result of executing a tool.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Tool defines the interface for capabilities the orchestrator can invoke.
// Each tool has a name, description, parameter schema, and an Execute method.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Parameters returns a JSON Schema object describing the tool's input
	// parameters.
	Parameters() map[string]interface{}

	// Execute runs the tool with the provided arguments and returns the
	// result. Invocation failures are reported in the Result, not as an
	// error; a non-nil error means the tool itself is broken.
	Execute(ctx context.Context, args map[string]interface{}) (*Result, error)
}

// ValidateSchema checks that a tool's parameter schema serializes to a
// valid JSON object. The orchestrator silently rejects malformed
// schemas, which would otherwise only surface as confusing downstream
// errors, so this runs once at startup.
func ValidateSchema(t Tool) error {
	data, err := json.Marshal(t.Parameters())
	if err != nil {
		return fmt.Errorf("tool %q: parameter schema does not serialize: %w", t.Name(), err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("tool %q: parameter schema is not a JSON object: %w", t.Name(), err)
	}
	if typ, _ := decoded["type"].(string); typ != "object" {
		return fmt.Errorf("tool %q: parameter schema root must have type \"object\"", t.Name())
	}
	return nil
}
