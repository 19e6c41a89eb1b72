// Package agent drives one conversation turn against the remote
// orchestrator: polling run state and dispatching requested tool calls.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"event-agent/internal/orchestrator"
	"event-agent/internal/tool"
)

// Dispatcher resolves pending tool calls against the registered tools.
type Dispatcher struct {
	tools  map[string]tool.Tool
	logger *zap.Logger
}

// DispatcherOption is a functional option for configuring Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger used for per-call debug output.
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a Dispatcher over the given tools.
func NewDispatcher(tools []tool.Tool, opts ...DispatcherOption) *Dispatcher {
	toolMap := make(map[string]tool.Tool)
	for _, t := range tools {
		toolMap[t.Name()] = t
	}

	d := &Dispatcher{
		tools:  toolMap,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves a batch of pending calls and returns exactly one
// result per call, correlated by call ID. Calls are independent reads
// and run concurrently; a failure in one never affects another, and no
// failure escapes as an error. The orchestrator correlates results by
// ID, not order, but one slot per input keeps the batch complete.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []orchestrator.ToolCallRequest) []orchestrator.ToolCallResult {
	results := make([]orchestrator.ToolCallResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call orchestrator.ToolCallRequest) {
			defer wg.Done()
			results[i] = orchestrator.ToolCallResult{
				CallID: call.CallID,
				Output: d.executeCall(ctx, call),
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

// executeCall runs a single tool call and renders its output payload.
// Unknown functions and tool failures become textual payloads the
// orchestrator can relay to the user.
func (d *Dispatcher) executeCall(ctx context.Context, call orchestrator.ToolCallRequest) string {
	t, exists := d.tools[call.FunctionName]
	if !exists {
		d.logger.Debug("unknown function requested", zap.String("function", call.FunctionName))
		return errorEnvelope(fmt.Sprintf("unknown function %s", call.FunctionName))
	}

	d.logger.Debug("executing tool call",
		zap.String("call_id", call.CallID),
		zap.String("function", call.FunctionName))

	result, err := t.Execute(ctx, call.RawArguments)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("tool execution failed: %v", err))
	}
	if !result.Success {
		return result.Error
	}
	return result.Output
}

// errorEnvelope renders a structured error payload.
func errorEnvelope(message string) string {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, message)
	}
	return string(payload)
}
