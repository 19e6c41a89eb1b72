package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"event-agent/internal/orchestrator"
	"event-agent/internal/tool"
)

// TestProperty_DispatchBatchCompleteness checks the batch contract:
// every pending call gets exactly one result carrying its call ID, no
// matter how many calls reference undeclared functions, and declared
// calls are unaffected by undeclared neighbors.
func TestProperty_DispatchBatchCompleteness(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("one result per call, correlated by ID", prop.ForAll(
		func(valid []bool) bool {
			d := NewDispatcher([]tool.Tool{
				&stubTool{name: "search_events", result: &tool.Result{Success: true, Output: "found"}},
			})

			calls := make([]orchestrator.ToolCallRequest, len(valid))
			for i, isValid := range valid {
				name := "search_events"
				if !isValid {
					name = "undeclared_tool"
				}
				calls[i] = orchestrator.ToolCallRequest{
					CallID:       fmt.Sprintf("call_%d", i),
					FunctionName: name,
				}
			}

			results := d.Dispatch(context.Background(), calls)
			if len(results) != len(calls) {
				return false
			}

			byID := make(map[string]string, len(results))
			for _, r := range results {
				byID[r.CallID] = r.Output
			}
			if len(byID) != len(calls) {
				return false
			}

			for i, call := range calls {
				output, exists := byID[call.CallID]
				if !exists {
					return false
				}
				if valid[i] && output != "found" {
					return false
				}
				if !valid[i] && !strings.Contains(output, "unknown function") {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
