package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-agent/internal/events"
	"event-agent/internal/orchestrator"
	"event-agent/internal/tool"
)

// stubTool is a scriptable tool for dispatcher tests.
type stubTool struct {
	name   string
	result *tool.Result
	err    error
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (s *stubTool) Execute(ctx context.Context, args map[string]interface{}) (*tool.Result, error) {
	return s.result, s.err
}

func TestDispatchCorrelatesByCallID(t *testing.T) {
	d := NewDispatcher([]tool.Tool{
		&stubTool{name: "search_events", result: &tool.Result{Success: true, Output: `{"events": []}`}},
	})

	calls := []orchestrator.ToolCallRequest{
		{CallID: "call_b", FunctionName: "search_events"},
		{CallID: "call_a", FunctionName: "search_events"},
	}
	results := d.Dispatch(context.Background(), calls)

	require.Len(t, results, 2)
	assert.Equal(t, "call_b", results[0].CallID)
	assert.Equal(t, "call_a", results[1].CallID)
	for _, r := range results {
		assert.Equal(t, `{"events": []}`, r.Output)
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	d := NewDispatcher([]tool.Tool{
		&stubTool{name: "search_events", result: &tool.Result{Success: true, Output: "ok"}},
	})

	results := d.Dispatch(context.Background(), []orchestrator.ToolCallRequest{
		{CallID: "call_1", FunctionName: "book_tickets"},
	})

	require.Len(t, results, 1)
	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(results[0].Output), &envelope))
	assert.Equal(t, "unknown function book_tickets", envelope["error"])
}

func TestDispatchIsolatesFailures(t *testing.T) {
	failing := &stubTool{name: "flaky", err: errors.New("boom")}
	healthy := &stubTool{name: "search_events", result: &tool.Result{Success: true, Output: "ok"}}
	d := NewDispatcher([]tool.Tool{failing, healthy})

	results := d.Dispatch(context.Background(), []orchestrator.ToolCallRequest{
		{CallID: "call_1", FunctionName: "flaky"},
		{CallID: "call_2", FunctionName: "search_events"},
	})

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Output, "boom")
	assert.Equal(t, "ok", results[1].Output)
}

// A rejected search must surface as a textual payload the orchestrator
// can relay, never as an error escaping the dispatch boundary.
func TestDispatchRelaysAPIRejection(t *testing.T) {
	apiErr := &events.APIError{StatusCode: http.StatusBadRequest, Body: "bad classification"}
	rejected := &stubTool{
		name:   "search_events",
		result: &tool.Result{Success: false, Error: apiErr.Error()},
	}
	d := NewDispatcher([]tool.Tool{rejected})

	results := d.Dispatch(context.Background(), []orchestrator.ToolCallRequest{
		{CallID: "call_1", FunctionName: "search_events"},
	})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Output, "rejected")
	assert.Contains(t, results[0].Output, "400")
}

// End to end through the real tool and client: a 400 from the event
// API becomes a relayable payload, not a fault.
func TestDispatchAgainstRejectingEventAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"fault": "invalid classification"}`))
	}))
	defer server.Close()

	client, err := events.NewClient("test-key", events.WithBaseURL(server.URL))
	require.NoError(t, err)

	d := NewDispatcher([]tool.Tool{tool.NewSearchEventsTool(client)})
	results := d.Dispatch(context.Background(), []orchestrator.ToolCallRequest{
		{CallID: "call_1", FunctionName: "search_events", RawArguments: map[string]interface{}{"keyword": "rock"}},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "call_1", results[0].CallID)
	assert.Contains(t, results[0].Output, "rejected")
}

func TestDispatchEmptyBatch(t *testing.T) {
	d := NewDispatcher(nil)
	results := d.Dispatch(context.Background(), nil)
	assert.Empty(t, results)
}

// For any batch where only some calls reference declared functions,
// dispatch still answers every call, correlated by ID, with unknown
// ones carrying the error envelope.
func TestDispatchMixedBatch(t *testing.T) {
	d := NewDispatcher([]tool.Tool{
		&stubTool{name: "search_events", result: &tool.Result{Success: true, Output: "found"}},
	})

	const n = 25
	calls := make([]orchestrator.ToolCallRequest, n)
	for i := range calls {
		name := "search_events"
		if i%3 == 0 {
			name = fmt.Sprintf("bogus_%d", i)
		}
		calls[i] = orchestrator.ToolCallRequest{
			CallID:       fmt.Sprintf("call_%d", i),
			FunctionName: name,
		}
	}

	results := d.Dispatch(context.Background(), calls)
	require.Len(t, results, n)

	byID := make(map[string]string, n)
	for _, r := range results {
		byID[r.CallID] = r.Output
	}
	require.Len(t, byID, n)

	for i, call := range calls {
		output, exists := byID[call.CallID]
		require.True(t, exists, "missing result for %s", call.CallID)
		if i%3 == 0 {
			assert.True(t, strings.Contains(output, "unknown function"), "call %d: %q", i, output)
		} else {
			assert.Equal(t, "found", output)
		}
	}
}
