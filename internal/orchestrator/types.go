// Package orchestrator defines the remote conversation-orchestrator
// abstraction and its REST client.
package orchestrator

import "context"

// RunStatus is a remote-provided run state.
type RunStatus string

// Run states reported by the orchestrator.
const (
	StatusQueued         RunStatus = "queued"
	StatusInProgress     RunStatus = "in_progress"
	StatusRequiresAction RunStatus = "requires_action"
	StatusCompleted      RunStatus = "completed"
	StatusFailed         RunStatus = "failed"
	StatusCancelled      RunStatus = "cancelled"
	StatusExpired        RunStatus = "expired"
)

// Terminal reports whether the run has finished for good.
// RequiresAction is not terminal: the run resumes once tool outputs
// are submitted.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Settled reports whether polling should stop: either the run is
// terminal or it is waiting on tool outputs.
func (s RunStatus) Settled() bool {
	return s.Terminal() || s == StatusRequiresAction
}

// ToolCallRequest is one pending function invocation requested by the
// orchestrator. CallID is opaque and correlates to exactly one output;
// RawArguments is the decoded argument object as sent by the model and
// may be missing fields or carry wrong types.
type ToolCallRequest struct {
	CallID       string
	FunctionName string
	RawArguments map[string]interface{}
}

// ToolCallResult is the host's answer to one tool call. Output is a
// serialized JSON payload on success or a textual error envelope.
type ToolCallResult struct {
	CallID string
	Output string
}

// Run is a snapshot of one orchestrator-side execution attempt.
type Run struct {
	ID           string
	ThreadID     string
	Status       RunStatus
	PendingCalls []ToolCallRequest
	LastError    string
}

// Message is one entry of a thread's history.
type Message struct {
	Role    string
	Text    string
	FileIDs []string
}

// Service is the orchestrator collaborator as seen by the rest of the
// application. It is an interface so the poller and dispatcher can be
// driven against a deterministic stub in tests.
type Service interface {
	// CreateThread starts a new conversation thread and returns its ID.
	CreateThread(ctx context.Context) (string, error)

	// AddUserMessage appends a user message to the thread.
	AddUserMessage(ctx context.Context, threadID, text string) error

	// CreateRun starts processing the thread with the given assistant.
	CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error)

	// GetRun fetches the current snapshot of a run.
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// SubmitToolOutputs feeds a complete batch of tool results back into
	// a run that is waiting on them. Partial batches stall the run and
	// must never be submitted.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolCallResult) (*Run, error)

	// ListMessages returns the thread's messages, newest first.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)

	// GetFileContent downloads a file generated during a run.
	GetFileContent(ctx context.Context, fileID string) ([]byte, error)
}
