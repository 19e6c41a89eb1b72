package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"event-agent/internal/orchestrator"
	"event-agent/internal/tool"
)

// DefaultMaxResumes bounds how many requires_action rounds one turn
// may go through before being abandoned.
const DefaultMaxResumes = 10

// ErrMaxResumesExceeded is returned when a run keeps requesting tool
// calls without ever completing.
var ErrMaxResumesExceeded = errors.New("max tool resumptions exceeded")

// RunFailedError reports a run that ended in a terminal failure state.
// The remote error message is carried verbatim; the conversation
// itself continues.
type RunFailedError struct {
	Status  orchestrator.RunStatus
	Message string
}

func (e *RunFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run ended with status %s", e.Status)
	}
	return fmt.Sprintf("run %s: %s", e.Status, e.Message)
}

// Config holds configuration for creating a new Agent.
type Config struct {
	Service     orchestrator.Service
	Tools       []tool.Tool
	AssistantID string
	MaxResumes  int
	Poller      *Poller
	Logger      *zap.Logger
}

// TurnResult represents the outcome of one conversation turn.
type TurnResult struct {
	Reply         string
	FileIDs       []string
	ToolCallsMade []orchestrator.ToolCallRequest
	Resumes       int
}

// Agent drives the post-message, start-run, poll, dispatch, resume
// cycle for one conversation thread. A turn is strictly sequential, so
// at most one run per thread is ever in flight.
type Agent struct {
	service     orchestrator.Service
	dispatcher  *Dispatcher
	poller      *Poller
	assistantID string
	maxResumes  int
	logger      *zap.Logger
}

// New creates an Agent from the given configuration. Tool schemas are
// validated up front so a malformed schema fails here rather than as a
// silent rejection by the orchestrator.
func New(cfg Config) (*Agent, error) {
	if cfg.Service == nil {
		return nil, errors.New("agent: orchestrator service is required")
	}
	if cfg.AssistantID == "" {
		return nil, errors.New("agent: assistant ID is required")
	}

	for _, t := range cfg.Tools {
		if err := tool.ValidateSchema(t); err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxResumes := cfg.MaxResumes
	if maxResumes <= 0 {
		maxResumes = DefaultMaxResumes
	}

	poller := cfg.Poller
	if poller == nil {
		poller = NewPoller(cfg.Service, WithPollerLogger(logger))
	}

	return &Agent{
		service:     cfg.Service,
		dispatcher:  NewDispatcher(cfg.Tools, WithDispatcherLogger(logger)),
		poller:      poller,
		assistantID: cfg.AssistantID,
		maxResumes:  maxResumes,
		logger:      logger,
	}, nil
}

// RunTurn processes one user utterance: post it, start a run, poll
// until settled, answer tool calls as they are requested, and return
// the assistant's reply once the run completes.
func (a *Agent) RunTurn(ctx context.Context, threadID, input string) (*TurnResult, error) {
	if err := a.service.AddUserMessage(ctx, threadID, input); err != nil {
		return nil, fmt.Errorf("posting message: %w", err)
	}

	run, err := a.service.CreateRun(ctx, threadID, a.assistantID)
	if err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}

	result := &TurnResult{}

	for resumes := 0; ; resumes++ {
		run, err = a.poller.Wait(ctx, threadID, run.ID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case orchestrator.StatusCompleted:
			reply, fileIDs, err := a.latestAssistantMessage(ctx, threadID)
			if err != nil {
				return nil, err
			}
			result.Reply = reply
			result.FileIDs = fileIDs
			result.Resumes = resumes
			return result, nil

		case orchestrator.StatusRequiresAction:
			if resumes >= a.maxResumes {
				return nil, fmt.Errorf("%w: run %s after %d rounds", ErrMaxResumesExceeded, run.ID, resumes)
			}

			outputs := a.dispatcher.Dispatch(ctx, run.PendingCalls)
			// A cancelled dispatch produced context-error payloads; the
			// batch is no longer meaningful and submitting it would feed
			// the model garbage. Abandon the run instead. A partial batch
			// is never produced, so nothing below submits one.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.ToolCallsMade = append(result.ToolCallsMade, run.PendingCalls...)

			run, err = a.service.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
			if err != nil {
				return nil, fmt.Errorf("submitting tool outputs: %w", err)
			}

		default:
			return nil, &RunFailedError{Status: run.Status, Message: run.LastError}
		}
	}
}

// latestAssistantMessage returns the text and file IDs of the newest
// assistant message on the thread.
func (a *Agent) latestAssistantMessage(ctx context.Context, threadID string) (string, []string, error) {
	messages, err := a.service.ListMessages(ctx, threadID)
	if err != nil {
		return "", nil, fmt.Errorf("listing messages: %w", err)
	}

	// Messages arrive newest first.
	for _, msg := range messages {
		if msg.Role == "assistant" {
			return msg.Text, msg.FileIDs, nil
		}
	}

	a.logger.Debug("run completed without an assistant message", zap.String("thread_id", threadID))
	return "", nil, nil
}
