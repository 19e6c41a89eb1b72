package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the default orchestrator API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 60 * time.Second
	// BetaHeader is the required API feature header for the assistants
	// surface.
	BetaHeader = "assistants=v2"
)

// Client implements Service against the hosted assistants REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Service = (*Client)(nil)

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new orchestrator client with an explicit API key.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("orchestrator API key cannot be empty")
	}

	client := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateThread starts a new conversation thread.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp threadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/threads", map[string]interface{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// AddUserMessage appends a user message to the thread.
func (c *Client) AddUserMessage(ctx context.Context, threadID, text string) error {
	body := map[string]interface{}{
		"role":    "user",
		"content": text,
	}
	return c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil)
}

// CreateRun starts processing the thread with the given assistant.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	body := map[string]interface{}{
		"assistant_id": assistantID,
	}
	var resp runResponse
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &resp); err != nil {
		return nil, err
	}
	return resp.toRun(c.logger), nil
}

// GetRun fetches the current snapshot of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var resp runResponse
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRun(c.logger), nil
}

// SubmitToolOutputs feeds a complete batch of tool results back into a
// waiting run.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolCallResult) (*Run, error) {
	wireOutputs := make([]map[string]string, 0, len(outputs))
	for _, out := range outputs {
		wireOutputs = append(wireOutputs, map[string]string{
			"tool_call_id": out.CallID,
			"output":       out.Output,
		})
	}
	body := map[string]interface{}{
		"tool_outputs": wireOutputs,
	}

	c.logger.Debug("submitting tool outputs",
		zap.String("run_id", runID),
		zap.Int("outputs", len(outputs)))

	var resp runResponse
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return resp.toRun(c.logger), nil
}

// ListMessages returns the thread's messages, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var resp messageListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/messages", nil, &resp); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(resp.Data))
	for _, wm := range resp.Data {
		messages = append(messages, wm.toMessage())
	}
	return messages, nil
}

// GetFileContent downloads a file generated during a run.
func (c *Client) GetFileContent(ctx context.Context, fileID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/files/"+fileID+"/content", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

// newRequest builds an authenticated request for the given API path.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", BetaHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON performs one API call with a JSON request and response body.
// A nil in parameter sends no body; a nil out parameter discards the
// response body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("orchestrator: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}

	c.logger.Debug("orchestrator call", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("orchestrator: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("orchestrator: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("orchestrator: failed to parse response: %w", err)
	}
	return nil
}

// apiErrorResponse is the error envelope returned by the API.
type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// handleErrorResponse creates an appropriate error for non-200 responses.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var errResp apiErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("orchestrator: API error (status %d): %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("orchestrator: authentication failed: %s", errResp.Error.Message)
	case http.StatusForbidden:
		return fmt.Errorf("orchestrator: access forbidden: %s", errResp.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("orchestrator: rate limit exceeded: %s", errResp.Error.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("orchestrator: bad request: %s", errResp.Error.Message)
	case http.StatusNotFound:
		return fmt.Errorf("orchestrator: not found: %s", errResp.Error.Message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("orchestrator: server error (status %d): %s", statusCode, errResp.Error.Message)
	default:
		return fmt.Errorf("orchestrator: API error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

// Wire types for the assistants REST API.

type threadResponse struct {
	ID string `json:"id"`
}

type runResponse struct {
	ID             string `json:"id"`
	ThreadID       string `json:"thread_id"`
	Status         string `json:"status"`
	RequiredAction *struct {
		Type              string `json:"type"`
		SubmitToolOutputs struct {
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// toRun maps the wire run onto the model. Function arguments arrive as
// a JSON string produced by the model; a malformed string yields an
// empty argument map rather than a failure, so one bad call cannot
// poison the batch.
func (r *runResponse) toRun(logger *zap.Logger) *Run {
	run := &Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		Status:   RunStatus(r.Status),
	}
	if r.LastError != nil {
		run.LastError = r.LastError.Message
	}
	if r.RequiredAction == nil {
		return run
	}

	for _, wc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
		if wc.Type != "" && wc.Type != "function" {
			continue
		}
		args := map[string]interface{}{}
		if wc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(wc.Function.Arguments), &args); err != nil {
				logger.Debug("malformed tool call arguments",
					zap.String("call_id", wc.ID), zap.Error(err))
				args = map[string]interface{}{}
			}
		}
		run.PendingCalls = append(run.PendingCalls, ToolCallRequest{
			CallID:       wc.ID,
			FunctionName: wc.Function.Name,
			RawArguments: args,
		})
	}
	return run
}

type messageListResponse struct {
	Data []wireMessage `json:"data"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text struct {
			Value string `json:"value"`
		} `json:"text"`
		ImageFile struct {
			FileID string `json:"file_id"`
		} `json:"image_file"`
	} `json:"content"`
	Attachments []struct {
		FileID string `json:"file_id"`
	} `json:"attachments"`
}

func (m wireMessage) toMessage() Message {
	msg := Message{Role: m.Role}
	for _, part := range m.Content {
		switch part.Type {
		case "text":
			if msg.Text != "" {
				msg.Text += "\n"
			}
			msg.Text += part.Text.Value
		case "image_file":
			msg.FileIDs = append(msg.FileIDs, part.ImageFile.FileID)
		}
	}
	for _, att := range m.Attachments {
		if att.FileID != "" {
			msg.FileIDs = append(msg.FileIDs, att.FileID)
		}
	}
	return msg
}
