// Package cli provides the interactive console for the event agent.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"event-agent/internal/agent"
	"event-agent/internal/orchestrator"
	"event-agent/internal/session"
)

// TurnRunner processes one user utterance against the remote thread.
type TurnRunner interface {
	RunTurn(ctx context.Context, threadID, input string) (*agent.TurnResult, error)
}

// CLI runs the interactive conversation loop. One remote thread is
// created at startup and reused for the lifetime of the process; at
// most one turn is ever in flight.
type CLI struct {
	service    orchestrator.Service
	runner     TurnRunner
	output     io.Writer
	input      *bufio.Scanner
	outputDir  string
	transcript *session.Transcript
}

// NewCLI creates a CLI reading from stdin and writing to stdout.
func NewCLI(service orchestrator.Service, runner TurnRunner) *CLI {
	return NewCLIWithIO(service, runner, os.Stdin, os.Stdout)
}

// NewCLIWithIO creates a CLI with custom input/output streams. This is
// useful for testing.
func NewCLIWithIO(service orchestrator.Service, runner TurnRunner, input io.Reader, output io.Writer) *CLI {
	return &CLI{
		service:    service,
		runner:     runner,
		output:     output,
		input:      bufio.NewScanner(input),
		outputDir:  ".",
		transcript: session.NewTranscript(),
	}
}

// SetOutputDir sets the directory where generated files are saved.
func (c *CLI) SetOutputDir(dir string) {
	if dir != "" {
		c.outputDir = dir
	}
}

// printf is a helper to write formatted output.
func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.output, format, args...)
}

// println is a helper to write a line of output.
func (c *CLI) println(args ...interface{}) {
	fmt.Fprintln(c.output, args...)
}

// isExitCommand checks if the input is an exit command.
func isExitCommand(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	return lower == "exit" || lower == "quit"
}

// Run starts the conversation loop and blocks until the user exits or
// the context is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	threadID, err := c.service.CreateThread(ctx)
	if err != nil {
		return fmt.Errorf("failed to create conversation session: %w", err)
	}

	c.println("=== Event Search Agent ===")
	c.printf("Session: %s\n", threadID)
	c.println("Ask about upcoming events. Type 'history' to review this session,")
	c.println("'exit' or 'quit' to leave.")
	c.println()

	for {
		if ctx.Err() != nil {
			c.println("\nGoodbye!")
			return nil
		}

		c.printf("You: ")
		if !c.input.Scan() {
			if err := c.input.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			c.println("\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(c.input.Text())
		if input == "" {
			continue
		}
		if isExitCommand(input) {
			c.println("Goodbye!")
			return nil
		}
		if strings.EqualFold(input, "history") {
			c.printHistory()
			continue
		}

		c.runTurn(ctx, threadID, input)
	}
}

// runTurn processes one utterance and prints the outcome. Turn-level
// failures are printed and the loop continues; only cancellation ends
// the conversation.
func (c *CLI) runTurn(ctx context.Context, threadID, input string) {
	result, err := c.runner.RunTurn(ctx, threadID, input)
	if err != nil {
		var runErr *agent.RunFailedError
		switch {
		case errors.As(err, &runErr):
			c.printf("The assistant could not finish this request: %v\n\n", runErr)
		case errors.Is(err, context.Canceled):
			c.println("\nInterrupted.")
		default:
			c.printf("Error: %v\n\n", err)
		}
		return
	}

	c.transcript.Add("user", input)
	c.transcript.Add("assistant", result.Reply)

	if len(result.ToolCallsMade) > 0 {
		c.println("\n--- Tool Calls ---")
		for _, tc := range result.ToolCallsMade {
			c.printf("  [%s] %s\n", tc.CallID, tc.FunctionName)
			for key, value := range tc.RawArguments {
				c.printf("    %s: %v\n", key, value)
			}
		}
		c.println("------------------")
	}

	c.printf("\nAssistant: %s\n\n", result.Reply)
	c.saveFiles(ctx, result.FileIDs)
}

// printHistory displays the local transcript of this session.
func (c *CLI) printHistory() {
	entries := c.transcript.Entries()
	if len(entries) == 0 {
		c.println("No messages yet.")
		c.println()
		return
	}
	c.println("--- Session History ---")
	for _, entry := range entries {
		c.printf("%s: %s\n", entry.Role, entry.Text)
	}
	c.println("-----------------------")
	c.println()
}

// saveFiles downloads generated files to the output directory and
// prints their paths. A download failure is reported per file; the
// turn itself has already succeeded.
func (c *CLI) saveFiles(ctx context.Context, fileIDs []string) {
	for _, fileID := range fileIDs {
		data, err := c.service.GetFileContent(ctx, fileID)
		if err != nil {
			c.printf("Could not download file %s: %v\n", fileID, err)
			continue
		}

		path := filepath.Join(c.outputDir, filepath.Base(fileID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			c.printf("Could not save file %s: %v\n", fileID, err)
			continue
		}
		c.printf("Saved generated file: %s\n", path)
	}
}
