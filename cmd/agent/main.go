// Package main provides the entry point for the event search agent CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"event-agent/internal/agent"
	"event-agent/internal/cli"
	"event-agent/internal/config"
	"event-agent/internal/events"
	"event-agent/internal/orchestrator"
	"event-agent/internal/tool"
)

func main() {
	configPath := flag.String("config", "agent.json", "Path to the optional JSON config file")
	assistantID := flag.String("assistant", "", "Remote assistant ID (overrides config)")
	outputDir := flag.String("out", "", "Directory for files generated by the assistant")
	debug := flag.Bool("debug", false, "Enable debug logging to stderr")
	help := flag.Bool("help", false, "Show help message")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *assistantID != "" {
		cfg.AssistantID = *assistantID
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	logger := zap.NewNop()
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	searchClient, err := events.NewClient(cfg.EventAPIKey, events.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating event search client: %v\n", err)
		os.Exit(1)
	}

	orchOpts := []orchestrator.ClientOption{orchestrator.WithLogger(logger)}
	if cfg.OrchestratorBaseURL != "" {
		orchOpts = append(orchOpts, orchestrator.WithBaseURL(cfg.OrchestratorBaseURL))
	}
	service, err := orchestrator.NewClient(cfg.OrchestratorAPIKey, orchOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating orchestrator client: %v\n", err)
		os.Exit(1)
	}

	turnAgent, err := agent.New(agent.Config{
		Service:     service,
		Tools:       []tool.Tool{tool.NewSearchEventsTool(searchClient)},
		AssistantID: cfg.AssistantID,
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating agent: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := cli.NewCLI(service, turnAgent)
	console.SetOutputDir(cfg.OutputDir)

	if err := console.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printUsage prints the usage information.
func printUsage() {
	fmt.Println("Event Search Agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  agent [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to the optional JSON config file (default \"agent.json\")")
	fmt.Println("  -assistant string")
	fmt.Println("        Remote assistant ID, overriding the config")
	fmt.Println("  -out string")
	fmt.Println("        Directory for files generated by the assistant")
	fmt.Println("  -debug")
	fmt.Println("        Enable debug logging to stderr")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  TICKETMASTER_API_KEY    Event discovery API key (required)")
	fmt.Println("  ORCHESTRATOR_API_KEY    Hosted agent platform API key (required)")
	fmt.Println("  ASSISTANT_ID            Remote assistant ID (required unless -assistant is set)")
	fmt.Println("  ORCHESTRATOR_BASE_URL   Override for the orchestrator endpoint")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start a conversation")
	fmt.Println("  agent")
	fmt.Println()
	fmt.Println("  # Use a specific assistant and save generated files to ./charts")
	fmt.Println("  agent -assistant asst_abc123 -out ./charts")
}
