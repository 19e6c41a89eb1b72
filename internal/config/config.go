// Package config loads application configuration from an optional
// JSON file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment variable names. Environment values override file values.
const (
	EnvEventAPIKey         = "TICKETMASTER_API_KEY"
	EnvOrchestratorAPIKey  = "ORCHESTRATOR_API_KEY"
	EnvOrchestratorBaseURL = "ORCHESTRATOR_BASE_URL"
	EnvAssistantID         = "ASSISTANT_ID"
)

// Config holds everything the application needs to start.
type Config struct {
	// EventAPIKey is the discovery API secret.
	EventAPIKey string `json:"eventApiKey"`
	// OrchestratorAPIKey is the hosted agent platform secret.
	OrchestratorAPIKey string `json:"orchestratorApiKey"`
	// OrchestratorBaseURL overrides the orchestrator endpoint; empty
	// means the platform default.
	OrchestratorBaseURL string `json:"orchestratorBaseUrl"`
	// AssistantID identifies the pre-provisioned remote assistant.
	AssistantID string `json:"assistantId"`
	// OutputDir is where generated files are saved; empty means the
	// current directory.
	OutputDir string `json:"outputDir"`
}

// Load reads configuration from the given JSON file (if path is
// non-empty and the file exists) and overlays environment variables.
// The result is validated: a missing secret is reported with the exact
// variable to set.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Config file is optional; the environment may carry everything.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvEventAPIKey); v != "" {
		cfg.EventAPIKey = v
	}
	if v := os.Getenv(EnvOrchestratorAPIKey); v != "" {
		cfg.OrchestratorAPIKey = v
	}
	if v := os.Getenv(EnvOrchestratorBaseURL); v != "" {
		cfg.OrchestratorBaseURL = v
	}
	if v := os.Getenv(EnvAssistantID); v != "" {
		cfg.AssistantID = v
	}
}

// Validate checks that every required secret is present.
func (c *Config) Validate() error {
	if c.EventAPIKey == "" {
		return fmt.Errorf("event API key is not configured: set %s or eventApiKey in the config file", EnvEventAPIKey)
	}
	if c.OrchestratorAPIKey == "" {
		return fmt.Errorf("orchestrator API key is not configured: set %s or orchestratorApiKey in the config file", EnvOrchestratorAPIKey)
	}
	if c.AssistantID == "" {
		return fmt.Errorf("assistant ID is not configured: set %s or assistantId in the config file", EnvAssistantID)
	}
	return nil
}
