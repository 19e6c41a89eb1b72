package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"event-agent/internal/events"
)

// EventSearcher is the slice of the events client the tool needs.
type EventSearcher interface {
	Search(ctx context.Context, filters events.SearchFilters) (*events.EventSearchResult, error)
}

// SearchEventsTool exposes the event discovery API to the orchestrator.
type SearchEventsTool struct {
	searcher EventSearcher
}

// NewSearchEventsTool creates a SearchEventsTool backed by the given
// searcher.
func NewSearchEventsTool(searcher EventSearcher) *SearchEventsTool {
	return &SearchEventsTool{searcher: searcher}
}

// Name returns the tool's identifier.
func (s *SearchEventsTool) Name() string {
	return "search_events"
}

// Description returns what the tool does.
func (s *SearchEventsTool) Description() string {
	return "Searches upcoming events by keyword, city, state, country, or classification. " +
		"Always pass a two-letter countryCode when the city is outside the US; " +
		"state codes are only valid for US locations."
}

// Parameters returns the JSON Schema for the tool's input. All fields
// are optional strings; the model fills in whatever the user provided.
func (s *SearchEventsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keyword": map[string]interface{}{
				"type":        "string",
				"description": "Free-text search term, such as an artist or event name",
			},
			"city": map[string]interface{}{
				"type":        "string",
				"description": "City to search in",
			},
			"stateCode": map[string]interface{}{
				"type":        "string",
				"description": "Two-letter US state code, for example GA",
			},
			"countryCode": map[string]interface{}{
				"type":        "string",
				"description": "Two-letter ISO country code, for example DE",
			},
			"classificationName": map[string]interface{}{
				"type":        "string",
				"description": "Event segment such as music, sports, or theatre",
			},
		},
		"required": []string{},
	}
}

// Execute runs one event search. Search failures are converted to a
// Result error string so they never escape across the tool boundary.
func (s *SearchEventsTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	filters := events.SearchFilters{}
	if keyword, ok := OptionalString(args, "keyword"); ok {
		filters.Keyword = keyword
	}
	if city, ok := OptionalString(args, "city"); ok {
		filters.City = city
	}
	if stateCode, ok := OptionalString(args, "stateCode"); ok {
		filters.StateCode = stateCode
	}
	if countryCode, ok := OptionalString(args, "countryCode"); ok {
		filters.CountryCode = countryCode
	}
	if classification, ok := OptionalString(args, "classificationName"); ok {
		filters.Classification = classification
	}
	if size, ok := OptionalInt(args, "size"); ok {
		filters.PageSize = size
	}

	result, err := s.searcher.Search(ctx, filters)
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("search_events: failed to serialize result: %w", err)
	}

	return &Result{
		Success: true,
		Output:  string(payload),
	}, nil
}
