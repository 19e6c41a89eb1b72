package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the discovery API base path.
	DefaultBaseURL = "https://app.ticketmaster.com/discovery/v2"
	// DefaultTimeout bounds every outbound search call.
	DefaultTimeout = 10 * time.Second
)

// APIError is returned for any failed search: a non-2xx response, or a
// 2xx response whose body could not be parsed (Reason "parse",
// StatusCode 0). The Error string distinguishes credential problems
// from transient failures so it can be relayed to an end user as-is.
type APIError struct {
	StatusCode int
	RequestURL string
	Body       string
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason == "parse" {
		return "event api: response could not be parsed"
	}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("event api: authentication failed (status %d): check the API key", e.StatusCode)
	case http.StatusBadRequest:
		return fmt.Sprintf("event api: request rejected (status %d): %s", e.StatusCode, e.Body)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("event api: rate limit exceeded (status %d)", e.StatusCode)
	default:
		return fmt.Sprintf("event api: request failed (status %d): %s", e.StatusCode, e.Body)
	}
}

// Client searches the event discovery API. It performs exactly one GET
// per Search call and never retries; retry policy belongs to callers.
// The underlying http.Client is safe for concurrent reuse.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new Client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("event api key cannot be empty")
	}

	client := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Search performs one event search with the given filters and returns
// the decoded page of matches. Zero matches is a valid result with an
// empty Events slice, not an error.
func (c *Client) Search(ctx context.Context, filters SearchFilters) (*EventSearchResult, error) {
	filters = filters.normalized()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events.json", nil)
	if err != nil {
		return nil, fmt.Errorf("events: failed to create request: %w", err)
	}
	req.URL.RawQuery = c.buildQuery(filters).Encode()

	c.logger.Debug("searching events",
		zap.String("keyword", filters.Keyword),
		zap.String("city", filters.City),
		zap.Int("size", filters.PageSize))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("events: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			RequestURL: redactedURL(req.URL),
			Body:       string(body),
		}
	}

	result, err := decodeSearchResponse(body)
	if err != nil {
		c.logger.Debug("unparseable search response", zap.Error(err))
		return nil, &APIError{
			RequestURL: redactedURL(req.URL),
			Body:       string(body),
			Reason:     "parse",
		}
	}

	return result, nil
}

// buildQuery builds the query string from the normalized filters.
// Only present fields are sent; apikey and size are always present.
func (c *Client) buildQuery(filters SearchFilters) url.Values {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("size", strconv.Itoa(filters.PageSize))
	if filters.Keyword != "" {
		q.Set("keyword", filters.Keyword)
	}
	if filters.City != "" {
		q.Set("city", filters.City)
	}
	if filters.StateCode != "" {
		q.Set("stateCode", filters.StateCode)
	}
	if filters.CountryCode != "" {
		q.Set("countryCode", filters.CountryCode)
	}
	if filters.Classification != "" {
		q.Set("classificationName", filters.Classification)
	}
	return q
}

// redactedURL renders the request URL with the API key removed, so the
// secret never leaks into error messages or logs.
func redactedURL(u *url.URL) string {
	clean := *u
	q := clean.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
	}
	clean.RawQuery = q.Encode()
	return clean.String()
}

// Wire types for the discovery API response. Only the fields the
// normalized model needs are mapped.

type searchResponse struct {
	Embedded *struct {
		Events []wireEvent `json:"events"`
	} `json:"_embedded"`
	Page PageInfo `json:"page"`
}

type wireEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []wirePriceRange `json:"priceRanges"`
	Embedded    struct {
		Venues []wireVenue `json:"venues"`
	} `json:"_embedded"`
}

type wireVenue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Country struct {
		CountryCode string `json:"countryCode"`
	} `json:"country"`
}

type wirePriceRange struct {
	Currency string          `json:"currency"`
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
}

// decodeSearchResponse maps the nested wire format onto the normalized
// result model. An absent _embedded object means zero matches.
func decodeSearchResponse(body []byte) (*EventSearchResult, error) {
	var wire searchResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}

	result := &EventSearchResult{
		Events: []EventSummary{},
		Page:   wire.Page,
	}
	if wire.Embedded == nil {
		return result, nil
	}

	for _, we := range wire.Embedded.Events {
		event := EventSummary{
			ID:        we.ID,
			Name:      we.Name,
			URL:       we.URL,
			StartDate: we.Dates.Start.LocalDate,
			StartTime: we.Dates.Start.LocalTime,
		}
		for _, wv := range we.Embedded.Venues {
			event.Venues = append(event.Venues, VenueSummary{
				Name:        wv.Name,
				City:        wv.City.Name,
				StateCode:   wv.State.StateCode,
				CountryCode: wv.Country.CountryCode,
			})
		}
		for _, wp := range we.PriceRanges {
			event.PriceRanges = append(event.PriceRanges, PriceRange{
				Min:      wp.Min,
				Max:      wp.Max,
				Currency: wp.Currency,
			})
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}
