// Package events provides a typed client for the event discovery API.
package events

import "github.com/shopspring/decimal"

// Default and maximum page sizes accepted by the discovery API.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// SearchFilters holds the optional filters for an event search.
// Empty string fields are omitted from the request entirely; the API
// treats an absent parameter differently from an empty one.
type SearchFilters struct {
	Keyword        string
	City           string
	StateCode      string
	CountryCode    string
	Classification string
	PageSize       int
}

// normalized returns a copy of the filters with defaults applied.
// A state code without a country code implies the US: state codes are
// only meaningful there, and the API would otherwise match them globally.
func (f SearchFilters) normalized() SearchFilters {
	if f.StateCode != "" && f.CountryCode == "" {
		f.CountryCode = "US"
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// EventSearchResult is one page of search matches.
type EventSearchResult struct {
	Events []EventSummary `json:"events"`
	Page   PageInfo       `json:"page"`
}

// PageInfo describes the pagination state of a search result.
type PageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// EventSummary is a single event as returned by the discovery API.
// Values are immutable after decoding; the ID is provider-assigned
// and opaque.
type EventSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	URL         string         `json:"url"`
	StartDate   string         `json:"startDate,omitempty"`
	StartTime   string         `json:"startTime,omitempty"`
	Venues      []VenueSummary `json:"venues,omitempty"`
	PriceRanges []PriceRange   `json:"priceRanges,omitempty"`
}

// VenueSummary identifies where an event takes place.
type VenueSummary struct {
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// PriceRange is a ticket price band. Min and Max are decimals, not
// floats: these are user-facing monetary values and must not pick up
// binary rounding artifacts.
type PriceRange struct {
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
	Currency string          `json:"currency"`
}
