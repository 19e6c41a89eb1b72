package events

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   SearchFilters
		want SearchFilters
	}{
		{
			name: "defaults applied to empty filters",
			in:   SearchFilters{},
			want: SearchFilters{PageSize: DefaultPageSize},
		},
		{
			name: "state code implies US",
			in:   SearchFilters{StateCode: "CA"},
			want: SearchFilters{StateCode: "CA", CountryCode: "US", PageSize: DefaultPageSize},
		},
		{
			name: "explicit country wins over the US default",
			in:   SearchFilters{StateCode: "NSW", CountryCode: "AU"},
			want: SearchFilters{StateCode: "NSW", CountryCode: "AU", PageSize: DefaultPageSize},
		},
		{
			name: "oversized page clamped",
			in:   SearchFilters{PageSize: 999},
			want: SearchFilters{PageSize: MaxPageSize},
		},
		{
			name: "negative page size replaced by default",
			in:   SearchFilters{PageSize: -3},
			want: SearchFilters{PageSize: DefaultPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized(); got != tt.want {
				t.Errorf("normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResultRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result EventSearchResult
	}{
		{
			name: "empty result",
			result: EventSearchResult{
				Events: []EventSummary{},
				Page:   PageInfo{Size: 20},
			},
		},
		{
			name: "result with events and prices",
			result: EventSearchResult{
				Events: []EventSummary{
					{
						ID:        "evt-42",
						Name:      "Test Concert",
						URL:       "https://example.com/evt-42",
						StartDate: "2026-09-12",
						StartTime: "20:00:00",
						Venues: []VenueSummary{
							{Name: "Olympiahalle", City: "Munich", CountryCode: "DE"},
						},
						PriceRanges: []PriceRange{
							{Min: decimal.RequireFromString("49.5"), Max: decimal.RequireFromString("120"), Currency: "EUR"},
						},
					},
				},
				Page: PageInfo{Size: 20, TotalElements: 1, TotalPages: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var back EventSearchResult
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if !reflect.DeepEqual(tt.result, back) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, tt.result)
			}
		})
	}
}

func TestDecodeSearchResponseAbsentEmbedded(t *testing.T) {
	result, err := decodeSearchResponse([]byte(`{"page": {"size": 20, "totalElements": 0}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Events == nil || len(result.Events) != 0 {
		t.Errorf("expected empty Events slice, got %#v", result.Events)
	}
	if result.Page.Size != 20 {
		t.Errorf("expected page size 20, got %d", result.Page.Size)
	}
}

func TestDecodeSearchResponsePricesAreExact(t *testing.T) {
	body := []byte(`{
		"_embedded": {"events": [{"id": "e1", "name": "n", "priceRanges": [{"currency": "USD", "min": 19.99, "max": 149.99}]}]},
		"page": {"size": 1}
	}`)

	result, err := decodeSearchResponse(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pr := result.Events[0].PriceRanges[0]
	if pr.Min.String() != "19.99" {
		t.Errorf("min price = %s, want 19.99", pr.Min.String())
	}
	if pr.Max.String() != "149.99" {
		t.Errorf("max price = %s, want 149.99", pr.Max.String())
	}
}
