package tool

import "testing"

func TestOptionalString(t *testing.T) {
	args := map[string]interface{}{
		"city":    "Munich",
		"size":    float64(5),
		"nothing": nil,
	}

	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{"present string", "city", "Munich", true},
		{"missing key", "keyword", "", false},
		{"wrong type", "size", "", false},
		{"nil value", "nothing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OptionalString(args, tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("OptionalString(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOptionalInt(t *testing.T) {
	args := map[string]interface{}{
		"size":     float64(20),
		"fraction": 19.5,
		"city":     "Munich",
	}

	tests := []struct {
		name   string
		key    string
		want   int
		wantOK bool
	}{
		{"present integer", "size", 20, true},
		{"fractional number", "fraction", 0, false},
		{"missing key", "limit", 0, false},
		{"wrong type", "city", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OptionalInt(args, tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("OptionalInt(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
