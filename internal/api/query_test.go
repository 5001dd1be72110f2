package api

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name string
		url  string
		def  int
		max  int
		want int
	}{
		{"missing", "/x", 20, 100, 20},
		{"valid", "/x?limit=5", 20, 100, 5},
		{"clamped to max", "/x?limit=500", 20, 100, 100},
		{"zero falls back", "/x?limit=0", 20, 100, 20},
		{"negative falls back", "/x?limit=-3", 20, 100, 20},
		{"malformed falls back", "/x?limit=abc", 20, 100, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := ParseLimit(r, tt.def, tt.max); got != tt.want {
				t.Errorf("ParseLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"missing", "/x", false},
		{"true", "/x?active_only=true", true},
		{"one", "/x?active_only=1", true},
		{"false", "/x?active_only=false", false},
		{"malformed", "/x?active_only=yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := ParseBoolFlag(r, "active_only"); got != tt.want {
				t.Errorf("ParseBoolFlag() = %v, want %v", got, tt.want)
			}
		})
	}
}
