package api

import (
	"net/http"
	"strconv"
)

// ParseLimit extracts a bounded ?limit= query parameter. Values that are
// missing, malformed, or non-positive fall back to def; values above max
// are clamped.
func ParseLimit(r *http.Request, def, max int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseBoolFlag extracts a boolean query parameter. Missing or malformed
// values are false.
func ParseBoolFlag(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
