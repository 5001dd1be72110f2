package api

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		PatientID string `json:"patient_id"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"patient_id": "P001"}`, false},
		{"unknown fields allowed", `{"patient_id": "P001", "firmware": "v2"}`, false},
		{"malformed", `{"patient_id": `, true},
		{"empty", ``, true},
		{"wrong type", `{"patient_id": 42}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/x", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(r, &dst)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_OversizedBody(t *testing.T) {
	big := `{"patient_id": "` + strings.Repeat("x", MaxBodySize) + `"}`
	r := httptest.NewRequest("POST", "/x", strings.NewReader(big))

	var dst map[string]interface{}
	if err := DecodeJSON(r, &dst); err == nil {
		t.Error("expected error for oversized body")
	}
}
