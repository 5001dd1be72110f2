package models

import (
	"encoding/json"
	"fmt"
)

// SensorReadings is the vitals block of one telemetry payload.
// Missing numeric fields decode as zero; the classifier treats zero as a
// real reading, so producers should always send all four vitals.
type SensorReadings struct {
	HeartRate   int    `json:"heart_rate"`
	SpO2        int    `json:"spo2"`
	BPSystolic  int    `json:"bp_systolic"`
	BPDiastolic int    `json:"bp_diastolic"`
	Activity    string `json:"activity"`
}

// TelemetryPayload is one sample as sent by a sensor producer, over HTTP or
// MQTT. MedicationEvent is carried opaquely for future medication-response
// tracking.
type TelemetryPayload struct {
	PatientID       string                 `json:"patient_id"`
	Timestamp       float64                `json:"timestamp"`
	Sensors         SensorReadings         `json:"sensors"`
	MedicationEvent map[string]interface{} `json:"medication_event"`
}

// PayloadFromDocument decodes a raw payload document into the typed form.
// Fields the document carries beyond the known ones survive only in the
// document itself, which is what gets stored for audit.
func PayloadFromDocument(doc map[string]interface{}) (TelemetryPayload, error) {
	var payload TelemetryPayload

	data, err := json.Marshal(doc)
	if err != nil {
		return payload, fmt.Errorf("failed to encode payload document: %w", err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode telemetry payload: %w", err)
	}
	return payload, nil
}
