package models

import "testing"

func TestPayloadFromDocument(t *testing.T) {
	doc := map[string]interface{}{
		"patient_id": "P001",
		"timestamp":  1700000000.25,
		"sensors": map[string]interface{}{
			"heart_rate":   78,
			"spo2":         98,
			"bp_systolic":  120,
			"bp_diastolic": 80,
			"activity":     "resting",
		},
		"medication_event": nil,
		"firmware":         "v2.1.0", // producer extras are tolerated
	}

	payload, err := PayloadFromDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.PatientID != "P001" {
		t.Errorf("PatientID = %q", payload.PatientID)
	}
	if payload.Timestamp != 1700000000.25 {
		t.Errorf("Timestamp = %f", payload.Timestamp)
	}
	if payload.Sensors.HeartRate != 78 || payload.Sensors.SpO2 != 98 {
		t.Errorf("sensors = %+v", payload.Sensors)
	}
	if payload.Sensors.Activity != "resting" {
		t.Errorf("Activity = %q", payload.Sensors.Activity)
	}
}

func TestPayloadFromDocument_MissingSensors(t *testing.T) {
	payload, err := PayloadFromDocument(map[string]interface{}{"patient_id": "P001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Missing sensors decode to zero vitals; the classifier treats that as
	// a real (critical) reading.
	if payload.Sensors.HeartRate != 0 || payload.Sensors.SpO2 != 0 {
		t.Errorf("sensors = %+v, want zero values", payload.Sensors)
	}
}

func TestPayloadFromDocument_WrongTypes(t *testing.T) {
	_, err := PayloadFromDocument(map[string]interface{}{
		"patient_id": "P001",
		"sensors":    "not an object",
	})
	if err == nil {
		t.Error("expected error for mistyped sensors block")
	}
}
