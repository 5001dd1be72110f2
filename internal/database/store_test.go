package database

import (
	"errors"
	"reflect"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&Patient{},
		&TelemetrySample{},
		&Alert{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func TestSeedPatients(t *testing.T) {
	db := setupTestDB(t)

	if err := SeedPatients(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patients, err := ListPatients(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 3 {
		t.Fatalf("expected 3 seeded patients, got %d", len(patients))
	}
	if patients[0].ID != "P001" || patients[0].Name != "John Doe" {
		t.Errorf("unexpected first patient: %+v", patients[0])
	}

	// Seeding again must not duplicate.
	if err := SeedPatients(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patients, _ = ListPatients(db)
	if len(patients) != 3 {
		t.Errorf("expected seeding to be idempotent, got %d patients", len(patients))
	}
}

func TestSaveTelemetry_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	sample := &TelemetrySample{
		PatientID:   "P001",
		Timestamp:   1700000000.5,
		HeartRate:   78,
		SpO2:        98,
		BPSystolic:  120,
		BPDiastolic: 80,
		Activity:    "resting",
		RawData:     JSONB{"patient_id": "P001", "extra": "kept"},
	}
	if err := SaveTelemetry(db, sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sample.ID == 0 {
		t.Fatal("expected auto-assigned sample ID")
	}

	history, err := PatientHistory(db, "P001", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(history))
	}

	got := history[0]
	if got.HeartRate != 78 || got.SpO2 != 98 || got.BPSystolic != 120 || got.BPDiastolic != 80 {
		t.Errorf("vitals did not survive round-trip: %+v", got)
	}
	if got.Activity != "resting" {
		t.Errorf("Activity = %q, want %q", got.Activity, "resting")
	}
	if got.RawData["extra"] != "kept" {
		t.Errorf("raw payload not stored verbatim: %v", got.RawData)
	}
}

func TestPatientHistory_OrderAndLimit(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 5; i++ {
		sample := &TelemetrySample{
			PatientID: "P001",
			Timestamp: float64(1000 + i),
			HeartRate: 70 + i,
		}
		if err := SaveTelemetry(db, sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// A different patient's samples must not leak in.
	if err := SaveTelemetry(db, &TelemetrySample{PatientID: "P002", Timestamp: 2000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := PatientHistory(db, "P001", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(history))
	}

	wantTimestamps := []float64{1004, 1003, 1002}
	for i, sample := range history {
		if sample.Timestamp != wantTimestamps[i] {
			t.Errorf("history[%d].Timestamp = %f, want %f (newest first)", i, sample.Timestamp, wantTimestamps[i])
		}
		if sample.PatientID != "P001" {
			t.Errorf("history[%d].PatientID = %q, want P001", i, sample.PatientID)
		}
	}
}

func TestRecentAlerts_FilterAndIdempotentReads(t *testing.T) {
	db := setupTestDB(t)

	alerts := []Alert{
		{PatientID: "P001", Timestamp: 100, AlertType: "Hypoxia Risk", Severity: "Critical", Message: "a"},
		{PatientID: "P001", Timestamp: 200, AlertType: "Hypertension", Severity: "Warning", Message: "b"},
		{PatientID: "P002", Timestamp: 300, AlertType: "Abnormal Heart Rate", Severity: "Warning", Message: "c"},
	}
	for i := range alerts {
		if err := SaveAlert(db, &alerts[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := AcknowledgeAlert(db, alerts[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := RecentAlerts(db, 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(all))
	}
	if all[0].Timestamp != 300 {
		t.Errorf("expected newest alert first, got timestamp %f", all[0].Timestamp)
	}

	active, err := RecentAlerts(db, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 unacknowledged alerts, got %d", len(active))
	}
	for _, alert := range active {
		if alert.Acknowledged {
			t.Errorf("active-only query returned acknowledged alert %d", alert.ID)
		}
	}

	// Reads with no intervening writes are idempotent.
	again, err := RecentAlerts(db, 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(all, again) {
		t.Error("repeated recent-alerts query returned different results")
	}

	// Limit applies after ordering.
	limited, err := RecentAlerts(db, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].Timestamp != 300 {
		t.Errorf("expected only the newest alert, got %+v", limited)
	}
}

func TestAcknowledgeAlert_Transitions(t *testing.T) {
	db := setupTestDB(t)

	alert := &Alert{PatientID: "P001", Timestamp: 100, AlertType: "Hypoxia Risk", Severity: "Critical"}
	if err := SaveAlert(db, alert); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Acknowledged {
		t.Fatal("new alert must start unacknowledged")
	}

	if err := AcknowledgeAlert(db, alert.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var loaded Alert
	if err := db.First(&loaded, alert.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.Acknowledged {
		t.Error("alert not acknowledged after first call")
	}

	// Second acknowledge is a no-op, not an error.
	if err := AcknowledgeAlert(db, alert.ID); err != nil {
		t.Fatalf("unexpected error on repeat acknowledge: %v", err)
	}
	db.First(&loaded, alert.ID)
	if !loaded.Acknowledged {
		t.Error("alert lost acknowledged flag after repeat call")
	}
}

func TestAcknowledgeAlert_UnknownID(t *testing.T) {
	db := setupTestDB(t)

	err := AcknowledgeAlert(db, 9999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestJSONB_ScanVariants(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{"nil value", nil, false},
		{"byte slice", []byte(`{"key": "value"}`), false},
		{"string value", `{"key": "value"}`, false},
		{"invalid JSON", []byte(`not json`), true},
		{"unsupported type", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSONB
			err := j.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
