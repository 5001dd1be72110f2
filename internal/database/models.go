package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB is a custom type for JSON document columns. PostgreSQL stores it as
// jsonb; SQLite stores the marshaled text.
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}

// Value implements the driver.Valuer interface.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Patient holds the provisioning-time record for one monitored patient.
// Rows are seeded or registered once and never modified by the ingestion
// path.
type Patient struct {
	ID             string `gorm:"primaryKey;size:32" json:"id"`
	Name           string `gorm:"size:255" json:"name"`
	Age            int    `json:"age"`
	MedicalHistory string `gorm:"type:text" json:"medical_history"`
}

// TelemetrySample is one persisted vital-sign reading. Rows are append-only;
// RawData keeps the original payload verbatim for audit.
type TelemetrySample struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	PatientID   string  `gorm:"size:32;index" json:"patient_id"`
	Timestamp   float64 `gorm:"index" json:"timestamp"`
	HeartRate   int     `json:"heart_rate"`
	SpO2        int     `json:"spo2"`
	BPSystolic  int     `json:"bp_systolic"`
	BPDiastolic int     `json:"bp_diastolic"`
	Activity    string  `gorm:"size:64" json:"activity"`
	RawData     JSONB   `gorm:"type:jsonb" json:"raw_data"`
}

// Alert is a persisted, acknowledgeable record of one detected anomaly.
// The acknowledged flag only ever transitions false to true; rows are never
// deleted.
type Alert struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	PatientID    string  `gorm:"size:32;index" json:"patient_id"`
	Timestamp    float64 `gorm:"index" json:"timestamp"`
	AlertType    string  `gorm:"size:128" json:"alert_type"`
	Severity     string  `gorm:"size:32" json:"severity"`
	Message      string  `gorm:"type:text" json:"message"`
	Acknowledged bool    `gorm:"default:false" json:"acknowledged"`
}
