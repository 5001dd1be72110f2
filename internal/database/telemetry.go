package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Store functions accept a db parameter (rather than using the global DB) to
// support dependency injection and in-memory test databases.

// SaveTelemetry appends one raw telemetry sample.
func SaveTelemetry(db *gorm.DB, sample *TelemetrySample) error {
	if err := db.Create(sample).Error; err != nil {
		return fmt.Errorf("failed to save telemetry sample: %w", err)
	}
	return nil
}

// PatientHistory returns up to limit most recent samples for one patient,
// newest first.
func PatientHistory(db *gorm.DB, patientID string, limit int) ([]TelemetrySample, error) {
	var samples []TelemetrySample
	err := db.Where("patient_id = ?", patientID).
		Order("timestamp desc").
		Limit(limit).
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load patient history: %w", err)
	}
	return samples, nil
}

// SaveAlert appends one alert record.
func SaveAlert(db *gorm.DB, alert *Alert) error {
	if err := db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// RecentAlerts returns up to limit most recent alerts, newest first.
// With activeOnly set, acknowledged alerts are filtered out.
func RecentAlerts(db *gorm.DB, limit int, activeOnly bool) ([]Alert, error) {
	query := db.Model(&Alert{})
	if activeOnly {
		query = query.Where("acknowledged = ?", false)
	}

	var alerts []Alert
	err := query.Order("timestamp desc").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent alerts: %w", err)
	}
	return alerts, nil
}

// AcknowledgeAlert marks an alert as acknowledged. The transition is
// monotonic: acknowledging an already-acknowledged alert is a no-op.
// Returns gorm.ErrRecordNotFound for an unknown id.
func AcknowledgeAlert(db *gorm.DB, id uint) error {
	var alert Alert
	if err := db.First(&alert, id).Error; err != nil {
		return err
	}
	if alert.Acknowledged {
		return nil
	}
	return db.Model(&alert).Update("acknowledged", true).Error
}

// ListPatients returns the full patient roster.
func ListPatients(db *gorm.DB) ([]Patient, error) {
	var patients []Patient
	if err := db.Order("id asc").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
