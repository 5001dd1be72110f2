package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/vitalwatch/vitalwatch/internal/analysis"
	"github.com/vitalwatch/vitalwatch/internal/database"
	"github.com/vitalwatch/vitalwatch/internal/models"
	"github.com/vitalwatch/vitalwatch/internal/state"
	"github.com/vitalwatch/vitalwatch/internal/ws"
)

// Broadcaster fans one event out to all connected subscribers. It must
// absorb per-subscriber delivery failures.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// Notifier receives critical alerts for out-of-band delivery (e.g. Slack).
// Implementations must not return delivery failures into the ingest path.
type Notifier interface {
	NotifyAlert(patientID string, alert *database.Alert)
}

// IngestService runs the per-sample pipeline: classify, persist the sample,
// persist and broadcast any triggered alerts, update the patient state
// table, broadcast the state update.
type IngestService struct {
	db         *gorm.DB
	classifier *analysis.Classifier
	states     *state.Table
	hub        Broadcaster
	notifier   Notifier
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(db *gorm.DB, classifier *analysis.Classifier, states *state.Table, hub Broadcaster) *IngestService {
	return &IngestService{
		db:         db,
		classifier: classifier,
		states:     states,
		hub:        hub,
	}
}

// SetNotifier attaches an optional out-of-band notifier for critical alerts.
func (s *IngestService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Ingest processes one telemetry payload. The returned error covers
// persistence faults only; broadcast failures are absorbed per subscriber.
// raw is the original payload for audit storage; pass nil to rebuild it
// from the decoded payload.
func (s *IngestService) Ingest(payload models.TelemetryPayload, raw database.JSONB) (analysis.Result, error) {
	if payload.PatientID == "" {
		// Accepted but almost certainly a producer bug.
		log.Printf("Warning: telemetry sample without patient_id")
	}

	result := s.classifier.Classify(payload.Sensors)

	if raw == nil {
		raw = payloadAsJSONB(payload)
	}

	sample := &database.TelemetrySample{
		PatientID:   payload.PatientID,
		Timestamp:   payload.Timestamp,
		HeartRate:   payload.Sensors.HeartRate,
		SpO2:        payload.Sensors.SpO2,
		BPSystolic:  payload.Sensors.BPSystolic,
		BPDiastolic: payload.Sensors.BPDiastolic,
		Activity:    payload.Sensors.Activity,
		RawData:     raw,
	}
	if err := database.SaveTelemetry(s.db, sample); err != nil {
		return result, err
	}

	if result.Status != analysis.StatusNormal {
		for _, anomaly := range result.Anomalies {
			alert := &database.Alert{
				PatientID: payload.PatientID,
				Timestamp: nowUnix(),
				AlertType: anomaly,
				Severity:  string(result.Status),
				Message:   fmt.Sprintf("Detected %s during %s", anomaly, payload.Sensors.Activity),
			}
			if err := database.SaveAlert(s.db, alert); err != nil {
				return result, err
			}

			// Broadcast per anomaly, immediately after its alert is
			// persisted, never batched.
			s.hub.Broadcast(ws.Event{
				Type:      ws.EventAlertNew,
				PatientID: payload.PatientID,
				Alert: &ws.AlertPayload{
					Type:     anomaly,
					Severity: string(result.Status),
					Message:  fmt.Sprintf("Detected %s", anomaly),
				},
			})

			if s.notifier != nil && result.Status == analysis.StatusCritical {
				s.notifier.NotifyAlert(payload.PatientID, alert)
			}
		}
	}

	entry := state.Entry{
		LatestData: payload,
		Analysis:   result,
	}
	s.states.Put(payload.PatientID, entry)

	s.hub.Broadcast(ws.Event{
		Type:      ws.EventTelemetryUpdate,
		PatientID: payload.PatientID,
		Data:      entry,
	})

	return result, nil
}

// payloadAsJSONB rebuilds the audit document from a decoded payload.
func payloadAsJSONB(payload models.TelemetryPayload) database.JSONB {
	data, err := json.Marshal(payload)
	if err != nil {
		return database.JSONB{}
	}
	var doc database.JSONB
	if err := json.Unmarshal(data, &doc); err != nil {
		return database.JSONB{}
	}
	return doc
}

func nowUnix() float64 {
	return float64(time.Now().UnixMilli()) / 1000.0
}
