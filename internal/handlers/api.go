package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/vitalwatch/vitalwatch/internal/api"
	"github.com/vitalwatch/vitalwatch/internal/database"
	"github.com/vitalwatch/vitalwatch/internal/models"
	"github.com/vitalwatch/vitalwatch/internal/services"
	"github.com/vitalwatch/vitalwatch/internal/state"
	"github.com/vitalwatch/vitalwatch/internal/ws"
)

const (
	defaultHistoryLimit = 50
	defaultAlertsLimit  = 20
	maxQueryLimit       = 500
)

// APIHandler serves the telemetry ingestion and query endpoints.
type APIHandler struct {
	db            *gorm.DB
	ingestService *services.IngestService
	states        *state.Table
	hub           *ws.Hub
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(db *gorm.DB, ingestService *services.IngestService, states *state.Table, hub *ws.Hub) *APIHandler {
	return &APIHandler{
		db:            db,
		ingestService: ingestService,
		states:        states,
		hub:           hub,
	}
}

// SetupRoutes sets up all API routes.
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)

	// Ingestion
	mux.HandleFunc("POST /api/telemetry", h.handleTelemetry)

	// Queries
	mux.HandleFunc("GET /api/patients", h.handlePatients)
	mux.HandleFunc("GET /api/patients/roster", h.handleRoster)
	mux.HandleFunc("GET /api/history/{patientID}", h.handleHistory)
	mux.HandleFunc("GET /api/alerts", h.handleAlerts)
	mux.HandleFunc("POST /api/alerts/{id}/acknowledge", h.handleAcknowledgeAlert)

	// Event stream
	mux.HandleFunc("GET /ws", h.hub.HandleWS)
}

// handleHealth handles GET /health
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "System Online",
		"service": "vitalwatch",
	})
}

// handleTelemetry handles POST /api/telemetry: one sample through the full
// classify / persist / broadcast pipeline.
func (h *APIHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var raw database.JSONB
	if err := api.DecodeJSON(r, &raw); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := models.PayloadFromDocument(raw)
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid telemetry payload")
		return
	}

	result, err := h.ingestService.Ingest(payload, raw)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process telemetry: %v", err))
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "processed",
		"analysis": result,
	})
}

// handlePatients handles GET /api/patients: the live state of every patient
// seen since startup.
func (h *APIHandler) handlePatients(w http.ResponseWriter, r *http.Request) {
	api.RespondJSON(w, http.StatusOK, h.states.GetAll())
}

// handleRoster handles GET /api/patients/roster: the provisioned patient
// records.
func (h *APIHandler) handleRoster(w http.ResponseWriter, r *http.Request) {
	patients, err := database.ListPatients(h.db)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list patients: %v", err))
		return
	}
	api.RespondJSON(w, http.StatusOK, patients)
}

// handleHistory handles GET /api/history/{patientID}
func (h *APIHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("patientID")
	limit := api.ParseLimit(r, defaultHistoryLimit, maxQueryLimit)

	samples, err := database.PatientHistory(h.db, patientID, limit)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load history: %v", err))
		return
	}
	api.RespondJSON(w, http.StatusOK, samples)
}

// handleAlerts handles GET /api/alerts
func (h *APIHandler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := api.ParseLimit(r, defaultAlertsLimit, maxQueryLimit)
	activeOnly := api.ParseBoolFlag(r, "active_only")

	alerts, err := database.RecentAlerts(h.db, limit, activeOnly)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load alerts: %v", err))
		return
	}
	api.RespondJSON(w, http.StatusOK, alerts)
}

// handleAcknowledgeAlert handles POST /api/alerts/{id}/acknowledge
func (h *APIHandler) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	if err := database.AcknowledgeAlert(h.db, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to acknowledge alert: %v", err))
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
